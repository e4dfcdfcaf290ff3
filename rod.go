package html2pdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2pdf/internal/process"
)

// hookScript awaits window[name]() when it is a function.
const hookScript = `async (name) => {
	const fn = window[name];
	if (typeof fn !== 'function') return false;
	await fn();
	return true;
}`

// rodEngine drives Chrome through go-rod.
type rodEngine struct{}

func (e *rodEngine) Name() string { return EngineRod }

func (e *rodEngine) Launch(ctx context.Context, bin string, opts launchOptions) (browserProcess, error) {
	l := launcher.New().Bin(bin).Headless(opts.Headless)
	for _, arg := range opts.Args {
		name, value, ok := splitFlag(arg)
		if !ok {
			continue
		}
		if value == "" {
			l = l.Set(flags.Flag(name))
		} else {
			l = l.Set(flags.Flag(name), value)
		}
	}

	// The launcher has no deadline of its own. Binding ctx to it would kill
	// the process once the launch context ends, so it runs unbound and is
	// killed here on timeout.
	type launched struct {
		url string
		err error
	}
	done := make(chan launched, 1)
	go func() {
		u, err := l.Launch()
		done <- launched{url: u, err: err}
	}()

	var controlURL string
	select {
	case <-ctx.Done():
		killLauncher(l)
		go func() {
			// A launch finishing after the deadline leaves a process behind.
			if r := <-done; r.err == nil {
				killLauncher(l)
			}
		}()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			killLauncher(l)
			return nil, r.err
		}
		controlURL = r.url
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		killLauncher(l)
		return nil, err
	}
	return &rodBrowser{browser: browser, launcher: l}, nil
}

// killLauncher kills the process tree now and removes the profile directory
// in the background.
func killLauncher(l *launcher.Launcher) {
	if pid := l.PID(); pid > 0 {
		_ = process.KillTree(pid)
	}
	go func() {
		l.Kill() // sleeps a second for late child processes
		l.Cleanup()
	}()
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (b *rodBrowser) NewPage(ctx context.Context) (pageSession, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return &rodPage{page: page}, nil
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	killLauncher(b.launcher)
	return err
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Load(ctx context.Context, markup string, idle time.Duration) error {
	page := p.page.Context(ctx)

	// Armed before the content is set so the first requests are counted.
	wait := page.WaitRequestIdle(idle, nil, nil, nil)
	if err := page.SetDocumentContent(markup); err != nil {
		return err
	}
	wait()

	// wait() gives up silently when ctx ends.
	if err := ctx.Err(); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (p *rodPage) CallHook(ctx context.Context, name string) (bool, error) {
	res, err := p.page.Context(ctx).Eval(hookScript, name)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (p *rodPage) PDF(ctx context.Context, opts *printOptions) ([]byte, error) {
	reader, err := p.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PaperWidth:          floatPtr(opts.PaperWidth),
		PaperHeight:         floatPtr(opts.PaperHeight),
		MarginTop:           floatPtr(opts.MarginTop),
		MarginRight:         floatPtr(opts.MarginRight),
		MarginBottom:        floatPtr(opts.MarginBottom),
		MarginLeft:          floatPtr(opts.MarginLeft),
		PrintBackground:     opts.PrintBackground,
		DisplayHeaderFooter: opts.DisplayHeaderFooter,
		HeaderTemplate:      opts.HeaderTemplate,
		FooterTemplate:      opts.FooterTemplate,
		PreferCSSPageSize:   opts.PreferCSSPageSize,
	})
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return data, nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

var (
	_ engine         = (*rodEngine)(nil)
	_ browserProcess = (*rodBrowser)(nil)
	_ pageSession    = (*rodPage)(nil)
)
