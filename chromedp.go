package html2pdf

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// chromedpEngine drives Chrome through chromedp.
//
// chromedp binds a browser (and a tab) to the context of the first Run on
// it. First runs therefore use the long-lived context and are abandoned,
// not canceled, when the caller's deadline passes.
type chromedpEngine struct{}

func (e *chromedpEngine) Name() string { return EngineChromedp }

func (e *chromedpEngine) Launch(ctx context.Context, bin string, opts launchOptions) (browserProcess, error) {
	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	options = append(options,
		chromedp.ExecPath(bin),
		chromedp.Flag("headless", opts.Headless),
	)
	options = append(options, allocatorOptionsFromArgs(opts.Args)...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), options...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
	}

	if err := runFirst(ctx, browserCtx, cancel); err != nil {
		return nil, err
	}
	return &chromedpBrowser{ctx: browserCtx, cancel: cancel}, nil
}

// runFirst performs the first Run on c, giving up and calling cancel when
// limit ends first.
func runFirst(limit, c context.Context, cancel context.CancelFunc, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(c, actions...)
	}()

	select {
	case <-limit.Done():
		cancel()
		return limit.Err()
	case err := <-done:
		if err != nil {
			cancel()
		}
		return err
	}
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		name, value, ok := splitFlag(arg)
		if !ok {
			continue
		}
		if value == "" {
			options = append(options, chromedp.Flag(name, true))
		} else {
			options = append(options, chromedp.Flag(name, value))
		}
	}
	return options
}

type chromedpBrowser struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (b *chromedpBrowser) NewPage(ctx context.Context) (pageSession, error) {
	tabCtx, tabCancel := chromedp.NewContext(b.ctx)

	tracker := newRequestTracker()
	chromedp.ListenTarget(tabCtx, tracker.handle)

	if err := runFirst(ctx, tabCtx, tabCancel, network.Enable()); err != nil {
		return nil, err
	}
	return &chromedpPage{ctx: tabCtx, cancel: tabCancel, tracker: tracker}, nil
}

func (b *chromedpBrowser) Close() error {
	err := chromedp.Cancel(b.ctx)
	b.cancel()
	return err
}

type chromedpPage struct {
	ctx     context.Context
	cancel  context.CancelFunc
	tracker *requestTracker
}

// run executes actions on the tab, bounded by ctx.
func (p *chromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (p *chromedpPage) Load(ctx context.Context, markup string, idle time.Duration) error {
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
	}))
	if err != nil {
		return err
	}

	if err := p.tracker.waitIdle(ctx, idle); err != nil {
		return err
	}
	return p.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (p *chromedpPage) CallHook(ctx context.Context, name string) (bool, error) {
	var found bool
	expr := "(" + hookScript + ")(" + strconv.Quote(name) + ")"
	err := p.run(ctx, chromedp.Evaluate(expr, &found, func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
		return params.WithAwaitPromise(true)
	}))
	return found, err
}

func (p *chromedpPage) PDF(ctx context.Context, opts *printOptions) ([]byte, error) {
	var pdf []byte
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight).
			WithMarginTop(opts.MarginTop).
			WithMarginRight(opts.MarginRight).
			WithMarginBottom(opts.MarginBottom).
			WithMarginLeft(opts.MarginLeft).
			WithPrintBackground(opts.PrintBackground).
			WithDisplayHeaderFooter(opts.DisplayHeaderFooter).
			WithHeaderTemplate(opts.HeaderTemplate).
			WithFooterTemplate(opts.FooterTemplate).
			WithPreferCSSPageSize(opts.PreferCSSPageSize).
			Do(ctx)
		pdf = data
		return err
	}))
	return pdf, err
}

func (p *chromedpPage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	if errors.Is(err, context.Canceled) {
		return nil // tab already gone with its browser
	}
	return err
}

var (
	_ engine         = (*chromedpEngine)(nil)
	_ browserProcess = (*chromedpBrowser)(nil)
	_ pageSession    = (*chromedpPage)(nil)
)
