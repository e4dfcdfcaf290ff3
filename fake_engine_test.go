package html2pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// Notes:
// - fakeEngine stands in for a DevTools driver; it records every launch,
//   page and close so tests can assert the browser lifecycle.
// - pageScript configures how the pages of every process behave.

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type pageScript struct {
	newPageErr  error
	loadErr     error
	loadBlocks  bool // Load waits for its context
	hookDefined bool
	hookErr     error
	pdf         []byte // nil = one-page PDF
	pdfErr      error
}

type fakeEngine struct {
	mu          sync.Mutex
	launchErr   error
	launchDelay time.Duration
	script      pageScript
	launches    int
	lastBin     string
	lastOpts    launchOptions
	procs       []*fakeProcess
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Launch(ctx context.Context, bin string, opts launchOptions) (browserProcess, error) {
	e.mu.Lock()
	e.launches++
	e.lastBin, e.lastOpts = bin, opts
	err, delay := e.launchErr, e.launchDelay
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	p := &fakeProcess{engine: e}
	e.mu.Lock()
	e.procs = append(e.procs, p)
	e.mu.Unlock()
	return p, nil
}

func (e *fakeEngine) setScript(s pageScript) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.script = s
}

func (e *fakeEngine) launchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launches
}

func (e *fakeEngine) processes() []*fakeProcess {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*fakeProcess(nil), e.procs...)
}

type fakeProcess struct {
	engine *fakeEngine

	mu     sync.Mutex
	closed int
	pages  []*fakePage
}

func (p *fakeProcess) NewPage(ctx context.Context) (pageSession, error) {
	p.engine.mu.Lock()
	script := p.engine.script
	p.engine.mu.Unlock()

	if script.newPageErr != nil {
		return nil, script.newPageErr
	}
	page := &fakePage{script: script}
	p.mu.Lock()
	p.pages = append(p.pages, page)
	p.mu.Unlock()
	return page, nil
}

func (p *fakeProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *fakeProcess) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type fakePage struct {
	script pageScript

	mu        sync.Mutex
	markup    string
	idle      time.Duration
	hookName  string
	printOpts *printOptions
	closed    bool
}

func (p *fakePage) Load(ctx context.Context, markup string, idle time.Duration) error {
	p.mu.Lock()
	p.markup, p.idle = markup, idle
	p.mu.Unlock()

	if p.script.loadBlocks {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.script.loadErr
}

func (p *fakePage) CallHook(ctx context.Context, name string) (bool, error) {
	p.mu.Lock()
	p.hookName = name
	p.mu.Unlock()
	return p.script.hookDefined, p.script.hookErr
}

func (p *fakePage) PDF(ctx context.Context, opts *printOptions) ([]byte, error) {
	p.mu.Lock()
	p.printOpts = opts
	p.mu.Unlock()

	if p.script.pdfErr != nil {
		return nil, p.script.pdfErr
	}
	if p.script.pdf != nil {
		return p.script.pdf, nil
	}
	return minimalPDF(1), nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// recordingObserver keeps every event it receives.
type recordingObserver struct {
	mu       sync.Mutex
	launched int
	closed   []string
	stages   []string
}

func (o *recordingObserver) BrowserLaunched(time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.launched++
}

func (o *recordingObserver) BrowserClosed(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = append(o.closed, reason)
}

func (o *recordingObserver) RenderCompleted(stage string, _ time.Duration, _ int, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) closeReasons() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.closed...)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func withEngine(e engine) Option {
	return func(c *Converter) {
		c.engine = e
	}
}

func withLocator(l *Locator) Option {
	return func(c *Converter) {
		c.locator = l
	}
}

// fakeLocator resolves to a fixed path without touching the file system.
func fakeLocator(path string) *Locator {
	l := NewLocator(LocatorConfig{Executable: path})
	l.exists = func(string) bool { return true }
	return l
}

func newTestConverter(t *testing.T, eng *fakeEngine, opts ...Option) *Converter {
	t.Helper()

	base := []Option{
		withEngine(eng),
		withLocator(fakeLocator("/opt/chrome/chrome")),
		WithClock(func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }),
	}
	conv, err := NewConverter(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewConverter() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv
}

// minimalPDF assembles an n-page document with a correct cross-reference table.
func minimalPDF(n int) []byte {
	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
	}
	for range n {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
