package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/pdfinfo"
	"github.com/alnah/go-html2pdf/internal/pipeline"
)

// PaginationHook is the optional window function awaited before printing.
const PaginationHook = "addPageNumbers"

// Default limits and timeouts.
const (
	DefaultMaxHTMLBytes      = 500000
	DefaultLaunchTimeout     = 60 * time.Second
	DefaultNavigationTimeout = 120 * time.Second
	DefaultOperationTimeout  = 60 * time.Second
	DefaultIdleWindow        = 500 * time.Millisecond
	DefaultCacheDir          = ".cache/chromium"
)

// Result is a rendered document.
type Result struct {
	PDF   []byte
	Pages int // 0 when verification is disabled
}

// Option configures a Converter.
type Option func(*Converter)

// WithProduction selects the production environment: managed executable
// only, and a fresh browser per request unless WithIsolation says otherwise.
func WithProduction(production bool) Option {
	return func(c *Converter) {
		c.production = production
	}
}

// WithIsolation forces the teardown policy regardless of the environment.
func WithIsolation(isolate bool) Option {
	return func(c *Converter) {
		c.isolate = &isolate
	}
}

// WithEngine selects the DevTools driver: "rod" (default) or "chromedp".
func WithEngine(name string) Option {
	return func(c *Converter) {
		c.engineName = name
	}
}

// WithExecutable sets an explicit browser path. It must exist.
func WithExecutable(path string) Option {
	return func(c *Converter) {
		c.executable = path
	}
}

// WithCacheDir sets where Chromium is downloaded outside production.
func WithCacheDir(dir string) Option {
	return func(c *Converter) {
		c.cacheDir = dir
	}
}

// WithManagedDir sets where Chromium is downloaded in production.
func WithManagedDir(dir string) Option {
	return func(c *Converter) {
		c.managedDir = dir
	}
}

// WithLaunchTimeout bounds the start of a browser process.
func WithLaunchTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pdf: WithLaunchTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.launchTimeout = d
	}
}

// WithPageTimeouts sets the navigation timeout, which bounds a whole page
// session, and the operation timeout, which bounds each step within it.
func WithPageTimeouts(navigation, operation time.Duration) Option {
	if navigation <= 0 || operation <= 0 {
		panic("html2pdf: WithPageTimeouts durations must be positive")
	}
	return func(c *Converter) {
		c.navigationTimeout = navigation
		c.operationTimeout = operation
	}
}

// WithIdleWindow sets how long the network must stay quiet after loading.
func WithIdleWindow(d time.Duration) Option {
	if d <= 0 {
		panic("html2pdf: WithIdleWindow duration must be positive")
	}
	return func(c *Converter) {
		c.idleWindow = d
	}
}

// WithExtraArgs appends browser command-line flags to the default set.
func WithExtraArgs(args ...string) Option {
	return func(c *Converter) {
		c.extraArgs = append(c.extraArgs, args...)
	}
}

// WithDocument replaces the document shell settings.
func WithDocument(s DocumentSettings) Option {
	return func(c *Converter) {
		c.document = s
	}
}

// WithMaxHTMLBytes sets the input ceiling in UTF-8 bytes.
func WithMaxHTMLBytes(n int) Option {
	if n <= 0 {
		panic("html2pdf: WithMaxHTMLBytes limit must be positive")
	}
	return func(c *Converter) {
		c.maxHTMLBytes = n
	}
}

// WithVerify enables structural checking of every exported PDF.
func WithVerify(verify bool) Option {
	return func(c *Converter) {
		c.verify = verify
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver receives launch, close and render events.
func WithObserver(o Observer) Option {
	return func(c *Converter) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithClock replaces time.Now for the header date.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// Converter renders markup to PDF with a shared browser process.
// It is safe for concurrent use.
type Converter struct {
	production        bool
	isolate           *bool
	engineName        string
	executable        string
	cacheDir          string
	managedDir        string
	launchTimeout     time.Duration
	navigationTimeout time.Duration
	operationTimeout  time.Duration
	idleWindow        time.Duration
	extraArgs         []string
	document          DocumentSettings
	maxHTMLBytes      int
	verify            bool
	logger            *slog.Logger
	observer          Observer
	now               func() time.Time

	engine   engine // injected by tests
	locator  *Locator
	manager  *manager
	composer *documentComposer
	print    *printOptions
	markdown pipeline.FragmentConverter
}

// NewConverter creates a Converter. No browser starts until the first render.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cacheDir:          DefaultCacheDir,
		launchTimeout:     DefaultLaunchTimeout,
		navigationTimeout: DefaultNavigationTimeout,
		operationTimeout:  DefaultOperationTimeout,
		idleWindow:        DefaultIdleWindow,
		document:          DefaultDocument(),
		maxHTMLBytes:      DefaultMaxHTMLBytes,
		verify:            true,
		logger:            discardLogger(),
		observer:          nopObserver{},
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.engine == nil {
		eng, err := newEngine(c.engineName)
		if err != nil {
			return nil, err
		}
		c.engine = eng
	}

	composer, err := newDocumentComposer(c.document)
	if err != nil {
		return nil, err
	}
	c.composer = composer

	c.print, err = newPrintOptions(c.document.PageSize, c.document.Margins, composer.footer)
	if err != nil {
		return nil, err
	}

	if c.locator == nil {
		c.locator = NewLocator(LocatorConfig{
			Executable: c.executable,
			Production: c.production,
			CacheDir:   c.cacheDir,
			ManagedDir: c.managedDir,
			Logger:     c.logger,
		})
	}

	isolate := c.production
	if c.isolate != nil {
		isolate = *c.isolate
	}

	c.manager = &manager{
		engine:  c.engine,
		locator: c.locator,
		launchOpts: launchOptions{
			Headless: true,
			Args:     append(append([]string{}, defaultLaunchArgs...), c.extraArgs...),
		},
		launchTimeout: c.launchTimeout,
		isolate:       isolate,
		logger:        c.logger,
		observer:      c.observer,
	}
	c.markdown = pipeline.NewGoldmarkConverter()

	return c, nil
}

// CheckInput rejects empty markup and markup over limit UTF-8 bytes.
func CheckInput(markup string, limit int) error {
	if markup == "" {
		return ErrInvalidInput
	}
	if len(markup) > limit {
		return fmt.Errorf("%w (max %dKB)", ErrInputTooLarge, limit/1000)
	}
	return nil
}

// Render wraps markup in the document shell and prints it to PDF.
//
// Any failure after the browser was acquired destroys the browser process,
// so the next call starts a fresh one. The page is not closed on that path.
//
// Cancelling ctx does not abort the page stages once the browser is leased;
// the navigation timeout bounds them.
func (c *Converter) Render(ctx context.Context, markup string) (*Result, error) {
	if err := CheckInput(markup, c.maxHTMLBytes); err != nil {
		return nil, err
	}
	return c.renderDocument(ctx, markup)
}

// RenderMarkdown converts Markdown to an HTML fragment and renders it.
// The size limit applies to the Markdown, not to the generated fragment.
func (c *Converter) RenderMarkdown(ctx context.Context, markdown string) (*Result, error) {
	if err := CheckInput(markdown, c.maxHTMLBytes); err != nil {
		return nil, err
	}
	fragment, err := c.markdown.ToFragment(ctx, markdown)
	if err != nil {
		return nil, err
	}
	return c.renderDocument(ctx, fragment)
}

func (c *Converter) renderDocument(ctx context.Context, markup string) (*Result, error) {
	start := time.Now()
	h, err := c.manager.acquire(ctx)
	if err != nil {
		c.observer.RenderCompleted("acquire", time.Since(start), 0, err)
		return nil, err
	}

	res, err := c.render(ctx, h.proc, markup)
	c.manager.release(h, err != nil)

	var stage string
	var re *RenderError
	if errors.As(err, &re) {
		stage = string(re.Stage)
	}
	pages := 0
	if res != nil {
		pages = res.Pages
	}
	c.observer.RenderCompleted(stage, time.Since(start), pages, err)

	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg += hints.ForTimeout()
		}
		c.logger.Error("render failed", "stage", stage, "browser", h.id, "error", msg)
		return nil, err
	}
	c.logger.Debug("render completed", "browser", h.id, "pages", res.Pages, "bytes", len(res.PDF), "duration", time.Since(start))
	return res, nil
}

// render runs the page stages. The navigation timeout bounds the whole
// session, the operation timeout each stage.
func (c *Converter) render(ctx context.Context, proc browserProcess, markup string) (*Result, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.navigationTimeout)
	defer cancel()

	var page pageSession
	err := c.stage(ctx, StagePageCreate, func(ctx context.Context) error {
		var err error
		page, err = proc.NewPage(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = c.stage(ctx, StageLoad, func(ctx context.Context) error {
		doc, err := c.composer.compose(markup, c.now())
		if err != nil {
			return err
		}
		return page.Load(ctx, doc, c.idleWindow)
	})
	if err != nil {
		return nil, err
	}

	err = c.stage(ctx, StageHook, func(ctx context.Context) error {
		found, err := page.CallHook(ctx, PaginationHook)
		if err == nil && !found {
			c.logger.Debug("pagination hook not defined", "hook", PaginationHook)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	var pdf []byte
	err = c.stage(ctx, StageExport, func(ctx context.Context) error {
		var err error
		pdf, err = page.PDF(ctx, c.print)
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &Result{PDF: pdf}
	if c.verify {
		pages, err := pdfinfo.Inspect(pdf)
		if err != nil {
			return nil, &RenderError{Stage: StageVerify, Err: err}
		}
		res.Pages = pages
	}

	if err := page.Close(); err != nil {
		c.logger.Warn("page close failed", "error", err)
	}
	return res, nil
}

// stage runs fn under the operation timeout and tags its error with s.
func (c *Converter) stage(ctx context.Context, s Stage, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.operationTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return &RenderError{Stage: s, Err: err}
	}
	return nil
}

// Executable resolves the browser binary without launching it.
func (c *Converter) Executable(ctx context.Context) (string, error) {
	return c.locator.Resolve(ctx)
}

// CachedExecutable returns the resolved executable path, or "" when no
// resolution has succeeded yet. It never blocks on a download.
func (c *Converter) CachedExecutable() string {
	return c.locator.Cached()
}

// ExecutableStrategy reports how the executable was found, or "" before
// the first resolution.
func (c *Converter) ExecutableStrategy() string {
	return c.locator.Strategy()
}

// Engine returns the selected driver name.
func (c *Converter) Engine() string {
	return c.engine.Name()
}

// Production reports whether the production environment is selected.
func (c *Converter) Production() bool {
	return c.production
}

// MaxHTMLBytes returns the input ceiling.
func (c *Converter) MaxHTMLBytes() int {
	return c.maxHTMLBytes
}

// BrowserActive reports whether a browser process is live.
func (c *Converter) BrowserActive() bool {
	return c.manager.active()
}

// DestroyBrowser closes the shared browser process, if any. The next render
// launches a new one.
func (c *Converter) DestroyBrowser() {
	c.manager.destroy(CloseReasonDestroy)
}

// Close destroys the browser process. Later renders fail with
// ErrConverterClosed.
func (c *Converter) Close() error {
	c.manager.shutdown()
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
