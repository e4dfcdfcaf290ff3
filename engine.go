package html2pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-html2pdf/internal/units"
)

// Engine names accepted by WithEngine.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// engine starts browser processes. Implementations wrap one DevTools driver.
type engine interface {
	Name() string
	// Launch starts bin and connects to it. ctx bounds the start only: the
	// returned process outlives it.
	Launch(ctx context.Context, bin string, opts launchOptions) (browserProcess, error)
}

// browserProcess is a running, connected browser.
type browserProcess interface {
	NewPage(ctx context.Context) (pageSession, error)
	// Close terminates the process and releases its profile directory.
	Close() error
}

// pageSession is one tab used for one render.
type pageSession interface {
	// Load replaces the document with markup and returns once the page has
	// loaded and no network request was in flight for the idle window.
	Load(ctx context.Context, markup string, idle time.Duration) error
	// CallHook awaits window[name]() when it is a function. It reports
	// whether the function existed.
	CallHook(ctx context.Context, name string) (bool, error)
	PDF(ctx context.Context, opts *printOptions) ([]byte, error)
	Close() error
}

// launchOptions configures a browser process.
type launchOptions struct {
	Headless bool
	Args     []string // "--name" or "--name=value"
}

// defaultLaunchArgs suit constrained containers and serverless hosts:
// no shared memory, no GPU, a single process and no sandbox.
var defaultLaunchArgs = []string{
	"--disable-web-security",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--single-process",
	"--no-zygote",
	"--no-sandbox",
	"--font-render-hinting=medium",
}

// splitFlag turns "--name=value" into its parts. A bare "--name" has no value.
func splitFlag(arg string) (name, value string, ok bool) {
	arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
	if arg == "" {
		return "", "", false
	}
	name, value, _ = strings.Cut(arg, "=")
	if name == "" {
		return "", "", false
	}
	return name, value, true
}

// printOptions is the engine-neutral form of Page.printToPDF.
// Lengths are in inches.
type printOptions struct {
	PaperWidth          float64
	PaperHeight         float64
	MarginTop           float64
	MarginRight         float64
	MarginBottom        float64
	MarginLeft          float64
	PrintBackground     bool
	DisplayHeaderFooter bool
	HeaderTemplate      string
	FooterTemplate      string
	PreferCSSPageSize   bool
}

// Margins holds CSS lengths for each page edge ("50px", "1cm", "0.5in").
type Margins struct {
	Top, Right, Bottom, Left string
}

// DefaultMargins leaves room for the printed footer at the bottom.
var DefaultMargins = Margins{Top: "50px", Right: "30px", Bottom: "80px", Left: "30px"}

// emptyHeaderTemplate suppresses Chrome's default header (title and date).
const emptyHeaderTemplate = "<div></div>"

// newPrintOptions resolves page geometry into a print request carrying the
// given footer template.
func newPrintOptions(pageSize string, m Margins, footer string) (*printOptions, error) {
	paper, err := units.PaperSize(pageSize)
	if err != nil {
		return nil, err
	}

	opts := &printOptions{
		PaperWidth:          paper.Width,
		PaperHeight:         paper.Height,
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      emptyHeaderTemplate,
		FooterTemplate:      footer,
		PreferCSSPageSize:   true,
	}

	edges := []struct {
		name  string
		value string
		dst   *float64
	}{
		{"top", m.Top, &opts.MarginTop},
		{"right", m.Right, &opts.MarginRight},
		{"bottom", m.Bottom, &opts.MarginBottom},
		{"left", m.Left, &opts.MarginLeft},
	}
	for _, e := range edges {
		v, err := units.Inches(e.value)
		if err != nil {
			return nil, fmt.Errorf("margin %s: %w", e.name, err)
		}
		*e.dst = v
	}
	return opts, nil
}

// newEngine returns the driver registered under name.
func newEngine(name string) (engine, error) {
	switch name {
	case "", EngineRod:
		return &rodEngine{}, nil
	case EngineChromedp:
		return &chromedpEngine{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
