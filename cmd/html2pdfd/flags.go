package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2pdf/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// browserFlags holds flags that select and locate the browser.
type browserFlags struct {
	production bool
	engine     string
	bin        string
	isolate    bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common      commonFlags
	browser     browserFlags
	addr        string
	debugOutput string
	noMetrics   bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common   commonFlags
	browser  browserFlags
	in       string
	out      string
	markdown bool
}

// doctorFlags holds all flags for the doctor command.
type doctorFlags struct {
	common  commonFlags
	browser browserFlags
	json    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log debug details")
}

// addBrowserFlags adds browser selection flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.BoolVar(&f.production, "production", false, "production environment (managed browser, isolation)")
	fs.StringVar(&f.engine, "engine", "", "browser driver: rod, chromedp")
	fs.StringVar(&f.bin, "browser-bin", "", "browser executable path")
	fs.BoolVar(&f.isolate, "isolate", false, "one browser process per request")
}

// newFlagSet creates a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, *flag.FlagSet, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :3000)")
	fs.StringVar(&f.debugOutput, "debug-output", "", "debug copy path outside production (\"\" disables)")
	fs.BoolVar(&f.noMetrics, "no-metrics", false, "disable GET /metrics")
	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// parseRenderFlags parses render command flags.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, *flag.FlagSet, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", stderr, printRenderUsage)
	fs.StringVarP(&f.in, "in", "i", "", "input file (\"-\" = stdin)")
	fs.StringVarP(&f.out, "out", "o", "", "output PDF path")
	fs.BoolVarP(&f.markdown, "markdown", "m", false, "input is Markdown")
	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, *flag.FlagSet, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", stderr, printDoctorUsage)
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// parse reports flag errors as ErrUsage. flag.ErrHelp passes through.
func parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(fs *flag.FlagSet, common *commonFlags, browser *browserFlags, cfg *config.Config) {
	if fs.Changed("production") {
		cfg.Environment = config.EnvDevelopment
		if browser.production {
			cfg.Environment = config.EnvProduction
		}
	}
	if fs.Changed("engine") {
		cfg.Browser.Engine = browser.engine
	}
	if fs.Changed("browser-bin") {
		cfg.Browser.Bin = browser.bin
	}
	if fs.Changed("isolate") {
		isolate := browser.isolate
		cfg.Browser.Isolate = &isolate
	}

	switch {
	case common.verbose:
		cfg.Log.Level = "debug"
	case common.quiet:
		cfg.Log.Level = "error"
	}
}
