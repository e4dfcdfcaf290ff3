package main

import (
	"io"
	"log/slog"

	flag "github.com/spf13/pflag"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/metrics"
)

// loadConfig layers defaults, the config file, environment variables and
// explicitly set flags, then validates the result.
func loadConfig(env *Environment, fs *flag.FlagSet, common *commonFlags, browser *browserFlags) (*config.Config, error) {
	envCfg, err := loadEnvConfig(env.Getenv)
	if err != nil {
		return nil, err
	}
	warnUnknownEnvVars(env.Stderr, env.Environ())

	path := common.config
	if path == "" {
		path = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if path != "" {
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	applyFlags(fs, common, browser, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes JSON in production and text elsewhere.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// converterOptions maps a validated config onto library options.
func converterOptions(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) ([]html2pdf.Option, error) {
	t, err := cfg.Timeouts()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	d := cfg.Document
	opts := []html2pdf.Option{
		html2pdf.WithProduction(cfg.IsProduction()),
		html2pdf.WithIsolation(cfg.Isolation()),
		html2pdf.WithEngine(cfg.Browser.Engine),
		html2pdf.WithExecutable(cfg.Browser.Bin),
		html2pdf.WithCacheDir(cfg.Browser.CacheDir),
		html2pdf.WithManagedDir(cfg.Browser.ManagedDir),
		html2pdf.WithExtraArgs(cfg.Browser.ExtraArgs...),
		html2pdf.WithLaunchTimeout(t.Launch),
		html2pdf.WithPageTimeouts(t.Navigation, t.Operation),
		html2pdf.WithIdleWindow(t.IdleWindow),
		html2pdf.WithMaxHTMLBytes(cfg.Render.MaxHTMLBytes),
		html2pdf.WithVerify(cfg.Render.Verify),
		html2pdf.WithLogger(logger),
		html2pdf.WithDocument(html2pdf.DocumentSettings{
			Locale:     d.Locale,
			Location:   loc,
			Title:      d.Title,
			BrandText:  d.BrandText,
			BrandLabel: d.BrandLabel,
			BrandURL:   d.BrandURL,
			Style:      d.Style,
			DateFormat: d.DateFormat,
			PageSize:   d.PageSize,
			Margins: html2pdf.Margins{
				Top:    d.Margins.Top,
				Right:  d.Margins.Right,
				Bottom: d.Margins.Bottom,
				Left:   d.Margins.Left,
			},
			AssetsDir: cfg.Assets.BasePath,
		}),
	}
	if m != nil {
		opts = append(opts, html2pdf.WithObserver(m))
	}
	return opts, nil
}

// newConverter builds a Converter from cfg. No browser starts yet.
func newConverter(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*html2pdf.Converter, error) {
	opts, err := converterOptions(cfg, logger, m)
	if err != nil {
		return nil, err
	}
	return html2pdf.NewConverter(opts...)
}
