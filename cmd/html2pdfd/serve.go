package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/httpapi"
	"github.com/alnah/go-html2pdf/internal/metrics"
)

// ErrListen reports that the listen address could not be bound.
var ErrListen = errors.New("failed to listen")

const readHeaderTimeout = 10 * time.Second

// runServe serves the conversion API until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, fs, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	cfg, err := loadConfig(env, fs, &f.common, &f.browser)
	if err != nil {
		return err
	}
	if fs.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if fs.Changed("debug-output") {
		cfg.Render.DebugOutput = f.debugOutput
	}
	timeouts, err := cfg.Timeouts()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, env.Stderr)

	var m *metrics.Metrics
	if !f.noMetrics {
		m = metrics.New()
	}

	conv, err := newConverter(cfg, logger, m)
	if err != nil {
		return err
	}
	// Runs after the HTTP server has drained.
	defer func() { _ = conv.Close() }()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrListen, cfg.Server.Addr, err)
	}

	logger.Info("starting",
		"version", Version,
		"addr", ln.Addr().String(),
		"environment", cfg.Environment,
		"engine", conv.Engine(),
		"isolation", cfg.Isolation(),
	)

	srv := newHTTPServer(cfg, timeouts, conv, m, logger)
	return serve(ctx, ln, srv, timeouts.Shutdown, logger)
}

// newHTTPServer wires the handlers into an http.Server with the configured
// timeouts.
func newHTTPServer(cfg *config.Config, t config.Timeouts, r httpapi.Renderer, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	handler := httpapi.New(r, httpapi.Config{
		Production:  cfg.IsProduction(),
		MaxBytes:    cfg.Render.MaxHTMLBytes,
		DebugOutput: cfg.Render.DebugOutput,
		Logger:      logger,
		Metrics:     m,
	})
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       t.Read,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      t.Write,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}

// serve runs srv on ln until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, ln net.Listener, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
