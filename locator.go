package html2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	goruntime "runtime"
	"sync"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// Discovery strategies, reported in logs and by doctor.
const (
	StrategyExplicit = "explicit"
	StrategyProbe    = "probe"
	StrategyPath     = "path"
	StrategyManaged  = "managed"
)

// fetcher downloads a browser build into dir and returns its executable.
type fetcher interface {
	Fetch(ctx context.Context, dir string) (string, error)
}

// rodFetcher downloads Chromium with rod's launcher. An empty dir uses the
// launcher's default cache.
type rodFetcher struct{}

func (rodFetcher) Fetch(ctx context.Context, dir string) (string, error) {
	b := launcher.NewBrowser()
	b.Context = ctx
	if dir != "" {
		b.RootDir = dir
	}
	return b.Get()
}

// windowsCandidates lists the usual Chrome install paths on Windows.
func windowsCandidates(home string) []string {
	return []string{
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		filepath.Join(home, "AppData", "Local", "Google", "Chrome", "Application", "chrome.exe"),
	}
}

// unixCandidates lists the usual Chrome and Chromium paths on Linux and macOS.
var unixCandidates = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
}

// Locator resolves the browser executable once and caches a success for the
// rest of the process lifetime. Failures are not cached.
type Locator struct {
	explicit   string
	production bool
	cacheDir   string
	managedDir string
	logger     *slog.Logger

	// Injected by tests.
	goos     string
	home     string
	exists   func(string) bool
	lookPath func() (string, bool)
	fetcher  fetcher

	resolveMu sync.Mutex // serializes resolution

	mu       sync.Mutex // guards cached and strategy
	cached   string
	strategy string
}

// LocatorConfig configures a Locator.
type LocatorConfig struct {
	Executable string // explicit path, checked first; must exist
	Production bool   // skips local probing and downloads into ManagedDir
	CacheDir   string // download directory outside production
	ManagedDir string // download directory in production; "" = rod's default
	Logger     *slog.Logger
}

// NewLocator creates a Locator for the current platform.
func NewLocator(cfg LocatorConfig) *Locator {
	home, _ := os.UserHomeDir()
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &Locator{
		explicit:   cfg.Executable,
		production: cfg.Production,
		cacheDir:   cfg.CacheDir,
		managedDir: cfg.ManagedDir,
		logger:     logger,
		goos:       goruntime.GOOS,
		home:       home,
		exists:     fileutil.FileExists,
		lookPath:   launcher.LookPath,
		fetcher:    rodFetcher{},
	}
}

// Cached returns the resolved path, or "" before the first success.
func (l *Locator) Cached() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cached
}

// Strategy returns how the cached path was found, or "".
func (l *Locator) Strategy() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.strategy
}

// Resolve returns the browser executable. In order:
//  1. the explicit path, when configured
//  2. outside production, the first existing well-known install path
//  3. outside production, a Chrome found on PATH
//  4. a managed download (ManagedDir in production, CacheDir otherwise)
//
// Concurrent callers are serialized so at most one download runs.
func (l *Locator) Resolve(ctx context.Context) (string, error) {
	if path := l.Cached(); path != "" {
		return path, nil
	}

	l.resolveMu.Lock()
	defer l.resolveMu.Unlock()

	if path := l.Cached(); path != "" {
		return path, nil
	}

	path, strategy, err := l.resolve(ctx)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.cached, l.strategy = path, strategy
	l.mu.Unlock()
	l.logger.Info("browser executable resolved", "path", path, "strategy", strategy)
	return path, nil
}

func (l *Locator) resolve(ctx context.Context) (string, string, error) {
	if l.explicit != "" {
		if !l.exists(l.explicit) {
			return "", "", fmt.Errorf("%w: configured executable %q does not exist", ErrExecutableNotFound, l.explicit)
		}
		return l.explicit, StrategyExplicit, nil
	}

	if l.production {
		path, err := l.fetcher.Fetch(ctx, l.managedDir)
		if err != nil {
			return "", "", fmt.Errorf("%w: managed download: %v", ErrExecutableNotFound, err)
		}
		return path, StrategyManaged, nil
	}

	for _, candidate := range l.candidates() {
		if l.exists(candidate) {
			return candidate, StrategyProbe, nil
		}
	}
	if path, ok := l.lookPath(); ok {
		return path, StrategyPath, nil
	}

	l.logger.Warn("no local browser found, downloading Chromium", "dir", l.cacheDir)
	if err := fileutil.EnsureDir(l.cacheDir); err != nil {
		return "", "", fmt.Errorf("%w: cache directory: %v", ErrExecutableNotFound, err)
	}
	path, err := l.fetcher.Fetch(ctx, l.cacheDir)
	if err != nil {
		return "", "", fmt.Errorf("%w: managed download: %v", ErrExecutableNotFound, err)
	}
	return path, StrategyManaged, nil
}

func (l *Locator) candidates() []string {
	if l.goos == "windows" {
		return windowsCandidates(l.home)
	}
	return unixCandidates
}
