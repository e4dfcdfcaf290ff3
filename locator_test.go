package html2pdf

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// stubFetcher records downloads.
type stubFetcher struct {
	mu    sync.Mutex
	path  string
	err   error
	dirs  []string
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.dirs = append(f.dirs, dir)
	return f.path, f.err
}

func newTestLocator(cfg LocatorConfig, goos string, present map[string]bool, onPath string, f *stubFetcher) *Locator {
	l := NewLocator(cfg)
	l.goos = goos
	l.home = `C:\Users\dev`
	l.exists = func(p string) bool { return present[p] }
	l.lookPath = func() (string, bool) { return onPath, onPath != "" }
	l.fetcher = f
	return l
}

// ---------------------------------------------------------------------------
// TestLocator_Resolve - strategy order
// ---------------------------------------------------------------------------

func TestLocator_Resolve(t *testing.T) {
	t.Parallel()

	cache := t.TempDir()

	tests := []struct {
		name         string
		cfg          LocatorConfig
		goos         string
		present      map[string]bool
		onPath       string
		fetchPath    string
		wantPath     string
		wantStrategy string
		wantFetchDir string
	}{
		{
			name:         "explicit path wins",
			cfg:          LocatorConfig{Executable: "/custom/chrome"},
			goos:         "linux",
			present:      map[string]bool{"/custom/chrome": true, "/usr/bin/chromium": true},
			wantPath:     "/custom/chrome",
			wantStrategy: StrategyExplicit,
		},
		{
			name:         "first existing unix path",
			goos:         "linux",
			present:      map[string]bool{"/usr/bin/chromium": true, "/usr/bin/chromium-browser": true},
			cfg:          LocatorConfig{CacheDir: cache},
			wantPath:     "/usr/bin/chromium",
			wantStrategy: StrategyProbe,
		},
		{
			name:         "macOS application bundle",
			goos:         "darwin",
			present:      map[string]bool{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome": true},
			cfg:          LocatorConfig{CacheDir: cache},
			wantPath:     "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			wantStrategy: StrategyProbe,
		},
		{
			name:         "windows x86 install",
			goos:         "windows",
			present:      map[string]bool{`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`: true},
			cfg:          LocatorConfig{CacheDir: cache},
			wantPath:     `C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			wantStrategy: StrategyProbe,
		},
		{
			name:         "unix list ignored on windows",
			goos:         "windows",
			present:      map[string]bool{"/usr/bin/google-chrome": true},
			onPath:       `C:\tools\chrome.exe`,
			cfg:          LocatorConfig{CacheDir: cache},
			wantPath:     `C:\tools\chrome.exe`,
			wantStrategy: StrategyPath,
		},
		{
			name:         "PATH before download",
			goos:         "linux",
			onPath:       "/snap/bin/chromium",
			cfg:          LocatorConfig{CacheDir: cache},
			wantPath:     "/snap/bin/chromium",
			wantStrategy: StrategyPath,
		},
		{
			name:         "download into cache dir when nothing is installed",
			goos:         "linux",
			fetchPath:    "/cache/chromium/chrome",
			cfg:          LocatorConfig{CacheDir: filepath.Join(cache, "nested")},
			wantPath:     "/cache/chromium/chrome",
			wantStrategy: StrategyManaged,
			wantFetchDir: filepath.Join(cache, "nested"),
		},
		{
			name:         "production skips local probing",
			goos:         "linux",
			present:      map[string]bool{"/usr/bin/google-chrome": true},
			onPath:       "/usr/bin/google-chrome",
			fetchPath:    "/tmp/chromium/chrome",
			cfg:          LocatorConfig{Production: true, ManagedDir: "/tmp/chromium"},
			wantPath:     "/tmp/chromium/chrome",
			wantStrategy: StrategyManaged,
			wantFetchDir: "/tmp/chromium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &stubFetcher{path: tt.fetchPath}
			l := newTestLocator(tt.cfg, tt.goos, tt.present, tt.onPath, f)

			got, err := l.Resolve(context.Background())
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if got != tt.wantPath {
				t.Errorf("Resolve() = %q, want %q", got, tt.wantPath)
			}
			if l.Strategy() != tt.wantStrategy {
				t.Errorf("Strategy() = %q, want %q", l.Strategy(), tt.wantStrategy)
			}
			if tt.wantFetchDir == "" && f.calls != 0 {
				t.Errorf("unexpected download into %v", f.dirs)
			}
			if tt.wantFetchDir != "" && (f.calls != 1 || f.dirs[0] != tt.wantFetchDir) {
				t.Errorf("downloads = %v, want one into %q", f.dirs, tt.wantFetchDir)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLocator_Cache - success is kept, failure is not
// ---------------------------------------------------------------------------

func TestLocator_CachesSuccess(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{path: "/managed/chrome"}
	l := newTestLocator(LocatorConfig{Production: true}, "linux", nil, "", f)

	if l.Cached() != "" {
		t.Fatalf("Cached() = %q before resolution", l.Cached())
	}
	for range 3 {
		if _, err := l.Resolve(context.Background()); err != nil {
			t.Fatalf("Resolve() unexpected error: %v", err)
		}
	}
	if f.calls != 1 {
		t.Errorf("downloads = %d, want 1", f.calls)
	}
	if l.Cached() != "/managed/chrome" {
		t.Errorf("Cached() = %q, want /managed/chrome", l.Cached())
	}

	// A cached path is never re-validated.
	l.exists = func(string) bool { return false }
	if got, _ := l.Resolve(context.Background()); got != "/managed/chrome" {
		t.Errorf("Resolve() after cache = %q", got)
	}
}

func TestLocator_FailureNotCached(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{err: errors.New("network unreachable")}
	l := newTestLocator(LocatorConfig{Production: true}, "linux", nil, "", f)

	_, err := l.Resolve(context.Background())
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Fatalf("Resolve() error = %v, want %v", err, ErrExecutableNotFound)
	}
	if l.Cached() != "" {
		t.Errorf("Cached() = %q after failure", l.Cached())
	}

	f.mu.Lock()
	f.err, f.path = nil, "/managed/chrome"
	f.mu.Unlock()

	got, err := l.Resolve(context.Background())
	if err != nil || got != "/managed/chrome" {
		t.Errorf("Resolve() = %q, %v; want /managed/chrome", got, err)
	}
	if f.calls != 2 {
		t.Errorf("downloads = %d, want 2", f.calls)
	}
}

func TestLocator_ExplicitMissing(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{path: "/managed/chrome"}
	l := newTestLocator(LocatorConfig{Executable: "/nowhere/chrome"}, "linux", nil, "", f)

	_, err := l.Resolve(context.Background())
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Fatalf("Resolve() error = %v, want %v", err, ErrExecutableNotFound)
	}
	if f.calls != 0 {
		t.Error("explicit path failure fell back to a download")
	}
}

// blockingFetcher holds a download open until release is closed.
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, _ string) (string, error) {
	close(f.started)
	select {
	case <-f.release:
		return "/managed/chrome", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestLocator_CachedDoesNotWaitForDownload(t *testing.T) {
	t.Parallel()

	f := &blockingFetcher{started: make(chan struct{}), release: make(chan struct{})}
	l := newTestLocator(LocatorConfig{Production: true, ManagedDir: t.TempDir()}, "linux", nil, "", nil)
	l.fetcher = f

	resolved := make(chan error, 1)
	go func() {
		_, err := l.Resolve(context.Background())
		resolved <- err
	}()
	<-f.started

	read := make(chan string, 1)
	go func() { read <- l.Cached() + l.Strategy() }()

	select {
	case got := <-read:
		if got != "" {
			t.Errorf("Cached()+Strategy() during download = %q, want empty", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Cached() blocked while a download is in progress")
	}

	close(f.release)
	if err := <-resolved; err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := l.Cached(); got != "/managed/chrome" {
		t.Errorf("Cached() = %q, want /managed/chrome", got)
	}
}
