package html2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-html2pdf/internal/hints"
)

// resolveTimeout bounds executable resolution, which may download Chromium.
const resolveTimeout = 5 * time.Minute

// browserHandle is one launched process and the requests leasing it.
// inflight, detached and reason are guarded by manager.mu.
type browserHandle struct {
	proc      browserProcess
	id        uint64
	inflight  int
	detached  bool
	reason    string
	closeOnce sync.Once
}

// manager owns the shared browser process. At most one handle sits in the
// slot; detached handles are closed once nothing leases them.
type manager struct {
	engine        engine
	locator       *Locator
	launchOpts    launchOptions
	launchTimeout time.Duration
	isolate       bool
	logger        *slog.Logger
	observer      Observer

	launches singleflight.Group

	mu      sync.Mutex
	current *browserHandle
	nextID  uint64
	closed  bool
}

// acquire leases the current handle, launching one when the slot is empty.
// Concurrent callers share a single launch.
func (m *manager) acquire(ctx context.Context) (*browserHandle, error) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, ErrConverterClosed
		}
		if h := m.current; h != nil {
			h.inflight++
			m.mu.Unlock()
			return h, nil
		}
		m.mu.Unlock()

		// The launch must not fail for every waiter when the first caller
		// goes away, so it runs detached from ctx.
		ch := m.launches.DoChan("launch", func() (any, error) {
			return m.launch(context.WithoutCancel(ctx))
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-ch:
			if r.Err != nil {
				return nil, r.Err
			}
		}
	}
}

func (m *manager) launch(ctx context.Context) (*browserHandle, error) {
	m.mu.Lock()
	if h := m.current; h != nil {
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()

	resolveCtx, cancelResolve := context.WithTimeout(ctx, resolveTimeout)
	bin, err := m.locator.Resolve(resolveCtx)
	cancelResolve()
	if err != nil {
		m.logger.Error("browser executable resolution failed", "error", err.Error()+hints.ForResolve())
		return nil, err
	}

	launchCtx, cancelLaunch := context.WithTimeout(ctx, m.launchTimeout)
	defer cancelLaunch()

	start := time.Now()
	proc, err := m.engine.Launch(launchCtx, bin, m.launchOpts)
	elapsed := time.Since(start)
	m.observer.BrowserLaunched(elapsed, err)
	if err != nil {
		m.logger.Error("browser launch failed",
			"engine", m.engine.Name(), "path", bin, "error", err.Error()+hints.ForLaunch())
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		h := &browserHandle{proc: proc}
		m.closeHandle(h, CloseReasonShutdown)
		return nil, ErrConverterClosed
	}
	m.nextID++
	h := &browserHandle{proc: proc, id: m.nextID}
	m.current = h
	m.mu.Unlock()

	m.logger.Info("browser launched", "engine", m.engine.Name(), "browser", h.id, "duration", elapsed)
	return h, nil
}

// release ends a lease. A failed render destroys the process at once. Under
// isolation the handle leaves the slot now and the process is closed when
// its last lease ends.
func (m *manager) release(h *browserHandle, failed bool) {
	m.mu.Lock()
	h.inflight--
	switch {
	case failed:
		m.detachLocked(h, CloseReasonFailure)
	case m.isolate:
		m.detachLocked(h, CloseReasonIsolation)
	}
	closeNow := failed || (h.detached && h.inflight == 0)
	reason := h.reason
	m.mu.Unlock()

	if closeNow {
		m.closeHandle(h, reason)
	}
}

// detachLocked clears the slot if it still holds h. The first detach
// decides the reason.
func (m *manager) detachLocked(h *browserHandle, reason string) {
	if m.current == h {
		m.current = nil
	}
	if !h.detached {
		h.detached = true
		h.reason = reason
	}
}

// destroy closes the current process, if any. Safe to call repeatedly.
func (m *manager) destroy(reason string) {
	m.mu.Lock()
	h := m.current
	if h == nil {
		m.mu.Unlock()
		return
	}
	m.detachLocked(h, reason)
	m.mu.Unlock()

	m.closeHandle(h, reason)
}

// shutdown refuses further leases and destroys the current process.
func (m *manager) shutdown() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.destroy(CloseReasonShutdown)
}

// active reports whether a process sits in the slot.
func (m *manager) active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// closeHandle closes the process once. Close errors are logged, never returned.
func (m *manager) closeHandle(h *browserHandle, reason string) {
	h.closeOnce.Do(func() {
		if err := h.proc.Close(); err != nil {
			m.logger.Warn("browser close failed", "browser", h.id, "reason", reason, "error", err)
		}
		m.observer.BrowserClosed(reason)
		m.logger.Info("browser closed", "browser", h.id, "reason", reason)
	})
}
