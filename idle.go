package html2pdf

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

// requestTracker counts in-flight network requests of one tab from
// DevTools network events.
type requestTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	changed  chan struct{} // closed and replaced when inflight changes
}

func newRequestTracker() *requestTracker {
	return &requestTracker{
		inflight: make(map[network.RequestID]struct{}),
		changed:  make(chan struct{}),
	}
}

// handle is registered with chromedp.ListenTarget.
func (t *requestTracker) handle(ev any) {
	switch ev := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.update(ev.RequestID, true)
	case *network.EventLoadingFinished:
		t.update(ev.RequestID, false)
	case *network.EventLoadingFailed:
		t.update(ev.RequestID, false)
	}
}

func (t *requestTracker) update(id network.RequestID, started bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, known := t.inflight[id]
	switch {
	case started && !known:
		t.inflight[id] = struct{}{}
	case !started && known:
		delete(t.inflight, id)
	default:
		return // redirect hop or a request that started before tracking
	}
	close(t.changed)
	t.changed = make(chan struct{})
}

func (t *requestTracker) snapshot() (int, <-chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight), t.changed
}

// waitIdle returns once no request has been in flight for window.
func (t *requestTracker) waitIdle(ctx context.Context, window time.Duration) error {
	for {
		n, changed := t.snapshot()
		if n > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-changed:
				continue
			}
		}

		timer := time.NewTimer(window)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-changed:
			timer.Stop() // a request started: the quiet window restarts
		}
	}
}
