package html2pdf

import "time"

// Observer receives lifecycle events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	// BrowserLaunched reports a launch attempt and how long it took.
	BrowserLaunched(d time.Duration, err error)
	// BrowserClosed reports the teardown of a launched process.
	BrowserClosed(reason string)
	// RenderCompleted reports a finished render. stage names the failing
	// step and is empty on success.
	RenderCompleted(stage string, d time.Duration, pages int, err error)
}

// Close reasons passed to Observer.BrowserClosed.
const (
	CloseReasonFailure   = "render-failure"
	CloseReasonIsolation = "isolation"
	CloseReasonDestroy   = "destroy"
	CloseReasonShutdown  = "shutdown"
)

type nopObserver struct{}

func (nopObserver) BrowserLaunched(time.Duration, error)              {}
func (nopObserver) BrowserClosed(string)                              {}
func (nopObserver) RenderCompleted(string, time.Duration, int, error) {}
