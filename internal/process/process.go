// Package process terminates browser process trees left behind after a
// browser handle is destroyed.
package process

import "errors"

// ErrInvalidPID is returned for pids that would target the caller's own
// process group (0) or every process the caller may signal (negative).
var ErrInvalidPID = errors.New("invalid pid")
