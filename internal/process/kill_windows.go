//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillTree kills pid and its children with taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	// Exit status 128 means the process is already gone; not worth surfacing.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
	return nil
}
