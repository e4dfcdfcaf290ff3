// Package hints provides actionable hints for browser failures.
// Hints are formatted consistently as "\n  hint: <text>" so they can be
// appended to log messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// browserBinSet reports whether an explicit executable was configured.
func browserBinSet() bool {
	return os.Getenv("HTML2PDF_BROWSER_BIN") != "" || os.Getenv("ROD_BROWSER_BIN") != ""
}

// ForLaunch returns hints for a browser that failed to start.
func ForLaunch() string {
	var hints []string

	if IsInContainer() {
		hints = append(hints, "containers need Chrome's shared libraries and fonts installed")
	}
	if !browserBinSet() {
		hints = append(hints, "set HTML2PDF_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForResolve returns hints for a failed executable resolution.
// A failed resolution almost always means the managed download failed.
func ForResolve() string {
	hints := []string{"the managed Chromium download needs network access and a writable cache directory"}
	if !browserBinSet() {
		hints = append(hints, "set HTML2PDF_BROWSER_BIN to skip the download")
	}
	return formatHints(hints)
}

// ForTimeout returns a hint about raising page timeouts.
func ForTimeout() string {
	return format("documents with slow external assets may need a larger page.operationTimeout")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
