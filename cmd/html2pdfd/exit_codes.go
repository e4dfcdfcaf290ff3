package main

import (
	"errors"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/assets"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/units"
)

// Exit codes follow Unix conventions: 0=success, 1=general, 2=usage, and
// custom codes below 126.
const (
	ExitSuccess = 0 // Command succeeded
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Executable, launch or render failure
)

// exitCodeFor maps an error to an exit code. Callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, html2pdf.ErrExecutableNotFound) ||
		errors.Is(err, html2pdf.ErrBrowserLaunch) ||
		html2pdf.IsRenderError(err) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrListen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		html2pdf.IsInputError(err) ||
		errors.Is(err, html2pdf.ErrUnknownEngine) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, units.ErrInvalidLength) ||
		errors.Is(err, units.ErrUnknownPaper) {
		return ExitUsage
	}

	return ExitGeneral
}
