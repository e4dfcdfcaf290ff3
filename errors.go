package html2pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Input errors: rejected before any browser work.
	ErrInvalidInput  = errors.New("HTML content is required and must be a string")
	ErrInputTooLarge = errors.New("HTML content too large")

	// Executable resolution and browser launch.
	ErrExecutableNotFound = errors.New("no usable browser executable")
	ErrBrowserLaunch      = errors.New("failed to launch browser")
	ErrUnknownEngine      = errors.New("unknown browser engine")

	// Render stage errors. Any of these destroys the shared browser.
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPaginationHook = errors.New("pagination hook failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrInvalidPDF     = errors.New("generated PDF is invalid")

	ErrConverterClosed = errors.New("converter is closed")
)

// Stage names a step of the render pipeline.
type Stage string

// Render pipeline stages, in execution order.
const (
	StagePageCreate Stage = "page-create"
	StageLoad       Stage = "load"
	StageHook       Stage = "pagination-hook"
	StageExport     Stage = "export"
	StageVerify     Stage = "verify"
)

// stageSentinels maps each stage to the sentinel its failures wrap.
var stageSentinels = map[Stage]error{
	StagePageCreate: ErrPageCreate,
	StageLoad:       ErrPageLoad,
	StageHook:       ErrPaginationHook,
	StageExport:     ErrPDFGeneration,
	StageVerify:     ErrInvalidPDF,
}

// RenderError reports a failure inside the render pipeline.
// It unwraps to both the stage sentinel and the underlying cause.
type RenderError struct {
	Stage Stage
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%v: %v", stageSentinels[e.Stage], e.Err)
}

func (e *RenderError) Unwrap() []error {
	return []error{stageSentinels[e.Stage], e.Err}
}

// IsRenderError reports whether err came from a render stage, either as a
// *RenderError or as one of the stage sentinels.
func IsRenderError(err error) bool {
	var re *RenderError
	if errors.As(err, &re) {
		return true
	}
	for _, sentinel := range stageSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsInputError reports whether err is a rejected request input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInputTooLarge)
}
