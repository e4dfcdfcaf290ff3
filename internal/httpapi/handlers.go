package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// inputKind describes one accepted request body.
type inputKind struct {
	field  string // JSON key
	label  string // used in error messages
	render func(ctx context.Context, r Renderer, content string) (*html2pdf.Result, error)
}

var (
	htmlInput = inputKind{
		field: "html",
		label: "HTML",
		render: func(ctx context.Context, r Renderer, content string) (*html2pdf.Result, error) {
			return r.Render(ctx, content)
		},
	}
	markdownInput = inputKind{
		field: "markdown",
		label: "Markdown",
		render: func(ctx context.Context, r Renderer, content string) (*html2pdf.Result, error) {
			return r.RenderMarkdown(ctx, content)
		},
	}
)

func (k inputKind) requiredMessage() string {
	return k.label + " content is required and must be a string"
}

func (k inputKind) tooLargeMessage(limit int) string {
	return fmt.Sprintf("%s content too large (max %dKB)", k.label, limit/1000)
}

type convertResponse struct {
	Success     bool   `json:"success"`
	PDF         string `json:"pdf"`
	Environment string `json:"environment"`
	Pages       int    `json:"pages,omitempty"`
}

type errorResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	Details     string `json:"details,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Environment string `json:"environment,omitempty"`
}

type healthResponse struct {
	Status      string        `json:"status"`
	Environment string        `json:"environment"`
	Browser     browserHealth `json:"browser"`
}

type browserHealth struct {
	Active     bool   `json:"active"`
	Engine     string `json:"engine"`
	Executable string `json:"executable,omitempty"`
}

// handleConvert validates the body, renders it and answers with the PDF.
func (s *Server) handleConvert(kind inputKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, status := s.readContent(w, r, kind)
		switch status {
		case http.StatusBadRequest:
			s.reject(w, status, kind.requiredMessage())
			return
		case http.StatusRequestEntityTooLarge:
			s.reject(w, status, kind.tooLargeMessage(s.cfg.MaxBytes))
			return
		}

		res, err := kind.render(r.Context(), s.renderer, content)
		if err != nil {
			switch {
			case errors.Is(err, html2pdf.ErrInvalidInput):
				s.reject(w, http.StatusBadRequest, kind.requiredMessage())
			case errors.Is(err, html2pdf.ErrInputTooLarge):
				s.reject(w, http.StatusRequestEntityTooLarge, kind.tooLargeMessage(s.cfg.MaxBytes))
			default:
				respondJSON(w, http.StatusInternalServerError, errorResponse{
					Error:       "Internal Server Error",
					Details:     err.Error(),
					Platform:    runtime.GOOS,
					Environment: s.environment(),
				})
			}
			return
		}

		s.writeDebugCopy(r.Context(), res.PDF)

		respondJSON(w, http.StatusOK, convertResponse{
			Success:     true,
			PDF:         base64.StdEncoding.EncodeToString(res.PDF),
			Environment: s.environment(),
			Pages:       res.Pages,
		})
	}
}

// readContent decodes the body and applies the input checks. A zero status
// means the content is acceptable.
func (s *Server) readContent(w http.ResponseWriter, r *http.Request, kind inputKind) (string, int) {
	// JSON escaping can take up to six bytes per input byte.
	limit := int64(s.cfg.MaxBytes)*6 + 64<<10
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", http.StatusRequestEntityTooLarge
		}
		if !errors.Is(err, io.EOF) {
			s.logger.Debug("malformed request body", "error", err)
		}
		return "", http.StatusBadRequest
	}

	raw, ok := body[kind.field]
	if !ok {
		return "", http.StatusBadRequest
	}
	var content string
	if err := json.Unmarshal(raw, &content); err != nil {
		return "", http.StatusBadRequest // null, number, object...
	}

	switch err := html2pdf.CheckInput(content, s.cfg.MaxBytes); {
	case errors.Is(err, html2pdf.ErrInvalidInput):
		return "", http.StatusBadRequest
	case errors.Is(err, html2pdf.ErrInputTooLarge):
		return "", http.StatusRequestEntityTooLarge
	}
	return content, 0
}

func (s *Server) reject(w http.ResponseWriter, status int, msg string) {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.InputRejected(status)
	}
	respondJSON(w, status, errorResponse{Error: msg})
}

// writeDebugCopy saves the artifact outside production. Failures are logged.
func (s *Server) writeDebugCopy(ctx context.Context, pdf []byte) {
	if s.cfg.Production || s.cfg.DebugOutput == "" {
		return
	}
	if err := fileutil.WriteFileAtomic(s.cfg.DebugOutput, pdf); err != nil {
		s.logger.WarnContext(ctx, "debug copy not written", "path", s.cfg.DebugOutput, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "PDF saved", "path", s.cfg.DebugOutput)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Environment: s.environment(),
		Browser: browserHealth{
			Active:     s.renderer.BrowserActive(),
			Engine:     s.renderer.Engine(),
			Executable: s.renderer.CachedExecutable(),
		},
	})
}
