// Package httpapi serves the conversion endpoints over HTTP.
//
// POST /api/convert accepts {"html": "..."} and answers with the PDF encoded
// in base64. POST /api/convert/markdown does the same for {"markdown": "..."}.
// GET /healthz reports the browser state and GET /metrics exposes Prometheus
// metrics when enabled.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/metrics"
)

// Renderer is the part of *html2pdf.Converter the handlers use.
type Renderer interface {
	Render(ctx context.Context, markup string) (*html2pdf.Result, error)
	RenderMarkdown(ctx context.Context, markdown string) (*html2pdf.Result, error)
	BrowserActive() bool
	CachedExecutable() string
	Engine() string
}

var _ Renderer = (*html2pdf.Converter)(nil)

// Config configures the handlers.
type Config struct {
	Production  bool
	MaxBytes    int    // input ceiling in UTF-8 bytes
	DebugOutput string // written after each success outside production; "" disables
	Logger      *slog.Logger
	Metrics     *metrics.Metrics // nil disables /metrics
}

// Server routes requests to a Renderer.
type Server struct {
	renderer Renderer
	cfg      Config
	logger   *slog.Logger
	router   chi.Router
}

// New builds the router.
func New(r Renderer, cfg Config) *Server {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = html2pdf.DefaultMaxHTMLBytes
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{renderer: r, cfg: cfg, logger: logger}

	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(s.logRequests)
	router.Use(middleware.Recoverer)
	router.Use(cors)
	router.MethodNotAllowed(methodNotAllowed)

	router.Options("/api/convert", noContent)
	router.Post("/api/convert", s.handleConvert(htmlInput))
	router.Options("/api/convert/markdown", noContent)
	router.Post("/api/convert/markdown", s.handleConvert(markdownInput))
	router.Get("/healthz", s.handleHealth)
	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	s.router = router
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) environment() string {
	if s.cfg.Production {
		return "production"
	}
	return "development"
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	respondJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Error: "Method " + r.Method + " Not Allowed",
	})
}
