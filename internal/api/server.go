package api

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/slidedit/internal/config"
	"github.com/dgallion1/slidedit/internal/editor"
	"github.com/dgallion1/slidedit/internal/translate"
)

// Server is the HTTP surface of the slide editor.
type Server struct {
	router chi.Router
	editor *editor.Editor
	stats  *translate.LatencyStats
	log    *slog.Logger
	cfg    config.Config

	page  *template.Template
	guide template.HTML
}

// NewServer creates and configures the HTTP server. stats may be nil when
// no translation backend is configured.
func NewServer(ed *editor.Editor, stats *translate.LatencyStats, log *slog.Logger, cfg config.Config) (*Server, error) {
	guide, err := renderGuide()
	if err != nil {
		return nil, err
	}
	s := &Server{
		editor: ed,
		stats:  stats,
		log:    log,
		cfg:    cfg,
		page:   pageTemplate,
		guide:  guide,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Browser editor.
	r.Get("/", s.handlePage)
	r.Post("/form", s.handleForm)
	r.Post("/upload", s.handlePageUpload)
	r.Post("/import", s.handlePageImport)
	r.Get("/export", s.handleExport)
	r.Get("/preview", s.handlePreview)
	r.Get("/download", s.handleDownload)

	// JSON API, authenticated when a key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/upload", s.handleUpload)
		r.Get("/api/fields", s.handleGetFields)
		r.Put("/api/fields", s.handlePutFields)
		r.Post("/api/translate", s.handleTranslate)
		r.Post("/api/clear", s.handleClear)
		r.Post("/api/fields/import", s.handleImport)
		r.Get("/api/fields/export", s.handleExport)
		r.Post("/api/state/save", s.handleSaveState)
		r.Post("/api/state/load", s.handleLoadState)
		r.Get("/api/stats/translate", s.handleTranslateStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
