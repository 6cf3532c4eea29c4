package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/orgtree/internal/config"
	"github.com/dgallion1/orgtree/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for orgtree.
type Server struct {
	router chi.Router
	store  *session.Store
	stats  *session.CommandStats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(store *session.Store, stats *session.CommandStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store: store,
		stats: stats,
		log:   log,
		cfg:   cfg,
	}
	s.setupRoutes()
	return s
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/documents", s.handleCreateDocument)
		r.Get("/api/documents", s.handleListDocuments)
		r.Route("/api/documents/{docID}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Put("/", s.handleReplaceDocument)
			r.Delete("/", s.handleDeleteDocument)
			r.Post("/commands/{command}", s.handleCommand)
			r.Get("/nodes/{line}", s.handleInspect)
			r.Get("/progress", s.handleProgress)
		})
		r.Get("/api/stats/commands", s.handleCommandStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
