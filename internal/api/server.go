package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/treeflat/internal/archive"
	"github.com/dgallion1/treeflat/internal/config"
	"github.com/dgallion1/treeflat/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ForestStore reads and removes archived forests.
type ForestStore interface {
	GetForest(ctx context.Context, name string) (*archive.Forest, error)
	ListForests(ctx context.Context, limit int) ([]archive.Summary, error)
	DeleteForest(ctx context.Context, name string) error
}

// Server is the HTTP API server for treeflat.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	forests      ForestStore
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. A nil forests store
// disables the /api/forests endpoints.
func NewServer(orch *pipeline.Orchestrator, forests ForestStore, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		forests:      forests,
		log:          log,
		cfg:          cfg,
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
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.TreeflatAPIKey, s.log))

		r.Post("/api/convert", s.handleConvert)

		r.Post("/api/jobs", s.handleSubmitJob)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)

		r.Get("/api/forests", s.handleListForests)
		r.Get("/api/forests/{name}", s.handleGetForest)
		r.Delete("/api/forests/{name}", s.handleDeleteForest)

		r.Get("/api/stats/conversion", s.handleConversionStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
