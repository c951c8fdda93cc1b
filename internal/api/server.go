// Package api exposes planning sessions over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/eshaffer321/cropplanner/internal/adapters/render"
	"github.com/eshaffer321/cropplanner/internal/api/handlers"
	"github.com/eshaffer321/cropplanner/internal/api/middleware"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/exports"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	// SettleTimeout bounds how long report and ?wait requests wait for
	// outstanding collaborator calls.
	SettleTimeout time.Duration
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8085,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		SettleTimeout:  30 * time.Second,
	}
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Manager *planner.Manager
	// Formats defaults to render.NewRegistry().
	Formats *render.Registry
	// Exports is optional; without it the export route is not mounted.
	Exports exports.Store
	// Now overrides the report timestamp source.
	Now func() time.Time
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	deps       Deps
}

// NewServer creates a new API server.
func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Formats == nil {
		deps.Formats = render.NewRegistry()
	}
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = DefaultConfig().SettleTimeout
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
		deps:   deps,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.Recoverer)

	// CORS
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.deps.Manager)
	s.router.Get("/health", healthHandler.ServeHTTP)

	if metrics := s.deps.Manager.Metrics(); metrics != nil {
		s.router.Handle("/metrics", metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		// Catalog
		regionsHandler := handlers.NewRegionsHandler(s.deps.Manager)
		r.Get("/regions", regionsHandler.List)
		r.Get("/regions/{region}/crops", regionsHandler.Crops)
		r.Get("/crops/{crop}/nutrients", regionsHandler.Nutrients)

		// Sessions
		sessionsHandler := handlers.NewSessionsHandler(s.deps.Manager, s.config.SettleTimeout)
		r.Post("/sessions", sessionsHandler.Create)
		r.Get("/sessions/{id}", sessionsHandler.Get)
		r.Delete("/sessions/{id}", sessionsHandler.Delete)
		r.Put("/sessions/{id}/region", sessionsHandler.SetRegion)
		r.Put("/sessions/{id}/crops", sessionsHandler.SetCrops)
		r.Put("/sessions/{id}/land", sessionsHandler.SetLand)
		r.Post("/sessions/{id}/submit", sessionsHandler.Submit)

		// Reports
		reportsHandler := handlers.NewReportsHandler(s.deps.Manager, s.deps.Formats, s.config.SettleTimeout, s.logger)
		if s.deps.Now != nil {
			reportsHandler.WithClock(s.deps.Now)
		}
		r.Get("/sessions/{id}/report", reportsHandler.Get)

		// Exports
		if s.deps.Exports != nil {
			exportsHandler := handlers.NewExportsHandler(reportsHandler, s.deps.Exports)
			r.Post("/sessions/{id}/exports", exportsHandler.Create)
			r.Get("/exports", exportsHandler.List)
		}
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	// WriteTimeout leaves room for a settle wait on report requests.
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.SettleTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
