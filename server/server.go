// Package server provides HTTP server management and lifecycle handling for the dosing service.
// It includes server setup, middleware configuration, route management, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/giygas/vetdose/config"
	"github.com/giygas/vetdose/interfaces"
	"github.com/giygas/vetdose/logging"
	"github.com/giygas/vetdose/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	httpHandler interfaces.HTTPHandler
	rateLimiter *RateLimiter
	config      *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, httpHandler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:        router,
			Addr:           cfg.Address + ":" + cfg.Port,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
		},
		router:      router,
		httpHandler: httpHandler,
		rateLimiter: NewRateLimiter(5 * time.Minute),
		config:      cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware(s.config.Env == "prod")) // before RealIPMiddleware to see the original RemoteAddr
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json", "text/html"))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler(s.rateLimiter))
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.httpHandler

	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	// Formulary
	s.router.Get("/species", h.ServeSpecies)
	s.router.Get("/tabs", h.ServeTabs)
	s.router.Get("/drugs", h.ServeDrugs)
	s.router.Get("/drugs/{id}", h.ServeDrug)

	// Stateless calculator
	s.router.Post("/dose", h.ComputeDose)
	s.router.Post("/normalize", h.Normalize)

	// Worksheet sessions
	s.router.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.ServeSession)
			r.Delete("/", h.DeleteSession)
			r.Put("/patient", h.UpdatePatient)
			r.Get("/rows", h.ServeRows)
			r.Put("/rows/{drugID}", h.UpdateRow)
			r.Post("/selection/{drugID}", h.ToggleSelection)
			r.Put("/selection/{drugID}/notes", h.UpdateNotes)
			r.Delete("/selection", h.ClearSelection)
			r.Post("/reset", h.ResetSession)
			r.Get("/sheet", h.ServeSheet)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Start starts the server and blocks until it stops. A graceful shutdown
// returns nil.
func (s *Server) Start() error {
	if s.config.IsDev() {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.rateLimiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
