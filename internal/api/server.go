// Package api provides the HTTP API server and handlers for the Footprints application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/footprintsforfreedom/footprints-server/internal/http/response"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
	"github.com/footprintsforfreedom/footprints-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store             store.Store
	services          *Services
	router            *chi.Mux
	api               huma.API
	logger            *slog.Logger
	validator         *validation.Validator
	searchRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, logger *slog.Logger) *Server {
	s := &Server{
		store:             st,
		services:          services,
		router:            chi.NewRouter(),
		logger:            logger.With(slog.String("component", "api")),
		validator:         validation.New(),
		searchRateLimiter: NewRateLimiter(300, time.Minute, 50),
	}

	// Middleware must be installed before the first route; creating the
	// Huma adapter already registers the OpenAPI and docs routes.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Footprints API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	// Content is public and read mostly from browsers on other origins.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	// Read traffic is anonymous and bursty; mutations are moderated and
	// low volume, so only GET requests are limited.
	s.router.Use(ReadRateLimitMiddleware(s.searchRateLimiter, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check stays outside the typed API so it works even while
	// the OpenAPI layer is broken.
	s.router.Get("/health", s.handleHealthCheck)

	s.registerSearchRoutes()
	s.registerContentRoutes()
	s.registerModerationRoutes()
	s.registerLanguageRoutes()
}

// handleHealthCheck returns server health status together with per-index
// document counts.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Search.IndexStats()
	if err != nil {
		s.logger.Error("health check: index stats failed", "error", err)
		response.Error(w, http.StatusServiceUnavailable, "search index unavailable", s.logger)
		return
	}

	if _, err := s.store.ListActiveLanguages(r.Context()); err != nil {
		s.logger.Error("health check: store probe failed", "error", err)
		response.Error(w, http.StatusServiceUnavailable, "database unavailable", s.logger)
		return
	}

	response.Success(w, map[string]any{
		"status":  "healthy",
		"indexes": stats,
	}, s.logger)
}
