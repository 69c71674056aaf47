// Package api provides the HTTP API server and handlers for the Khatma application.
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

	"github.com/khatmahq/khatma-server/internal/http/response"
	"github.com/khatmahq/khatma-server/internal/service"
	"github.com/khatmahq/khatma-server/internal/store"
)

// apiVersion is reported by the health endpoint and the OpenAPI doc.
const apiVersion = "1.0.0"

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	Session  *service.SessionService
	User     *service.UserService
	Journey  *service.JourneyService
	Reading  *service.ReadingService
	Progress *service.ProgressService
	Stats    *service.StatsService
	Invite   *service.InviteService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, services Services, corsOrigins []string, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware(corsOrigins)

	RegisterErrorHandler()

	config := huma.DefaultConfig("Khatma API", apiVersion)
	config.DocsPath = "/api/v1/docs"
	config.OpenAPIPath = "/api/v1/openapi"
	s.api = humachi.New(s.router, config)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))

	// Auth endpoints get a per-IP rate limit to slow credential stuffing.
	authLimiter := NewRateLimiter(20, time.Minute, 10)
	s.router.Use(rateLimitAuthPaths(authLimiter, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check stays outside the OpenAPI surface.
	s.router.Get("/health", s.handleHealthCheck)

	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerJourneyRoutes()
	s.registerReadingRoutes()
	s.registerProgressRoutes()
	s.registerInviteRoutes()
	s.registerQuranRoutes()
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status":  "healthy",
		"version": apiVersion,
	}, s.logger)
}
