// Package api provides the HTTP API server and handlers for the study jam tracker.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gdgscriet/studyjam-server/internal/sse"
)

// Options configures the HTTP surface.
type Options struct {
	Version     string
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   *Services
	router     *chi.Mux
	api        huma.API
	sseHandler *sse.Handler
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		services: services,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	s.sseHandler = sse.NewHandler(services.SSE, s.isAdminStream, logger)

	s.setupMiddleware(opts)

	config := huma.DefaultConfig("Study Jam Tracker API", opts.Version)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.registerRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(clientIPMiddleware)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key", "Last-Event-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerLeaderboardRoutes()
	s.registerParticipantRoutes()
	s.registerEventRoutes()
	s.registerSearchRoutes()
	s.registerAuthRoutes()
	s.registerAdminRoutes()
	s.registerBotRoutes()

	// Raw routes: streaming bodies and multipart uploads.
	s.router.Get("/api/v1/stream", s.sseHandler.ServeHTTP)
	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth(s.logger))
		r.Get("/api/v1/admin/export", s.handleExport)
		r.Post("/api/v1/admin/upload-csv", s.handleUploadCSV)
	})
}

// isAdminStream reports whether an SSE client holds an admin session, either as a
// Bearer header or as ?token= (EventSource cannot set headers).
func (s *Server) isAdminStream(r *http.Request) bool {
	if _, err := requireAdmin(r.Context()); err == nil {
		return true
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		return false
	}
	_, err := s.services.Auth.Verify(token)
	return err == nil
}
