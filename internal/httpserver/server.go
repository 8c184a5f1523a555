package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davidbz/workshopai/internal/config"
	"github.com/davidbz/workshopai/internal/httpserver/middleware"
	"github.com/davidbz/workshopai/internal/observability"
)

// Route paths.
const (
	PathCompletions       = "/v1/completions"
	PathLegacyCompletions = "/api/aiApi/qwenAIApi"
	PathEmail             = "/api/email"
	PathModels            = "/v1/models"
	PathHealth            = "/health"
)

// Server represents the HTTP server.
type Server struct {
	config      *config.ServerConfig
	handler     *Handler
	middlewares middleware.Middleware
	srv         *http.Server
}

// NewServer creates a new HTTP server (DI constructor).
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	middlewares middleware.Middleware,
) *Server {
	return &Server{
		config:      cfg,
		handler:     handler,
		middlewares: middlewares,
		srv:         nil,
	}
}

// Routes returns the routed handler wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(PathCompletions, s.handler.HandleCompletion)
	mux.HandleFunc(PathLegacyCompletions, s.handler.HandleCompletion)
	mux.HandleFunc(PathEmail, s.handler.HandleEmail)
	mux.HandleFunc(PathModels, s.handler.HandleModels)
	mux.HandleFunc(PathHealth, s.handler.HandleHealth)

	if s.middlewares == nil {
		return mux
	}
	return s.middlewares(mux)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: time.Duration(s.config.ReadTimeout) * time.Second,
		ReadTimeout:       time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.config.WriteTimeout) * time.Second,
	}

	observability.FromContext(context.Background()).Info("starting HTTP server",
		observability.Int("port", s.config.Port))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if s.srv == nil {
		return nil
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
