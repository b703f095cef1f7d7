// Package httpserver serves the tool surface over HTTP: a JSON-RPC endpoint
// for tool clients plus REST mirrors and health probes for operators.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/tools"
)

// ToolService is the tool boundary the HTTP server exposes.
type ToolService interface {
	Descriptors() []tools.Descriptor
	Call(ctx context.Context, name string, args map[string]any) (*tools.Result, error)
	SearchArxiv(ctx context.Context, query string, maxResults int) ([]map[string]any, error)
	ReadArxivPaperOutcome(ctx context.Context, paperID string) tools.ReadOutcome
	Ready() error
}

// Server is the HTTP tool server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	tools      ToolService
	info       serverInfo
	logger     zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Name and Version are reported to tool clients by initialize.
	Name    string
	Version string

	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string
}

// NewServer creates a new HTTP server over the given tool boundary.
func NewServer(cfg Config, toolService ToolService, logger zerolog.Logger) *Server {
	if cfg.Name == "" {
		cfg.Name = "paper_search_server"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		tools:  toolService,
		info:   serverInfo{Name: cfg.Name, Version: cfg.Version},
		logger: logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter(cfg.MetricsPath)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter(metricsPath string) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(requestLogMiddleware(s.logger))

	// Health endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	if metricsPath != "" {
		r.Handle(metricsPath, promhttp.Handler())
	}

	// Tool clients
	r.With(jsonContentTypeMiddleware).Post("/mcp", s.handleRPC)

	// Operator REST mirrors
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		r.Get("/tools", s.listTools)
		r.Get("/arxiv/search", s.searchArxiv)
		r.Get("/arxiv/papers/{paperID}/text", s.readArxivPaper)
	})

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports whether the paper source can take calls.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.tools.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"arxiv":  "unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"arxiv":  "enabled",
	})
}
