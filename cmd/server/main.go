// Package main provides the entry point for the paper search tool server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helixir/paper-search-service/internal/config"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/papersources"
	"github.com/helixir/paper-search-service/internal/papersources/arxiv"
	httpserver "github.com/helixir/paper-search-service/internal/server/http"
	"github.com/helixir/paper-search-service/internal/tools"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Str("version", version).Msg("paper-search-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		metricsPath = cfg.Metrics.Path
	}

	// Register paper sources.
	registry := papersources.NewRegistry()
	registry.Register(arxiv.New(arxiv.Config{
		BaseURL:              cfg.ArXiv.BaseURL,
		PDFBaseURL:           cfg.ArXiv.PDFBaseURL,
		Timeout:              cfg.ArXiv.Timeout,
		RateLimit:            cfg.ArXiv.RateLimit,
		BurstSize:            cfg.ArXiv.Burst,
		MaxResults:           cfg.ArXiv.MaxResults,
		MaxPDFSize:           cfg.ArXiv.MaxPDFSize,
		UserAgent:            cfg.ArXiv.UserAgent,
		AllowPrivateNetworks: cfg.ArXiv.AllowPrivateNetworks,
		Enabled:              cfg.ArXiv.Enabled,
	}, logger, metrics))

	toolService := tools.NewService(registry, tools.Config{
		CallTimeout: cfg.Tools.CallTimeout,
	}, logger, metrics)

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Name:            cfg.Server.Name,
		Version:         version,
		MetricsPath:     metricsPath,
	}
	httpSrv := httpserver.NewServer(httpCfg, toolService, logger)

	// Channel to collect server errors.
	errCh := make(chan error, 1)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	readyLog := logger.Info().
		Str("http_address", httpCfg.Address).
		Bool("arxiv_enabled", cfg.ArXiv.Enabled)
	if metricsPath != "" {
		readyLog = readyLog.Str("metrics_path", metricsPath)
	}
	readyLog.Msg("paper-search-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down paper-search-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("paper-search-service shutdown complete")
	return nil
}
