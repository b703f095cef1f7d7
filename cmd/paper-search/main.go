// Package main is the entry point for the paper-search CLI, which drives the
// same arXiv adapter and tool boundary as the server for local use.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/helixir/paper-search-service/internal/config"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/papersources"
	"github.com/helixir/paper-search-service/internal/papersources/arxiv"
	"github.com/helixir/paper-search-service/internal/tools"
)

// version is set at build time via ldflags.
var version = "dev"

// app holds the components every subcommand uses. It is built once
// in PersistentPreRunE.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *papersources.Registry
	tools    *tools.Service
}

var current *app

// rootCmd is the base command for the paper-search CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-search",
	Short: "Search arXiv and read paper text from the command line",
	Long: `paper-search queries the arXiv API, reads PDFs into plain text, and
downloads papers. Configuration comes from config.yaml and PAPERSEARCH_*
environment variables, the same sources the server uses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level, _ := cmd.Flags().GetString("log-level")
		current = newApp(cfg, level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level written to stderr")
}

// newApp wires the arXiv source and tool boundary from cfg. Logs go to
// stderr so stdout carries only results.
func newApp(cfg *config.Config, level string) *app {
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  level,
		Format: "console",
		Output: "stderr",
	})

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
	}, logger, nil))

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		tools:    tools.NewService(registry, tools.Config{CallTimeout: cfg.Tools.CallTimeout}, logger, nil),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
