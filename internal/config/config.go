// Package config provides configuration management for the paper search service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides
// (e.g. PAPERSEARCH_ARXIV_BASE_URL).
const EnvPrefix = "PAPERSEARCH"

// Config holds all configuration for the paper search service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// ArXiv contains arXiv API settings.
	ArXiv ArXivConfig `mapstructure:"arxiv"`
	// Tools contains tool boundary settings.
	Tools ToolsConfig `mapstructure:"tools"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Name is the tool server name reported to clients.
	Name string `mapstructure:"name"`
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8000).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// ArXivConfig holds configuration for the arXiv paper source.
type ArXivConfig struct {
	// Enabled controls whether this source is used.
	Enabled bool `mapstructure:"enabled"`
	// BaseURL is the query API base URL.
	BaseURL string `mapstructure:"base_url"`
	// PDFBaseURL is the base URL PDF documents are fetched from.
	PDFBaseURL string `mapstructure:"pdf_base_url"`
	// Timeout is the timeout for a single outbound request.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second. Zero disables pacing.
	RateLimit float64 `mapstructure:"rate_limit"`
	// Burst is the limiter burst size when RateLimit is set.
	Burst int `mapstructure:"burst"`
	// MaxResults is the default number of results per search.
	MaxResults int `mapstructure:"max_results"`
	// MaxPDFSize caps the size of a fetched PDF in bytes.
	MaxPDFSize int64 `mapstructure:"max_pdf_size"`
	// UserAgent is sent with every outbound request.
	UserAgent string `mapstructure:"user_agent"`
	// AllowPrivateNetworks lets PDF fetches reach private addresses,
	// for local mirrors.
	AllowPrivateNetworks bool `mapstructure:"allow_private_networks"`
}

// ToolsConfig holds tool boundary configuration.
type ToolsConfig struct {
	// CallTimeout bounds a single tool invocation.
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	// DownloadDir is the default destination for downloaded PDFs.
	DownloadDir string `mapstructure:"download_dir"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paper-search-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.name", "paper_search_server")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	// Must exceed tools.call_timeout so a timed-out call can still report.
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "paper_search")

	// arXiv defaults
	v.SetDefault("arxiv.enabled", true)
	v.SetDefault("arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("arxiv.pdf_base_url", "https://arxiv.org")
	v.SetDefault("arxiv.timeout", "30s")
	v.SetDefault("arxiv.rate_limit", 0.0)
	v.SetDefault("arxiv.burst", 1)
	v.SetDefault("arxiv.max_results", 10)
	v.SetDefault("arxiv.max_pdf_size", 100*1024*1024)
	v.SetDefault("arxiv.user_agent", "paper-search-service/1.0")
	v.SetDefault("arxiv.allow_private_networks", false)

	// Tools defaults
	v.SetDefault("tools.call_timeout", "60s")
	v.SetDefault("tools.download_dir", "./downloads")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.Name == "" {
		return fmt.Errorf("server name is required")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /: %q", c.Metrics.Path)
	}

	// Validate arXiv config
	if c.ArXiv.Enabled {
		for name, raw := range map[string]string{"base_url": c.ArXiv.BaseURL, "pdf_base_url": c.ArXiv.PDFBaseURL} {
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("arxiv %s must be an absolute URL: %q", name, raw)
			}
		}
	}
	if c.ArXiv.Timeout <= 0 {
		return fmt.Errorf("arxiv timeout must be positive")
	}
	if c.ArXiv.RateLimit < 0 {
		return fmt.Errorf("arxiv rate_limit must not be negative")
	}
	if c.ArXiv.RateLimit > 0 && c.ArXiv.Burst <= 0 {
		return fmt.Errorf("arxiv burst must be positive when rate_limit is set")
	}
	if c.ArXiv.MaxResults <= 0 {
		return fmt.Errorf("arxiv max_results must be positive")
	}
	if c.ArXiv.MaxPDFSize <= 0 {
		return fmt.Errorf("arxiv max_pdf_size must be positive")
	}

	// Validate tools config
	if c.Tools.CallTimeout <= 0 {
		return fmt.Errorf("tools call_timeout must be positive")
	}

	return nil
}
