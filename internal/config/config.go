// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration for the console API server.
type Config struct {
	LogLevel              string // debug, info, warn, error
	ListenAddr            string // Server listen address (e.g., ":8080")
	DatabasePath          string // SQLite database path
	MetricsListenAddr     string // Metrics listener address (e.g., "localhost:9090")
	BootstrapSessionToken string // Optional: session token created at startup for first access
	PollIntervalSeconds   int    // Console directory refresh interval
}

// Load parses configuration from environment variables.
// All configuration options have sensible defaults for ease of deployment.
func Load() (*Config, error) {
	logLevel := os.Getenv("LOG_LEVEL")
	listenAddr := os.Getenv("LISTEN_ADDR")
	databasePath := os.Getenv("DATABASE_PATH")
	metricsListenAddr := os.Getenv("METRICS_LISTEN_ADDR")
	bootstrapToken := os.Getenv("BOOTSTRAP_SESSION_TOKEN")
	pollInterval := os.Getenv("POLL_INTERVAL_SECONDS")

	if logLevel == "" {
		logLevel = "info"
	}

	if listenAddr == "" {
		listenAddr = ":8080"
	}

	if databasePath == "" {
		databasePath = "/data/console.db"
	}

	if metricsListenAddr == "" {
		metricsListenAddr = "localhost:9090"
	}

	pollSeconds := 30
	if pollInterval != "" {
		n, err := strconv.Atoi(pollInterval)
		if err != nil {
			return nil, fmt.Errorf("POLL_INTERVAL_SECONDS must be an integer: %w", err)
		}
		pollSeconds = n
	}

	cfg := &Config{
		LogLevel:              logLevel,
		ListenAddr:            listenAddr,
		DatabasePath:          databasePath,
		MetricsListenAddr:     metricsListenAddr,
		BootstrapSessionToken: bootstrapToken,
		PollIntervalSeconds:   pollSeconds,
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive (got %d)", c.PollIntervalSeconds)
	}
	return nil
}
