// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultPort is used when PORT is unset.
const DefaultPort = 8000

// Config holds dev server configuration.
type Config struct {
	// Server
	Port    int
	RootDir string

	// Open the default browser once the port is bound.
	OpenBrowser bool

	// Metrics listener; empty disables it.
	MetricsAddr string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads configuration from environment variables with defaults.
// The served root is always the working directory of the process.
func Load() (*Config, error) {
	port, err := envPort("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	return &Config{
		Port:        port,
		RootDir:     root,
		OpenBrowser: envBool("OPEN_BROWSER", true),
		MetricsAddr: envOr("METRICS_ADDR", ""),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "console"),
		LogFile:     envOr("LOG_FILE", ""),
	}, nil
}

// URL returns the page opened in the browser after startup.
func (c *Config) URL() string {
	return fmt.Sprintf("http://localhost:%d/index.html", c.Port)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// envPort is strict: a typo in PORT should not silently bind elsewhere.
func envPort(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("%s: %d out of range 1-65535", key, p)
	}
	return p, nil
}
