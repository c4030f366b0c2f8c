// Package config loads dashboard settings from the environment, with an
// optional YAML chart profile for the bubble chart domains.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Animation AnimationConfig
	Charts    ChartConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	// ShutdownTimeout bounds graceful shutdown (default: 10s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`

	// RateLimit is requests per second per client IP, 0 disables it (default: 20)
	RateLimit float64 `env:"RATE_LIMIT" default:"20"`

	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" default:"*"`
}

// DataConfig points at the dataset.
type DataConfig struct {
	// Source is a file path or an http(s) URL (default: ./media/eurostat.json)
	Source string `env:"DATA_SOURCE" envAlt:"EUROSTAT_JSON" default:"./media/eurostat.json"`

	// LoadTimeout bounds a single fetch-and-parse (default: 30s)
	LoadTimeout time.Duration `env:"DATA_LOAD_TIMEOUT" default:"30s"`
}

// AnimationConfig holds bubble animation settings.
type AnimationConfig struct {
	Interval time.Duration `env:"ANIMATION_INTERVAL" default:"800ms"`
}

// ChartConfig holds canvas sizes and the chart profile location.
type ChartConfig struct {
	LineWidth  int `env:"LINE_CHART_WIDTH" default:"600"`
	LineHeight int `env:"LINE_CHART_HEIGHT" default:"300"`

	// ProfilePath is an optional YAML file overriding bubble chart domains
	ProfilePath string `env:"CHART_PROFILE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "RATE_LIMIT must be non-negative")
	}

	if strings.TrimSpace(c.Data.Source) == "" {
		errs = append(errs, "DATA_SOURCE is required")
	}
	if c.Data.LoadTimeout <= 0 {
		errs = append(errs, "DATA_LOAD_TIMEOUT must be positive")
	}

	if c.Animation.Interval <= 0 {
		errs = append(errs, "ANIMATION_INTERVAL must be positive")
	}

	if c.Charts.LineWidth <= 60 || c.Charts.LineHeight <= 50 {
		errs = append(errs, "LINE_CHART_WIDTH must exceed 60 and LINE_CHART_HEIGHT must exceed 50")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
