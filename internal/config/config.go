// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

// Package config loads and validates the service configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import (
	"fmt"
	"time"

	"github.com/basketd/basketd/internal/recommend"
)

// Config is the root service configuration.
type Config struct {
	Server  ServerConfig     `koanf:"server"`
	Logging LoggingConfig    `koanf:"logging"`
	Engine  recommend.Config `koanf:"engine"`
	Model   ModelConfig      `koanf:"model"`
	API     APIConfig        `koanf:"api"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// ReadTimeout and WriteTimeout bound request processing.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on termination.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file:line in log records.
	Caller bool `koanf:"caller"`
}

// ModelConfig contains model import settings.
type ModelConfig struct {
	// Path is the miner's JSON export file.
	Path string `koanf:"path"`

	// SnapshotEnabled mirrors successful imports into a BadgerDB snapshot
	// store so restarts do not require the export file.
	SnapshotEnabled bool `koanf:"snapshot_enabled"`

	// SnapshotDir is the BadgerDB directory for snapshots.
	SnapshotDir string `koanf:"snapshot_dir"`

	// WatchEnabled re-imports the export file when its mtime changes.
	WatchEnabled bool `koanf:"watch_enabled"`

	// WatchInterval is the mtime polling interval.
	WatchInterval time.Duration `koanf:"watch_interval"`
}

// APIConfig contains HTTP API settings.
type APIConfig struct {
	// RateLimitReqs is the per-client request budget per RateLimitWindow.
	// Zero disables rate limiting.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// DefaultPageSize and MaxPageSize bound catalog pagination.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// ReloadPerMinute throttles POST /api/v1/model/reload. Zero disables
	// the endpoint's throttle.
	ReloadPerMinute int `koanf:"reload_per_minute"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if c.Model.SnapshotEnabled && c.Model.SnapshotDir == "" {
		return fmt.Errorf("model.snapshot_dir is required when snapshots are enabled")
	}
	if c.Model.WatchEnabled && c.Model.WatchInterval <= 0 {
		return fmt.Errorf("model.watch_interval must be positive when watching, got %s", c.Model.WatchInterval)
	}
	if c.API.DefaultPageSize <= 0 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api page sizes invalid: default %d, max %d", c.API.DefaultPageSize, c.API.MaxPageSize)
	}
	if c.API.RateLimitReqs < 0 || c.API.ReloadPerMinute < 0 {
		return fmt.Errorf("api rate limits must be non-negative")
	}
	if c.API.RateLimitReqs > 0 && c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive when rate limiting, got %s", c.API.RateLimitWindow)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
