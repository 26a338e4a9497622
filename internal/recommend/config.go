// Basketd - Market Basket Recommendation Service
// Copyright 2026 Basketd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/basketd/basketd

package recommend

import (
	"fmt"
	"time"
)

// Config contains the tunable parameters of the recommendation engine.
type Config struct {
	// DefaultTopN is the result bound applied when a request leaves
	// TopN unset.
	DefaultTopN int `json:"default_top_n" koanf:"default_top_n"`

	// MaxTopN caps the result bound a request may ask for.
	MaxTopN int `json:"max_top_n" koanf:"max_top_n"`

	// MinConfidence is the default rule confidence threshold, in [0, 1].
	MinConfidence float64 `json:"min_confidence" koanf:"min_confidence"`

	// MinLift is the default rule lift threshold. Non-negative.
	MinLift float64 `json:"min_lift" koanf:"min_lift"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// CacheConfig contains response cache parameters. Caching is safe because
// the engine is deterministic: identical inputs against the same model
// version always produce identical output.
type CacheConfig struct {
	// Enabled toggles the response cache.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// MaxEntries bounds the number of cached responses.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`

	// TTL is how long a cached response stays valid.
	TTL time.Duration `json:"ttl" koanf:"ttl"`
}

// DefaultConfig returns production-ready engine defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultTopN:   5,
		MaxTopN:       50,
		MinConfidence: 0.3,
		MinLift:       1.0,
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 1024,
			TTL:        5 * time.Minute,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.DefaultTopN <= 0 {
		return fmt.Errorf("default_top_n must be positive, got %d", c.DefaultTopN)
	}
	if c.MaxTopN < c.DefaultTopN {
		return fmt.Errorf("max_top_n (%d) must be >= default_top_n (%d)", c.MaxTopN, c.DefaultTopN)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0, 1], got %g", c.MinConfidence)
	}
	if c.MinLift < 0 {
		return fmt.Errorf("min_lift must be non-negative, got %g", c.MinLift)
	}
	if c.Cache.Enabled {
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
