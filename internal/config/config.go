// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package config loads and validates the server configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables, in that order of precedence (env wins).
package config

import (
	"fmt"
	"time"

	"github.com/tessera-viz/tessera/internal/validation"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Layers  LayersConfig  `koanf:"layers"`
	Store   StoreConfig   `koanf:"store"`
	States  StatesConfig  `koanf:"states"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	RateLimitReqs     int           `koanf:"rate_limit_requests" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LayersConfig locates the layers document.
type LayersConfig struct {
	Path  string `koanf:"path" validate:"required"`
	Watch bool   `koanf:"watch"`
}

// StoreConfig controls the embedded tile and state store.
type StoreConfig struct {
	Dir        string        `koanf:"dir" validate:"required"`
	GCInterval time.Duration `koanf:"gc_interval" validate:"gt=0"`
}

// StatesConfig tunes the saved-state configuration cache.
type StatesConfig struct {
	CacheSize int           `koanf:"cache_size" validate:"gte=1"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gt=0"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before the config
// file and environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,

			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,

			CORSOrigins: []string{"*"},
		},
		Layers: LayersConfig{
			Path:  "layers.json",
			Watch: true,
		},
		Store: StoreConfig{
			Dir:        "data/tessera",
			GCInterval: 10 * time.Minute,
		},
		States: StatesConfig{
			CacheSize: 512,
			CacheTTL:  time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration's field constraints.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
