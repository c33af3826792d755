// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package main is the entry point for the Tessera tile server.
//
// Tessera serves pre-tiled geospatial visualizations: each configured layer
// is a factory tree assembled from a JSON document, selecting the tile
// pyramid projection, serializer, storage back-end, and rendering defaults.
// Clients fetch tile payloads, tune rendering through configuration
// overrides, and share the result as saved states addressed by content hash.
//
// # Startup order
//
//  1. Configuration: Koanf v2 layered load (defaults, YAML file, env vars)
//  2. State store: embedded BadgerDB holding saved layer states
//  3. Layer service: parse the layers document, build factory trees
//  4. HTTP server: Chi router under a suture supervision tree
//
// # Configuration
//
// Environment variables override the config file, which overrides defaults:
//
//	export HTTP_PORT=8080
//	export LAYERS_PATH=/etc/tessera/layers.json
//	export STORE_DIR=/data/tessera
//	export LOG_LEVEL=info
//	./tessera
//
// When layers.watch is enabled (the default), edits to the layers document
// are picked up at runtime without a restart.
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops accepting
// connections, in-flight requests get the configured shutdown timeout, then
// the state store is closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tessera-viz/tessera/internal/api"
	"github.com/tessera-viz/tessera/internal/config"
	"github.com/tessera-viz/tessera/internal/layer"
	"github.com/tessera-viz/tessera/internal/logging"
	"github.com/tessera-viz/tessera/internal/pyramidio"
	"github.com/tessera-viz/tessera/internal/rendering"
	"github.com/tessera-viz/tessera/internal/supervisor"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("layers_path", cfg.Layers.Path).
		Str("store_dir", cfg.Store.Dir).
		Msg("Starting Tessera")

	// The embedded store holds saved layer states; per-layer tile stores are
	// selected by each layer's own configuration.
	badgerOpts := badger.DefaultOptions(cfg.Store.Dir)
	badgerOpts.Logger = nil
	db, err := badger.Open(badgerOpts)
	if err != nil {
		logging.Fatal().Err(err).Str("dir", cfg.Store.Dir).Msg("Failed to open state store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing state store")
		}
	}()

	layers := layer.NewService(
		rendering.StandardProviders(),
		layer.NewStateStore(db),
		layer.Options{
			CacheSize: cfg.States.CacheSize,
			CacheTTL:  cfg.States.CacheTTL,
		},
	)
	if err := loadLayers(layers, cfg.Layers.Path); err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Layers.Path).Msg("Failed to load layers document")
	}

	if cfg.Layers.Watch {
		watchLayers(layers, cfg.Layers.Path)
	}

	router := api.NewRouter(api.NewHandler(layers, version), &api.MiddlewareConfig{
		CORSAllowedOrigins:   cfg.Server.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,
		RateLimitRequests:    cfg.Server.RateLimitReqs,
		RateLimitWindow:      cfg.Server.RateLimitWindow,
		RateLimitDisabled:    cfg.Server.RateLimitDisabled,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddStorageService(supervisor.NewStoreGCService(
		pyramidio.NewBadgerIOFromDB(db),
		cfg.Store.GCInterval,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Server listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
		os.Exit(1)
	}
	logging.Info().Msg("Shutdown complete")
}

// loadLayers reads the layers document from disk into the service.
func loadLayers(layers *layer.Service, path string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return layers.LoadDocument(doc)
}

// watchLayers hot-reloads the layers document when the file changes. A bad
// edit keeps the previous layer set, so a typo never takes down serving.
func watchLayers(layers *layer.Service, path string) {
	err := config.WatchFile(path, func() {
		if err := loadLayers(layers, path); err != nil {
			logging.Error().Err(err).Str("path", path).Msg("Layers reload failed, keeping previous set")
			return
		}
		logging.Info().Str("path", path).Msg("Layers document reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Layers file watch unavailable")
	}
}
