// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package metrics provides Prometheus instrumentation for the tile server:
// tile serving latency, factory production counts, and layer-state cache
// efficiency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Tile metrics
	TilesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiles_served_total",
			Help: "Total number of tiles served, by layer and outcome",
		},
		[]string{"layer", "outcome"}, // "hit", "miss", "error"
	)

	TileReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tile_read_duration_seconds",
			Help:    "Duration of tile store reads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"layer"},
	)

	// Factory metrics
	FactoryProduceCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_produce_calls_total",
			Help: "Total factory produce calls, by product type and outcome",
		},
		[]string{"type", "outcome"}, // "ok", "absent", "error"
	)

	// Layer state metrics
	StateCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "layer_state_cache_hits_total",
			Help: "Total layer-state configuration cache hits",
		},
	)

	StateCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "layer_state_cache_misses_total",
			Help: "Total layer-state configuration cache misses",
		},
	)

	SavedStates = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "layer_saved_states",
			Help: "Number of saved configuration states per layer",
		},
		[]string{"layer"},
	)
)

// ObserveHTTPRequest records one handled request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(duration.Seconds())
}

// ObserveTileRead records one tile store read.
func ObserveTileRead(layer string, duration time.Duration) {
	TileReadDuration.WithLabelValues(layer).Observe(duration.Seconds())
}
