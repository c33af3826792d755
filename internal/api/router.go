// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tessera-viz/tessera/internal/middleware"
)

// NewRouter wires the full route tree with its middleware stack.
func NewRouter(handler *Handler, mw *MiddlewareConfig) http.Handler {
	if mw == nil {
		mw = DefaultMiddlewareConfig()
	}

	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(mw.CORS()) // global so OPTIONS preflight is handled everywhere

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.With(mw.RateLimit()).Route("/layers", func(r chi.Router) {
			r.Get("/", handler.Layers)
			r.Get("/{layerID}", handler.Layer)
			r.Get("/{layerID}/metadata", handler.Metadata)
			r.Post("/{layerID}/states", handler.SaveState)
			r.Get("/{layerID}/states", handler.States)
			r.Get("/{layerID}/states/{stateID}", handler.State)
		})

		// The tile path sees bursts as clients pan; rate limits are looser.
		r.With(mw.RateLimitTiles()).
			Get("/tiles/{layerID}/{level}/{x}/{y}", handler.Tile)

		r.Get("/health", handler.Health)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
