// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package api exposes the tile server's REST surface: layer listings, saved
// configuration states, and the tile endpoint map clients fetch from.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tessera-viz/tessera/internal/factory"
	"github.com/tessera-viz/tessera/internal/layer"
	"github.com/tessera-viz/tessera/internal/logging"
	"github.com/tessera-viz/tessera/internal/pyramidio"
	"github.com/tessera-viz/tessera/internal/tile"
	"github.com/tessera-viz/tessera/internal/validation"
)

// Error codes returned in the error envelope.
const (
	codeValidation  = "VALIDATION_ERROR"
	codeNotFound    = "NOT_FOUND"
	codeUncacheable = "UNCACHEABLE_STATE"
	codeInternal    = "INTERNAL_ERROR"
)

// Response is the envelope for every non-tile JSON response.
type Response struct {
	Status    string               `json:"status"`
	Data      any                  `json:"data,omitempty"`
	Error     *validation.APIError `json:"error,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Handler serves the REST API over a layer service.
type Handler struct {
	layers  *layer.Service
	started time.Time
	version string
}

// NewHandler creates a Handler. version appears in the health payload.
func NewHandler(layers *layer.Service, version string) *Handler {
	return &Handler{
		layers:  layers,
		started: time.Now(),
		version: version,
	}
}

func respondJSON(w http.ResponseWriter, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, &Response{
		Status:    "ok",
		Data:      data,
		Timestamp: time.Now(),
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &Response{
		Status:    "error",
		Error:     &validation.APIError{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}

// respondLayerErr maps service errors to status codes: absence is 404,
// everything else 500.
func respondLayerErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, layer.ErrLayerNotFound), errors.Is(err, layer.ErrStateNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, codeInternal, err.Error())
	}
}

// generateETag creates an ETag from the payload using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// Layers returns every configured layer's document.
//
// GET /api/v1/layers
func (h *Handler) Layers(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"layers": h.layers.LayerJSONs(),
	})
}

// Layer returns one layer's document, or its fully-expanded configuration
// with every declared property filled in when ?explicit=true.
//
// GET /api/v1/layers/{layerID}
func (h *Handler) Layer(w http.ResponseWriter, r *http.Request) {
	layerID := chi.URLParam(r, "layerID")

	var (
		doc map[string]any
		err error
	)
	if r.URL.Query().Get("explicit") == "true" {
		doc, err = h.layers.ExplicitConfiguration(layerID)
	} else {
		doc, err = h.layers.LayerJSON(layerID)
	}
	if err != nil {
		respondLayerErr(w, err)
		return
	}
	respondData(w, http.StatusOK, doc)
}

// SaveState saves a configuration override under its content hash and
// returns the state identifier. The override comes from the JSON request
// body, or from dotted query parameters when the body is empty:
//
//	POST /api/v1/layers/{layerID}/states?renderer.ramp=cool
func (h *Handler) SaveState(w http.ResponseWriter, r *http.Request) {
	layerID := chi.URLParam(r, "layerID")

	override, err := h.decodeOverride(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	stateID, err := h.layers.SaveState(layerID, override)
	if err != nil {
		if errors.Is(err, layer.ErrUncacheable) {
			respondError(w, http.StatusBadRequest, codeUncacheable, err.Error())
			return
		}
		respondLayerErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]any{"state": stateID})
}

// decodeOverride reads the configuration override from the request body, or
// from the query string when no body is supplied.
func (h *Handler) decodeOverride(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		var override map[string]any
		if err := json.Unmarshal(body, &override); err != nil {
			return nil, errors.New("request body is not a JSON object")
		}
		return override, nil
	}
	return factory.DecodeQueryParams(r.URL.RawQuery)
}

// States lists every saved state's configuration document, the default
// state included.
//
// GET /api/v1/layers/{layerID}/states
func (h *Handler) States(w http.ResponseWriter, r *http.Request) {
	states, err := h.layers.States(chi.URLParam(r, "layerID"))
	if err != nil {
		respondLayerErr(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"states": states})
}

// State returns one saved state's configuration document.
//
// GET /api/v1/layers/{layerID}/states/{stateID}
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.layers.State(chi.URLParam(r, "layerID"), chi.URLParam(r, "stateID"))
	if err != nil {
		respondLayerErr(w, err)
		return
	}
	respondData(w, http.StatusOK, state)
}

// Tile serves one tile's JSON payload. The optional state parameter names a
// saved state; it is validated but rendering parameters are applied
// client-side, so the payload itself is state-independent.
//
// GET /api/v1/tiles/{layerID}/{level}/{x}/{y}.json?state={stateID}
func (h *Handler) Tile(w http.ResponseWriter, r *http.Request) {
	layerID := chi.URLParam(r, "layerID")

	idx, err := parseTileIndex(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if !idx.Valid() {
		respondError(w, http.StatusBadRequest, codeValidation, "tile index out of range")
		return
	}

	if stateID := r.URL.Query().Get("state"); stateID != "" {
		if _, err := h.layers.State(layerID, stateID); err != nil {
			respondLayerErr(w, err)
			return
		}
	}

	data, err := h.layers.TileJSON(r.Context(), layerID, idx)
	if err != nil {
		if errors.Is(err, pyramidio.ErrTileNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "tile not found")
			return
		}
		respondLayerErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write tile payload")
	}
}

func parseTileIndex(r *http.Request) (tile.Index, error) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		return tile.Index{}, errors.New("level must be an integer")
	}
	x, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		return tile.Index{}, errors.New("x must be an integer")
	}
	yParam := strings.TrimSuffix(chi.URLParam(r, "y"), ".json")
	y, err := strconv.Atoi(yParam)
	if err != nil {
		return tile.Index{}, errors.New("y must be an integer")
	}
	return tile.Index{Level: level, X: x, Y: y}, nil
}

// Metadata serves one layer's dataset metadata document.
//
// GET /api/v1/layers/{layerID}/metadata
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	data, err := h.layers.Metadata(r.Context(), chi.URLParam(r, "layerID"))
	if err != nil {
		if errors.Is(err, pyramidio.ErrMetadataNotFound) {
			respondError(w, http.StatusNotFound, codeNotFound, "metadata not found")
			return
		}
		respondLayerErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write metadata payload")
	}
}

// Health reports liveness, uptime, and the configured layer count.
//
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).String(),
		"layers":  len(h.layers.IDs()),
	})
}
