// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package serialization defines the wire encoding of tile data. Tiles are
// grids of bins; each serializer fixes one bin value shape and encodes the
// whole tile as a JSON document.
package serialization

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/tessera-viz/tessera/internal/tile"
)

// TileData is one tile's worth of binned values. Bins are stored row-major,
// XBins per row, with bin (0, 0) at the tile's top-left.
type TileData struct {
	Index   tile.Index `json:"index"`
	XBins   int        `json:"xBins"`
	YBins   int        `json:"yBins"`
	Default any        `json:"default,omitempty"`
	Bins    []any      `json:"bins"`
}

// NewTileData creates a tile with every bin set to the default value.
func NewTileData(idx tile.Index, xBins, yBins int, def any) *TileData {
	bins := make([]any, xBins*yBins)
	for i := range bins {
		bins[i] = def
	}
	return &TileData{Index: idx, XBins: xBins, YBins: yBins, Default: def, Bins: bins}
}

// Bin returns the value at bin (x, y).
func (t *TileData) Bin(x, y int) any { return t.Bins[y*t.XBins+x] }

// SetBin sets the value at bin (x, y).
func (t *TileData) SetBin(x, y int, v any) { t.Bins[y*t.XBins+x] = v }

// Serializer encodes and decodes one bin-value shape of tile data.
type Serializer interface {
	// TypeTag identifies the serializer in configuration documents.
	TypeTag() string

	// Serialize writes the tile as JSON to w.
	Serialize(t *TileData, w io.Writer) error

	// Deserialize reads a tile from r, validating bin shape.
	Deserialize(r io.Reader) (*TileData, error)
}

// FloatJSONSerializer handles tiles with one float64 per bin, the common
// heatmap case.
type FloatJSONSerializer struct{}

// NewFloatJSONSerializer creates a scalar-bin serializer.
func NewFloatJSONSerializer() *FloatJSONSerializer { return &FloatJSONSerializer{} }

func (s *FloatJSONSerializer) TypeTag() string { return "float-json" }

func (s *FloatJSONSerializer) Serialize(t *TileData, w io.Writer) error {
	return json.NewEncoder(w).Encode(t)
}

func (s *FloatJSONSerializer) Deserialize(r io.Reader) (*TileData, error) {
	t, err := decodeTile(r)
	if err != nil {
		return nil, err
	}
	for i, bin := range t.Bins {
		if _, ok := bin.(float64); !ok && bin != nil {
			return nil, fmt.Errorf("bin %d: expected number, got %T", i, bin)
		}
	}
	return t, nil
}

// FloatArrayJSONSerializer handles tiles with a float64 vector per bin, used
// by multi-series layers.
type FloatArrayJSONSerializer struct{}

// NewFloatArrayJSONSerializer creates a vector-bin serializer.
func NewFloatArrayJSONSerializer() *FloatArrayJSONSerializer {
	return &FloatArrayJSONSerializer{}
}

func (s *FloatArrayJSONSerializer) TypeTag() string { return "float-array-json" }

func (s *FloatArrayJSONSerializer) Serialize(t *TileData, w io.Writer) error {
	return json.NewEncoder(w).Encode(t)
}

func (s *FloatArrayJSONSerializer) Deserialize(r io.Reader) (*TileData, error) {
	t, err := decodeTile(r)
	if err != nil {
		return nil, err
	}
	for i, bin := range t.Bins {
		if bin == nil {
			continue
		}
		list, ok := bin.([]any)
		if !ok {
			return nil, fmt.Errorf("bin %d: expected array, got %T", i, bin)
		}
		for j, v := range list {
			if _, ok := v.(float64); !ok {
				return nil, fmt.Errorf("bin %d[%d]: expected number, got %T", i, j, v)
			}
		}
	}
	return t, nil
}

func decodeTile(r io.Reader) (*TileData, error) {
	var t TileData
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding tile: %w", err)
	}
	if t.XBins <= 0 || t.YBins <= 0 {
		return nil, fmt.Errorf("tile %s: invalid bin grid %dx%d", t.Index, t.XBins, t.YBins)
	}
	if len(t.Bins) != t.XBins*t.YBins {
		return nil, fmt.Errorf("tile %s: %d bins for %dx%d grid",
			t.Index, len(t.Bins), t.XBins, t.YBins)
	}
	return &t, nil
}
