// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package pyramidio provides tile pyramid storage back-ends. A PyramidIO
// moves serialized tile payloads and per-dataset metadata in and out of a
// store; the serialization package owns the payload encoding.
package pyramidio

import (
	"context"
	"errors"

	"github.com/tessera-viz/tessera/internal/tile"
)

// Storage sentinel errors.
var (
	// ErrTileNotFound indicates the requested tile is not in the store.
	ErrTileNotFound = errors.New("tile not found")

	// ErrMetadataNotFound indicates the dataset has no stored metadata.
	ErrMetadataNotFound = errors.New("metadata not found")
)

// PyramidIO reads and writes tile payloads for named datasets. All
// implementations are safe for concurrent use.
type PyramidIO interface {
	// ReadTile fetches one tile's serialized payload.
	ReadTile(ctx context.Context, datasetID string, idx tile.Index) ([]byte, error)

	// WriteTile stores one tile's serialized payload, replacing any
	// previous payload at the same index.
	WriteTile(ctx context.Context, datasetID string, idx tile.Index, data []byte) error

	// ReadMetadata fetches the dataset's metadata document.
	ReadMetadata(ctx context.Context, datasetID string) ([]byte, error)

	// WriteMetadata stores the dataset's metadata document.
	WriteMetadata(ctx context.Context, datasetID string, data []byte) error
}
