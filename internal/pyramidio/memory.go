// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package pyramidio

import (
	"context"
	"fmt"
	"sync"

	"github.com/tessera-viz/tessera/internal/tile"
)

// MemoryIO is an in-process PyramidIO, used for tests and for layers whose
// tiles are generated on the fly.
type MemoryIO struct {
	mu       sync.RWMutex
	tiles    map[string][]byte
	metadata map[string][]byte
}

// NewMemoryIO creates an empty in-memory store.
func NewMemoryIO() *MemoryIO {
	return &MemoryIO{
		tiles:    make(map[string][]byte),
		metadata: make(map[string][]byte),
	}
}

func tileKey(datasetID string, idx tile.Index) string {
	return fmt.Sprintf("%s/%s", datasetID, idx)
}

func (m *MemoryIO) ReadTile(_ context.Context, datasetID string, idx tile.Index) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.tiles[tileKey(datasetID, idx)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrTileNotFound, datasetID, idx)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryIO) WriteTile(_ context.Context, datasetID string, idx tile.Index, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles[tileKey(datasetID, idx)] = stored
	return nil
}

func (m *MemoryIO) ReadMetadata(_ context.Context, datasetID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.metadata[datasetID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, datasetID)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryIO) WriteMetadata(_ context.Context, datasetID string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[datasetID] = stored
	return nil
}
