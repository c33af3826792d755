// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package pyramidio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tessera-viz/tessera/internal/tile"
)

// FileIO stores tiles on the local filesystem, one JSON file per tile:
//
//	<root>/<dataset>/<level>/<x>/<y>.json
//	<root>/<dataset>/metadata.json
type FileIO struct {
	root string
}

// NewFileIO creates a filesystem store rooted at root, creating the
// directory if needed.
func NewFileIO(root string) (*FileIO, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating tile root %s: %w", root, err)
	}
	return &FileIO{root: root}, nil
}

func (f *FileIO) tilePath(datasetID string, idx tile.Index) string {
	return filepath.Join(f.root, datasetID,
		strconv.Itoa(idx.Level), strconv.Itoa(idx.X), strconv.Itoa(idx.Y)+".json")
}

func (f *FileIO) metadataPath(datasetID string) string {
	return filepath.Join(f.root, datasetID, "metadata.json")
}

func (f *FileIO) ReadTile(_ context.Context, datasetID string, idx tile.Index) ([]byte, error) {
	data, err := os.ReadFile(f.tilePath(datasetID, idx))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s %s", ErrTileNotFound, datasetID, idx)
	}
	if err != nil {
		return nil, fmt.Errorf("reading tile %s %s: %w", datasetID, idx, err)
	}
	return data, nil
}

func (f *FileIO) WriteTile(_ context.Context, datasetID string, idx tile.Index, data []byte) error {
	path := f.tilePath(datasetID, idx)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating tile directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing tile %s %s: %w", datasetID, idx, err)
	}
	return nil
}

func (f *FileIO) ReadMetadata(_ context.Context, datasetID string) ([]byte, error) {
	data, err := os.ReadFile(f.metadataPath(datasetID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, datasetID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata %s: %w", datasetID, err)
	}
	return data, nil
}

func (f *FileIO) WriteMetadata(_ context.Context, datasetID string, data []byte) error {
	path := f.metadataPath(datasetID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata %s: %w", datasetID, err)
	}
	return nil
}
