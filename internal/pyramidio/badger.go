// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package pyramidio

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tessera-viz/tessera/internal/logging"
	"github.com/tessera-viz/tessera/internal/tile"
)

// BadgerIO stores tiles in an embedded BadgerDB, the persistent back-end for
// pre-tiled datasets. Keys:
//
//	tile/<dataset>/<level>/<x>/<y>
//	meta/<dataset>
type BadgerIO struct {
	db *badger.DB
}

// NewBadgerIO opens (or creates) a Badger store at dir.
func NewBadgerIO(dir string) (*BadgerIO, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's own logger is noisy; errors surface via returns
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening tile store at %s: %w", dir, err)
	}
	return &BadgerIO{db: db}, nil
}

// NewBadgerIOFromDB wraps an already-open Badger handle. The caller retains
// ownership; Close becomes a no-op.
func NewBadgerIOFromDB(db *badger.DB) *BadgerIO {
	return &BadgerIO{db: db}
}

// Close releases the underlying store.
func (b *BadgerIO) Close() error { return b.db.Close() }

// RunGC runs Badger value-log garbage collection until ctx is done.
// Intended to be supervised as a background service.
func (b *BadgerIO) RunGC(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// ErrNoRewrite just means there was nothing to collect.
			if err := b.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logging.Warn().Err(err).Msg("badger value-log GC failed")
			}
		}
	}
}

func badgerTileKey(datasetID string, idx tile.Index) []byte {
	return []byte(fmt.Sprintf("tile/%s/%s", datasetID, idx))
}

func badgerMetaKey(datasetID string) []byte {
	return []byte("meta/" + datasetID)
}

func (b *BadgerIO) ReadTile(_ context.Context, datasetID string, idx tile.Index) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerTileKey(datasetID, idx))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s %s", ErrTileNotFound, datasetID, idx)
	}
	if err != nil {
		return nil, fmt.Errorf("reading tile %s %s: %w", datasetID, idx, err)
	}
	return data, nil
}

func (b *BadgerIO) WriteTile(_ context.Context, datasetID string, idx tile.Index, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerTileKey(datasetID, idx), data)
	})
	if err != nil {
		return fmt.Errorf("writing tile %s %s: %w", datasetID, idx, err)
	}
	return nil
}

func (b *BadgerIO) ReadMetadata(_ context.Context, datasetID string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerMetaKey(datasetID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, datasetID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata %s: %w", datasetID, err)
	}
	return data, nil
}

func (b *BadgerIO) WriteMetadata(_ context.Context, datasetID string, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerMetaKey(datasetID), data)
	})
	if err != nil {
		return fmt.Errorf("writing metadata %s: %w", datasetID, err)
	}
	return nil
}
