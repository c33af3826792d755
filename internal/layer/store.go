// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package layer

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// StateStore persists saved layer states in Badger so client-shared state
// identifiers survive a server restart. Keys are "state/<layerID>/<stateID>"
// and values are the JSON override document the state was saved with.
type StateStore struct {
	db *badger.DB
}

// NewStateStore wraps an open Badger database. The caller owns the database
// lifecycle; closing it invalidates the store.
func NewStateStore(db *badger.DB) *StateStore {
	return &StateStore{db: db}
}

func stateKey(layerID, stateID string) []byte {
	return []byte(fmt.Sprintf("state/%s/%s", layerID, stateID))
}

// Save writes one state's override document.
func (s *StateStore) Save(layerID, stateID string, override map[string]any) error {
	data, err := json.Marshal(override)
	if err != nil {
		return fmt.Errorf("encoding state %s for layer %s: %w", stateID, layerID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey(layerID, stateID), data)
	})
	if err != nil {
		return fmt.Errorf("persisting state %s for layer %s: %w", stateID, layerID, err)
	}
	return nil
}

// Load returns all persisted states for a layer, keyed by state identifier.
// A layer with no saved states yields an empty map.
func (s *StateStore) Load(layerID string) (map[string]map[string]any, error) {
	states := make(map[string]map[string]any)
	prefix := []byte(fmt.Sprintf("state/%s/", layerID))

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			stateID := string(item.Key()[len(prefix):])

			var override map[string]any
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &override)
			})
			if err != nil {
				return fmt.Errorf("decoding state %s for layer %s: %w", stateID, layerID, err)
			}
			states[stateID] = override
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

// Delete removes one persisted state. Deleting an absent state is not an
// error.
func (s *StateStore) Delete(layerID, stateID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(stateKey(layerID, stateID))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("deleting state %s for layer %s: %w", stateID, layerID, err)
	}
	return nil
}
