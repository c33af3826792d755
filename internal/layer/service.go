// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package layer manages the set of configured map layers: it reads the
// layers document, builds one factory tree per layer, serves tile payloads
// from each layer's storage back-end, and saves client configuration states
// under content-derived identifiers so a visualization can be shared by URL.
package layer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/tessera-viz/tessera/internal/factory"
	"github.com/tessera-viz/tessera/internal/logging"
	"github.com/tessera-viz/tessera/internal/metrics"
	"github.com/tessera-viz/tessera/internal/pyramidio"
	"github.com/tessera-viz/tessera/internal/rendering"
	"github.com/tessera-viz/tessera/internal/tile"
)

var (
	// ErrLayerNotFound indicates the requested layer id is not configured.
	ErrLayerNotFound = errors.New("layer not found")

	// ErrStateNotFound indicates the layer has no saved state under the
	// requested identifier.
	ErrStateNotFound = errors.New("layer state not found")

	// ErrUncacheable indicates the configuration could not be hashed, so a
	// state identifier cannot be issued for it.
	ErrUncacheable = errors.New("configuration state is uncacheable")
)

// DefaultStateID names the layer's own configuration in the state listing.
const DefaultStateID = "default"

// Options tunes the service's configuration-state cache.
type Options struct {
	// CacheSize caps the number of override-derived factory trees kept in
	// memory. Zero means the built-in default.
	CacheSize int

	// CacheTTL bounds how long an unused cached tree stays valid. Zero means
	// the built-in default.
	CacheTTL time.Duration
}

// entry is the runtime record for one configured layer.
type entry struct {
	id     string
	node   map[string]any
	fac    *factory.Factory
	states map[string]map[string]any
}

// Service owns the configured layers. All methods are safe for concurrent
// use; Reload swaps the full layer set atomically under the write lock.
type Service struct {
	providers *rendering.Providers
	store     *StateStore
	cache     *configCache

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

// NewService creates an empty service. store may be nil, in which case saved
// states live only in memory.
func NewService(providers *rendering.Providers, store *StateStore, opts Options) *Service {
	return &Service{
		providers: providers,
		store:     store,
		cache:     newConfigCache(opts.CacheSize, opts.CacheTTL),
		entries:   make(map[string]*entry),
	}
}

// LoadDocument parses a layers document of the form
//
//	{"layers": [ {"id": "...", ...}, ... ]}
//
// and replaces the service's layer set with its contents. Saved states
// persisted for the new layers are restored from the state store. On error
// the previous layer set is kept.
func (s *Service) LoadDocument(doc []byte) error {
	layersNode := gjson.GetBytes(doc, "layers")
	if !layersNode.Exists() || !layersNode.IsArray() {
		return errors.New("layers document has no layers array")
	}

	entries := make(map[string]*entry)
	var order []string

	for i, raw := range layersNode.Array() {
		var node map[string]any
		if err := json.Unmarshal([]byte(raw.Raw), &node); err != nil {
			return fmt.Errorf("decoding layer %d: %w", i, err)
		}

		fac, err := s.providers.NewLayerFactory(node)
		if err != nil {
			return fmt.Errorf("assembling layer %d: %w", i, err)
		}
		fac.ReadConfiguration(node)

		id := rendering.LayerID.String(fac)
		if id == "" {
			return fmt.Errorf("layer %d has no id", i)
		}
		if _, dup := entries[id]; dup {
			return fmt.Errorf("duplicate layer id %q", id)
		}

		e := &entry{
			id:     id,
			node:   node,
			fac:    fac,
			states: make(map[string]map[string]any),
		}
		if s.store != nil {
			saved, err := s.store.Load(id)
			if err != nil {
				return fmt.Errorf("restoring states for layer %q: %w", id, err)
			}
			e.states = saved
		}
		metrics.SavedStates.WithLabelValues(id).Set(float64(len(e.states)))

		entries[id] = e
		order = append(order, id)

		logging.Info().
			Str("layer", id).
			Int("saved_states", len(e.states)).
			Msg("Layer configured")
	}

	s.mu.Lock()
	s.entries = entries
	s.order = order
	s.mu.Unlock()

	logging.Info().Int("layers", len(order)).Msg("Layers document loaded")
	return nil
}

// Reload re-reads a layers document at runtime. It is LoadDocument under a
// name that signals intent at the call site (file-watch driven reloads).
func (s *Service) Reload(doc []byte) error {
	return s.LoadDocument(doc)
}

// IDs returns the configured layer ids in document order.
func (s *Service) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

func (s *Service) entryFor(id string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}
	return e, nil
}

// LayerJSON returns a copy of one layer's configuration document.
func (s *Service) LayerJSON(id string) (map[string]any, error) {
	e, err := s.entryFor(id)
	if err != nil {
		return nil, err
	}
	return factory.MergeOverride(e.node, nil), nil
}

// LayerJSONs returns copies of every layer's configuration document, in
// document order.
func (s *Service) LayerJSONs() []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]map[string]any, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, factory.MergeOverride(s.entries[id].node, nil))
	}
	return docs
}

// ExplicitConfiguration returns one layer's configuration with every declared
// property filled in, defaults included.
func (s *Service) ExplicitConfiguration(id string) (map[string]any, error) {
	e, err := s.entryFor(id)
	if err != nil {
		return nil, err
	}
	return e.fac.ExplicitConfiguration(), nil
}

// Configuration returns the factory tree for a layer with the given override
// applied, plus the tree's state hash. An empty override returns the layer's
// own tree under the default state id. Override-derived trees are cached by
// hash so repeated requests for the same state share one tree (and its
// singleton products).
func (s *Service) Configuration(id string, override map[string]any) (*factory.Factory, string, error) {
	e, err := s.entryFor(id)
	if err != nil {
		return nil, "", err
	}
	if len(override) == 0 {
		return e.fac, DefaultStateID, nil
	}

	merged := factory.MergeOverride(e.node, override)
	fac, err := s.providers.NewLayerFactory(merged)
	if err != nil {
		return nil, "", fmt.Errorf("assembling overridden configuration for layer %q: %w", id, err)
	}
	fac.ReadConfiguration(merged)

	hash := fac.GenerateSHA256()
	if hash == "" {
		return fac, "", nil
	}

	cacheKey := id + "/" + hash
	if cached, ok := s.cache.get(cacheKey); ok {
		metrics.StateCacheHits.Inc()
		return cached, hash, nil
	}
	metrics.StateCacheMisses.Inc()
	s.cache.add(cacheKey, fac)
	return fac, hash, nil
}

// SaveState applies an override to a layer's configuration and saves the
// result under its content hash, returning the state identifier. Saving the
// same override twice yields the same identifier.
func (s *Service) SaveState(id string, override map[string]any) (string, error) {
	e, err := s.entryFor(id)
	if err != nil {
		return "", err
	}
	_, stateID, err := s.Configuration(id, override)
	if err != nil {
		return "", err
	}
	if stateID == "" {
		return "", fmt.Errorf("saving state for layer %q: %w", id, ErrUncacheable)
	}
	if stateID == DefaultStateID {
		return DefaultStateID, nil
	}

	s.mu.Lock()
	e.states[stateID] = factory.MergeOverride(override, nil)
	count := len(e.states)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(id, stateID, override); err != nil {
			return "", err
		}
	}
	metrics.SavedStates.WithLabelValues(id).Set(float64(count))

	logging.Info().
		Str("layer", id).
		Str("state", stateID).
		Msg("Layer state saved")
	return stateID, nil
}

// State returns the configuration document for one saved state: the layer's
// configuration with the state's override merged in. The default state id
// returns the layer's own configuration.
func (s *Service) State(id, stateID string) (map[string]any, error) {
	e, err := s.entryFor(id)
	if err != nil {
		return nil, err
	}
	if stateID == DefaultStateID || stateID == "" {
		return factory.MergeOverride(e.node, nil), nil
	}

	s.mu.RLock()
	override, ok := e.states[stateID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrStateNotFound, id, stateID)
	}
	return factory.MergeOverride(e.node, override), nil
}

// States returns every saved state's configuration document, keyed by state
// identifier. The default state is always present.
func (s *Service) States(id string) (map[string]map[string]any, error) {
	e, err := s.entryFor(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make(map[string]map[string]any, len(e.states)+1)
	states[DefaultStateID] = factory.MergeOverride(e.node, nil)
	for stateID, override := range e.states {
		states[stateID] = factory.MergeOverride(e.node, override)
	}
	return states, nil
}

// TileJSON reads one tile's serialized payload from the layer's storage
// back-end. State overrides tune rendering parameters only, so reads always
// go through the layer's own tree and its singleton storage back-end.
func (s *Service) TileJSON(ctx context.Context, id string, idx tile.Index) ([]byte, error) {
	e, err := s.entryFor(id)
	if err != nil {
		metrics.TilesServed.WithLabelValues(id, "error").Inc()
		return nil, err
	}
	if !idx.Valid() {
		metrics.TilesServed.WithLabelValues(id, "error").Inc()
		return nil, fmt.Errorf("invalid tile index %s", idx)
	}

	io, err := produceAs[pyramidio.PyramidIO](e.fac, rendering.TypePyramidIO)
	if err != nil {
		metrics.TilesServed.WithLabelValues(id, "error").Inc()
		return nil, fmt.Errorf("layer %q has no tile store: %w", id, err)
	}
	dataID, err := produceAs[string](e.fac, rendering.TypeData)
	if err != nil || dataID == "" {
		dataID = id
	}

	start := time.Now()
	data, err := io.ReadTile(ctx, dataID, idx)
	metrics.ObserveTileRead(id, time.Since(start))
	if err != nil {
		if errors.Is(err, pyramidio.ErrTileNotFound) {
			metrics.TilesServed.WithLabelValues(id, "miss").Inc()
		} else {
			metrics.TilesServed.WithLabelValues(id, "error").Inc()
		}
		return nil, err
	}
	metrics.TilesServed.WithLabelValues(id, "hit").Inc()
	return data, nil
}

// Metadata reads the dataset metadata document for one layer.
func (s *Service) Metadata(ctx context.Context, id string) ([]byte, error) {
	e, err := s.entryFor(id)
	if err != nil {
		return nil, err
	}
	io, err := produceAs[pyramidio.PyramidIO](e.fac, rendering.TypePyramidIO)
	if err != nil {
		return nil, fmt.Errorf("layer %q has no tile store: %w", id, err)
	}
	dataID, err := produceAs[string](e.fac, rendering.TypeData)
	if err != nil || dataID == "" {
		dataID = id
	}
	return io.ReadMetadata(ctx, dataID)
}

// produceAs produces from a tree and asserts the product's Go type.
func produceAs[T any](fac *factory.Factory, typeTag string) (T, error) {
	var zero T
	product, err := fac.Produce("", typeTag)
	if err != nil {
		metrics.FactoryProduceCalls.WithLabelValues(typeTag, produceOutcome(err)).Inc()
		return zero, err
	}
	metrics.FactoryProduceCalls.WithLabelValues(typeTag, "ok").Inc()
	typed, ok := product.(T)
	if !ok {
		return zero, fmt.Errorf("product of type %q is a %T, not a %T", typeTag, product, zero)
	}
	return typed, nil
}

func produceOutcome(err error) string {
	if errors.Is(err, factory.ErrNoProducer) {
		return "absent"
	}
	return "error"
}
