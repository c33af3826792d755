// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package layer

import (
	"context"
	"errors"
	"testing"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tessera-viz/tessera/internal/factory"
	"github.com/tessera-viz/tessera/internal/pyramidio"
	"github.com/tessera-viz/tessera/internal/rendering"
	"github.com/tessera-viz/tessera/internal/tile"
)

const layersDoc = `{
	"layers": [
		{
			"id": "tweet-heatmap",
			"name": "Tweet Heatmap",
			"data": {
				"id": "twitter.heatmap",
				"pyramidio": {"type": "memory"},
				"serializer": {"type": "float-json"}
			},
			"pyramid": {"type": "webmercator"},
			"renderer": {"ramp": "hot", "coarseness": 2},
			"valueTransform": {"type": "log10", "max": 1000}
		},
		{
			"id": "bid-rate",
			"data": {"id": "bitcoin.rate"}
		}
	]
}`

func newTestService(t *testing.T, store *StateStore) *Service {
	t.Helper()
	svc := NewService(rendering.StandardProviders(), store, Options{})
	if err := svc.LoadDocument([]byte(layersDoc)); err != nil {
		t.Fatalf("loading layers document: %v", err)
	}
	return svc
}

func rendererOverride(t *testing.T) map[string]any {
	t.Helper()
	override, err := factory.DecodeQueryParams("renderer.ramp=cool&renderer.coarseness=3")
	if err != nil {
		t.Fatalf("decoding override: %v", err)
	}
	return override
}

func TestLoadDocument(t *testing.T) {
	svc := newTestService(t, nil)

	ids := svc.IDs()
	if len(ids) != 2 || ids[0] != "tweet-heatmap" || ids[1] != "bid-rate" {
		t.Errorf("IDs() = %v, want [tweet-heatmap bid-rate]", ids)
	}

	doc, err := svc.LayerJSON("tweet-heatmap")
	if err != nil {
		t.Fatalf("LayerJSON: %v", err)
	}
	if doc["name"] != "Tweet Heatmap" {
		t.Errorf("layer name = %v, want Tweet Heatmap", doc["name"])
	}

	if docs := svc.LayerJSONs(); len(docs) != 2 {
		t.Errorf("LayerJSONs() returned %d documents, want 2", len(docs))
	}
}

func TestLoadDocumentRejectsBadInput(t *testing.T) {
	svc := NewService(rendering.StandardProviders(), nil, Options{})

	cases := []struct {
		name string
		doc  string
	}{
		{"no layers key", `{"ayers": []}`},
		{"layers not array", `{"layers": {"id": "a"}}`},
		{"layer without id", `{"layers": [{"name": "anonymous"}]}`},
		{"duplicate ids", `{"layers": [{"id": "a"}, {"id": "a"}]}`},
	}
	for _, tc := range cases {
		if err := svc.LoadDocument([]byte(tc.doc)); err == nil {
			t.Errorf("%s: LoadDocument accepted invalid document", tc.name)
		}
	}
}

func TestLayerNotFound(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.LayerJSON("nope"); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("LayerJSON(nope) error = %v, want ErrLayerNotFound", err)
	}
	if _, _, err := svc.Configuration("nope", nil); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("Configuration(nope) error = %v, want ErrLayerNotFound", err)
	}
}

func TestSaveAndReadState(t *testing.T) {
	svc := newTestService(t, nil)

	stateID, err := svc.SaveState("tweet-heatmap", rendererOverride(t))
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if stateID == "" || stateID == DefaultStateID {
		t.Fatalf("SaveState returned %q, want content hash", stateID)
	}
	if len(stateID) != 64 {
		t.Errorf("stateID %q is not a SHA-256 hex digest", stateID)
	}

	state, err := svc.State("tweet-heatmap", stateID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	renderer, _ := state["renderer"].(map[string]any)
	if renderer == nil {
		t.Fatal("saved state has no renderer node")
	}
	if renderer["ramp"] != "cool" {
		t.Errorf("saved ramp = %v, want cool", renderer["ramp"])
	}
	// Query-param override values stay strings.
	if renderer["coarseness"] != "3" {
		t.Errorf("saved coarseness = %v (%T), want \"3\"", renderer["coarseness"], renderer["coarseness"])
	}
}

func TestSaveStateIsIdempotent(t *testing.T) {
	svc := newTestService(t, nil)

	first, err := svc.SaveState("tweet-heatmap", rendererOverride(t))
	if err != nil {
		t.Fatalf("first SaveState: %v", err)
	}
	second, err := svc.SaveState("tweet-heatmap", rendererOverride(t))
	if err != nil {
		t.Fatalf("second SaveState: %v", err)
	}
	if first != second {
		t.Errorf("same override produced different state ids %q and %q", first, second)
	}
}

func TestSaveStateDistinguishesSerializerType(t *testing.T) {
	svc := newTestService(t, nil)

	scalar := map[string]any{
		"data": map[string]any{"serializer": map[string]any{"type": "float-json"}},
	}
	vector := map[string]any{
		"data": map[string]any{"serializer": map[string]any{"type": "float-array-json"}},
	}

	scalarID, err := svc.SaveState("tweet-heatmap", scalar)
	if err != nil {
		t.Fatalf("saving scalar state: %v", err)
	}
	vectorID, err := svc.SaveState("tweet-heatmap", vector)
	if err != nil {
		t.Fatalf("saving vector state: %v", err)
	}
	if scalarID == vectorID {
		t.Fatal("states differing only in serializer type must get distinct ids")
	}

	states, err := svc.States("tweet-heatmap")
	if err != nil {
		t.Fatalf("States: %v", err)
	}
	if _, ok := states[scalarID]; !ok {
		t.Error("scalar state missing after vector save")
	}
	if _, ok := states[vectorID]; !ok {
		t.Error("vector state missing after scalar save")
	}
}

func TestDefaultStateKeepsConfiguredValues(t *testing.T) {
	svc := newTestService(t, nil)

	if _, err := svc.SaveState("tweet-heatmap", rendererOverride(t)); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	states, err := svc.States("tweet-heatmap")
	if err != nil {
		t.Fatalf("States: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("States returned %d entries, want default plus one saved", len(states))
	}
	def, ok := states[DefaultStateID]
	if !ok {
		t.Fatal("States is missing the default state")
	}
	renderer, _ := def["renderer"].(map[string]any)
	if renderer["ramp"] != "hot" {
		t.Errorf("default ramp = %v, want hot", renderer["ramp"])
	}
	transform, _ := def["valueTransform"].(map[string]any)
	if transform["type"] != "log10" {
		t.Errorf("default valueTransform type = %v, want log10", transform["type"])
	}
}

func TestStateNotFound(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.State("tweet-heatmap", "deadbeef"); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("State error = %v, want ErrStateNotFound", err)
	}
}

func TestConfigurationCachesByHash(t *testing.T) {
	svc := newTestService(t, nil)
	override := rendererOverride(t)

	first, hash1, err := svc.Configuration("tweet-heatmap", override)
	if err != nil {
		t.Fatalf("first Configuration: %v", err)
	}
	second, hash2, err := svc.Configuration("tweet-heatmap", override)
	if err != nil {
		t.Fatalf("second Configuration: %v", err)
	}
	if hash1 != hash2 {
		t.Errorf("hashes differ: %q vs %q", hash1, hash2)
	}
	if first != second {
		t.Error("second request for the same state did not hit the cache")
	}

	if rendering.RendererRamp.String(first) != "cool" {
		t.Errorf("overridden ramp = %q, want cool", rendering.RendererRamp.String(first))
	}
	if rendering.RendererCoarseness.Int(first) != 3 {
		t.Errorf("overridden coarseness = %d, want 3", rendering.RendererCoarseness.Int(first))
	}
}

func TestConfigurationDefault(t *testing.T) {
	svc := newTestService(t, nil)

	fac, stateID, err := svc.Configuration("tweet-heatmap", nil)
	if err != nil {
		t.Fatalf("Configuration: %v", err)
	}
	if stateID != DefaultStateID {
		t.Errorf("stateID = %q, want %q", stateID, DefaultStateID)
	}
	if rendering.RendererRamp.String(fac) != "hot" {
		t.Errorf("default ramp = %q, want hot", rendering.RendererRamp.String(fac))
	}
}

func TestTileJSON(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	fac, _, err := svc.Configuration("tweet-heatmap", nil)
	if err != nil {
		t.Fatalf("Configuration: %v", err)
	}
	product, err := fac.Produce("", rendering.TypePyramidIO)
	if err != nil {
		t.Fatalf("producing tile store: %v", err)
	}
	store := product.(pyramidio.PyramidIO)

	idx := tile.Index{Level: 4, X: 3, Y: 2}
	payload := []byte(`{"level":4,"xIndex":3,"yIndex":2}`)
	if err := store.WriteTile(ctx, "twitter.heatmap", idx, payload); err != nil {
		t.Fatalf("WriteTile: %v", err)
	}

	got, err := svc.TileJSON(ctx, "tweet-heatmap", idx)
	if err != nil {
		t.Fatalf("TileJSON: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("TileJSON = %s, want %s", got, payload)
	}

	if _, err := svc.TileJSON(ctx, "tweet-heatmap", tile.Index{Level: 4, X: 0, Y: 0}); !errors.Is(err, pyramidio.ErrTileNotFound) {
		t.Errorf("missing tile error = %v, want ErrTileNotFound", err)
	}
	if _, err := svc.TileJSON(ctx, "tweet-heatmap", tile.Index{Level: 1, X: 5, Y: 0}); err == nil {
		t.Error("out-of-range index was accepted")
	}
}

func TestMetadata(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	fac, _, err := svc.Configuration("tweet-heatmap", nil)
	if err != nil {
		t.Fatalf("Configuration: %v", err)
	}
	store := mustProduceIO(t, fac)

	meta := []byte(`{"bins": 256, "levels": 10}`)
	if err := store.WriteMetadata(ctx, "twitter.heatmap", meta); err != nil {
		t.Fatalf("WriteMetadata: %v", err)
	}
	got, err := svc.Metadata(ctx, "tweet-heatmap")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if string(got) != string(meta) {
		t.Errorf("Metadata = %s, want %s", got, meta)
	}
}

func mustProduceIO(t *testing.T, fac *factory.Factory) pyramidio.PyramidIO {
	t.Helper()
	product, err := fac.Produce("", rendering.TypePyramidIO)
	if err != nil {
		t.Fatalf("producing tile store: %v", err)
	}
	return product.(pyramidio.PyramidIO)
}

func TestReloadReplacesLayers(t *testing.T) {
	svc := newTestService(t, nil)

	next := `{"layers": [{"id": "flights", "data": {"id": "flights.paths"}}]}`
	if err := svc.Reload([]byte(next)); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	ids := svc.IDs()
	if len(ids) != 1 || ids[0] != "flights" {
		t.Errorf("IDs after reload = %v, want [flights]", ids)
	}
	if _, err := svc.LayerJSON("tweet-heatmap"); !errors.Is(err, ErrLayerNotFound) {
		t.Errorf("old layer still resolvable after reload: %v", err)
	}
}

func TestReloadKeepsLayersOnBadDocument(t *testing.T) {
	svc := newTestService(t, nil)
	if err := svc.Reload([]byte(`{"layers": 7}`)); err == nil {
		t.Fatal("Reload accepted invalid document")
	}
	if len(svc.IDs()) != 2 {
		t.Error("failed reload disturbed the existing layer set")
	}
}

func TestStatePersistenceAcrossRestart(t *testing.T) {
	opts := badger.DefaultOptions(t.TempDir())
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("opening badger store: %v", err)
	}
	defer db.Close()
	store := NewStateStore(db)

	first := newTestService(t, store)
	stateID, err := first.SaveState("tweet-heatmap", rendererOverride(t))
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	// A fresh service over the same store sees the saved state.
	second := newTestService(t, store)
	state, err := second.State("tweet-heatmap", stateID)
	if err != nil {
		t.Fatalf("State after restart: %v", err)
	}
	renderer, _ := state["renderer"].(map[string]any)
	if renderer["ramp"] != "cool" {
		t.Errorf("restored ramp = %v, want cool", renderer["ramp"])
	}

	states, err := second.States("tweet-heatmap")
	if err != nil {
		t.Fatalf("States after restart: %v", err)
	}
	if _, ok := states[stateID]; !ok {
		t.Errorf("restored States is missing %q", stateID)
	}
}

func TestConfigCacheEviction(t *testing.T) {
	c := newConfigCache(2, 0)
	a := factory.New("a", "t", "", func(*factory.Factory) (any, error) { return nil, nil })
	b := factory.New("b", "t", "", func(*factory.Factory) (any, error) { return nil, nil })
	d := factory.New("d", "t", "", func(*factory.Factory) (any, error) { return nil, nil })

	c.add("a", a)
	c.add("b", b)
	if _, ok := c.get("a"); !ok {
		t.Fatal("a missing before eviction")
	}
	c.add("d", d) // evicts b, the least recently used
	if _, ok := c.get("b"); ok {
		t.Error("b survived eviction")
	}
	if _, ok := c.get("a"); !ok {
		t.Error("a was evicted despite recent use")
	}
	if c.len() != 2 {
		t.Errorf("cache holds %d entries, want 2", c.len())
	}
}
