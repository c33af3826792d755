// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package pyramidio

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"

	"github.com/tessera-viz/tessera/internal/tile"
)

// backendTest exercises the PyramidIO contract against any implementation.
func backendTest(t *testing.T, io PyramidIO) {
	t.Helper()
	ctx := context.Background()
	idx := tile.Index{Level: 4, X: 3, Y: 9}

	if _, err := io.ReadTile(ctx, "demo", idx); !errors.Is(err, ErrTileNotFound) {
		t.Errorf("missing tile should be ErrTileNotFound, got %v", err)
	}
	if _, err := io.ReadMetadata(ctx, "demo"); !errors.Is(err, ErrMetadataNotFound) {
		t.Errorf("missing metadata should be ErrMetadataNotFound, got %v", err)
	}

	payload := []byte(`{"bins":[1]}`)
	if err := io.WriteTile(ctx, "demo", idx, payload); err != nil {
		t.Fatalf("write tile failed: %v", err)
	}
	got, err := io.ReadTile(ctx, "demo", idx)
	if err != nil {
		t.Fatalf("read tile failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("tile payload = %q, want %q", got, payload)
	}

	// Writes for one dataset must not leak into another.
	if _, err := io.ReadTile(ctx, "other", idx); !errors.Is(err, ErrTileNotFound) {
		t.Errorf("dataset isolation violated: %v", err)
	}

	meta := []byte(`{"name":"demo"}`)
	if err := io.WriteMetadata(ctx, "demo", meta); err != nil {
		t.Fatalf("write metadata failed: %v", err)
	}
	gotMeta, err := io.ReadMetadata(ctx, "demo")
	if err != nil {
		t.Fatalf("read metadata failed: %v", err)
	}
	if string(gotMeta) != string(meta) {
		t.Errorf("metadata = %q, want %q", gotMeta, meta)
	}

	// Overwrite replaces.
	updated := []byte(`{"bins":[2]}`)
	if err := io.WriteTile(ctx, "demo", idx, updated); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, _ = io.ReadTile(ctx, "demo", idx)
	if string(got) != string(updated) {
		t.Errorf("overwritten payload = %q, want %q", got, updated)
	}
}

func TestMemoryIO(t *testing.T) {
	backendTest(t, NewMemoryIO())
}

func TestFileIO(t *testing.T) {
	io, err := NewFileIO(t.TempDir())
	if err != nil {
		t.Fatalf("creating file store: %v", err)
	}
	backendTest(t, io)
}

func TestBadgerIO(t *testing.T) {
	io, err := NewBadgerIO(t.TempDir())
	if err != nil {
		t.Fatalf("opening badger store: %v", err)
	}
	defer io.Close()
	backendTest(t, io)
}

func TestMemoryIOCopiesPayloads(t *testing.T) {
	m := NewMemoryIO()
	ctx := context.Background()
	idx := tile.Index{Level: 0, X: 0, Y: 0}

	payload := []byte("abc")
	if err := m.WriteTile(ctx, "demo", idx, payload); err != nil {
		t.Fatal(err)
	}
	payload[0] = 'z'

	got, err := m.ReadTile(ctx, "demo", idx)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Errorf("store must not alias caller buffers, got %q", got)
	}
	got[0] = 'q'
	again, _ := m.ReadTile(ctx, "demo", idx)
	if string(again) != "abc" {
		t.Errorf("reads must not alias stored buffers, got %q", again)
	}
}

func TestBreakerIOPassesThroughNotFound(t *testing.T) {
	b := NewBreakerIO(NewMemoryIO(), BreakerConfig{Name: "test", FailureThreshold: 2})
	ctx := context.Background()
	idx := tile.Index{Level: 1, X: 0, Y: 0}

	// Many not-found reads must not open the breaker.
	for i := 0; i < 10; i++ {
		if _, err := b.ReadTile(ctx, "demo", idx); !errors.Is(err, ErrTileNotFound) {
			t.Fatalf("read %d: expected ErrTileNotFound, got %v", i, err)
		}
	}

	if err := b.WriteTile(ctx, "demo", idx, []byte("x")); err != nil {
		t.Fatalf("write through breaker failed: %v", err)
	}
	if _, err := b.ReadTile(ctx, "demo", idx); err != nil {
		t.Fatalf("read through breaker failed: %v", err)
	}
}

type failingIO struct{}

var errBackend = errors.New("backend down")

func (failingIO) ReadTile(context.Context, string, tile.Index) ([]byte, error) {
	return nil, errBackend
}
func (failingIO) WriteTile(context.Context, string, tile.Index, []byte) error { return errBackend }
func (failingIO) ReadMetadata(context.Context, string) ([]byte, error)        { return nil, errBackend }
func (failingIO) WriteMetadata(context.Context, string, []byte) error         { return errBackend }

func TestBreakerIOOpensOnFailures(t *testing.T) {
	b := NewBreakerIO(failingIO{}, BreakerConfig{Name: "failing", FailureThreshold: 3})
	ctx := context.Background()
	idx := tile.Index{Level: 0, X: 0, Y: 0}

	for i := 0; i < 3; i++ {
		if _, err := b.ReadTile(ctx, "demo", idx); !errors.Is(err, errBackend) {
			t.Fatalf("read %d: expected backend error, got %v", i, err)
		}
	}

	// Breaker is now open: requests fail fast without reaching the backend.
	_, err := b.ReadTile(ctx, "demo", idx)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open-breaker error, got %v", err)
	}
}
