// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package tile

import (
	"math"
	"testing"
)

func TestIndexValid(t *testing.T) {
	tests := []struct {
		idx  Index
		want bool
	}{
		{Index{0, 0, 0}, true},
		{Index{1, 1, 1}, true},
		{Index{1, 2, 0}, false},
		{Index{3, 7, 7}, true},
		{Index{3, 8, 0}, false},
		{Index{-1, 0, 0}, false},
		{Index{2, -1, 0}, false},
	}
	for _, tt := range tests {
		if got := tt.idx.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.idx, got, tt.want)
		}
	}
}

func TestIndexParentChildren(t *testing.T) {
	idx := Index{Level: 3, X: 5, Y: 6}
	parent := idx.Parent()
	if parent != (Index{Level: 2, X: 2, Y: 3}) {
		t.Errorf("parent = %v", parent)
	}

	found := false
	for _, c := range parent.Children() {
		if c == idx {
			found = true
		}
		if c.Parent() != parent {
			t.Errorf("child %v does not round-trip to parent %v", c, parent)
		}
	}
	if !found {
		t.Errorf("%v not among children of %v", idx, parent)
	}

	root := Index{Level: 0, X: 0, Y: 0}
	if root.Parent() != root {
		t.Error("level-0 tile must be its own parent")
	}
}

func TestWebMercatorLevelZero(t *testing.T) {
	p := NewWebMercatorPyramid()
	idx := p.RootToTile(0, 0, 0)
	if idx != (Index{0, 0, 0}) {
		t.Errorf("origin at level 0 = %v", idx)
	}
}

func TestWebMercatorQuadrants(t *testing.T) {
	p := NewWebMercatorPyramid()
	tests := []struct {
		lon, lat float64
		want     Index
	}{
		{-90, 40, Index{1, 0, 1}},  // northwest
		{90, 40, Index{1, 1, 1}},   // northeast
		{-90, -40, Index{1, 0, 0}}, // southwest (TMS y-up)
		{90, -40, Index{1, 1, 0}},  // southeast
	}
	for _, tt := range tests {
		if got := p.RootToTile(tt.lon, tt.lat, 1); got != tt.want {
			t.Errorf("RootToTile(%v, %v, 1) = %v, want %v", tt.lon, tt.lat, got, tt.want)
		}
	}
}

func TestWebMercatorBoundsRoundTrip(t *testing.T) {
	p := NewWebMercatorPyramid()
	idx := p.RootToTile(-79.4, 43.7, 9) // Toronto
	b := p.TileBounds(idx)
	if !b.Contains(-79.4, 43.7) {
		t.Errorf("tile %v bounds %+v do not contain the source point", idx, b)
	}

	// Bounds at level 0 match the projection bounds.
	rootBounds := p.TileBounds(Index{0, 0, 0})
	projBounds := p.ProjectionBounds()
	if math.Abs(rootBounds.MinY-projBounds.MinY) > 1e-6 ||
		math.Abs(rootBounds.MaxY-projBounds.MaxY) > 1e-6 {
		t.Errorf("level-0 bounds %+v != projection bounds %+v", rootBounds, projBounds)
	}
}

func TestWebMercatorClampsOutOfRange(t *testing.T) {
	p := NewWebMercatorPyramid()
	idx := p.RootToTile(200, 89, 2)
	if !idx.Valid() {
		t.Errorf("out-of-range input must clamp to a valid tile, got %v", idx)
	}
}

func TestAOIPyramid(t *testing.T) {
	p := NewAOIPyramid(Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100})

	if got := p.RootToTile(10, 10, 1); got != (Index{1, 0, 0}) {
		t.Errorf("(10,10) level 1 = %v", got)
	}
	if got := p.RootToTile(75, 75, 1); got != (Index{1, 1, 1}) {
		t.Errorf("(75,75) level 1 = %v", got)
	}

	b := p.TileBounds(Index{2, 1, 2})
	want := Bounds{MinX: 25, MinY: 50, MaxX: 50, MaxY: 75}
	if b != want {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}

	// Point on the max edge clamps into the grid.
	if got := p.RootToTile(100, 100, 1); got != (Index{1, 1, 1}) {
		t.Errorf("max-edge point = %v", got)
	}
}
