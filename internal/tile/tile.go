// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package tile provides tile addressing and pyramid projection math for the
// tile server. Tiles follow the TMS convention: y increases northward, with
// (0, 0) at the bottom-left of each level, and level z holds 2^z by 2^z
// tiles.
package tile

import (
	"fmt"
	"math"
)

// DefaultTileSize is the per-axis bin count of a standard tile.
const DefaultTileSize = 256

// Index addresses one tile within a pyramid.
type Index struct {
	Level int `json:"level"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// Valid reports whether the index lies within its level's grid.
func (i Index) Valid() bool {
	if i.Level < 0 || i.X < 0 || i.Y < 0 {
		return false
	}
	n := 1 << uint(i.Level)
	return i.X < n && i.Y < n
}

// String renders the index as "level/x/y".
func (i Index) String() string {
	return fmt.Sprintf("%d/%d/%d", i.Level, i.X, i.Y)
}

// Parent returns the enclosing tile one level up. The level-0 tile is its
// own parent.
func (i Index) Parent() Index {
	if i.Level == 0 {
		return i
	}
	return Index{Level: i.Level - 1, X: i.X / 2, Y: i.Y / 2}
}

// Children returns the four enclosed tiles one level down.
func (i Index) Children() [4]Index {
	l, x, y := i.Level+1, i.X*2, i.Y*2
	return [4]Index{
		{l, x, y},
		{l, x + 1, y},
		{l, x, y + 1},
		{l, x + 1, y + 1},
	}
}

// Bounds is an axis-aligned rectangle in projection coordinates.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether the point lies inside the rectangle; the maximum
// edges are exclusive.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x < b.MaxX && y >= b.MinY && y < b.MaxY
}

// Pyramid projects between root coordinates (lon/lat or data units) and tile
// indices at a zoom level.
type Pyramid interface {
	// Name identifies the projection (e.g. "EPSG:900913").
	Name() string

	// RootToTile returns the tile containing the root-coordinate point at
	// the given level.
	RootToTile(x, y float64, level int) Index

	// TileBounds returns the tile's extent in root coordinates.
	TileBounds(idx Index) Bounds

	// ProjectionBounds returns the full extent covered by level 0.
	ProjectionBounds() Bounds
}

// WebMercatorPyramid projects lon/lat (EPSG:4326 input) onto the spherical
// web-mercator tile grid (EPSG:3857, historically EPSG:900913).
type WebMercatorPyramid struct{}

// NewWebMercatorPyramid creates the standard web-mercator pyramid.
func NewWebMercatorPyramid() *WebMercatorPyramid { return &WebMercatorPyramid{} }

func (p *WebMercatorPyramid) Name() string { return "EPSG:900913" }

func (p *WebMercatorPyramid) ProjectionBounds() Bounds {
	return Bounds{MinX: -180, MinY: -85.05112878, MaxX: 180, MaxY: 85.05112878}
}

func (p *WebMercatorPyramid) RootToTile(lon, lat float64, level int) Index {
	n := float64(int(1) << uint(level))
	x := int(math.Floor((lon + 180) / 360 * n))

	latRad := lat * math.Pi / 180
	// Fraction of the mercator span measured from the top of the map.
	yDown := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	y := int(math.Floor((1 - yDown) * n)) // flip to TMS y-up

	return Index{Level: level, X: clamp(x, 0, int(n)-1), Y: clamp(y, 0, int(n)-1)}
}

func (p *WebMercatorPyramid) TileBounds(idx Index) Bounds {
	n := float64(int(1) << uint(idx.Level))
	lonMin := float64(idx.X)/n*360 - 180
	lonMax := float64(idx.X+1)/n*360 - 180
	latMin := mercatorRowToLat(float64(idx.Y), n)
	latMax := mercatorRowToLat(float64(idx.Y+1), n)
	return Bounds{MinX: lonMin, MinY: latMin, MaxX: lonMax, MaxY: latMax}
}

// mercatorRowToLat converts a TMS row boundary to latitude.
func mercatorRowToLat(row, n float64) float64 {
	yDown := 1 - row/n
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*yDown)))
	return latRad * 180 / math.Pi
}

// AOIPyramid projects a rectangular area of interest onto a cartesian tile
// grid: level 0 is one tile spanning the full bounds, each level doubling
// the grid along both axes.
type AOIPyramid struct {
	bounds Bounds
}

// NewAOIPyramid creates an area-of-interest pyramid covering bounds.
func NewAOIPyramid(bounds Bounds) *AOIPyramid {
	return &AOIPyramid{bounds: bounds}
}

func (p *AOIPyramid) Name() string { return "AOI" }

func (p *AOIPyramid) ProjectionBounds() Bounds { return p.bounds }

func (p *AOIPyramid) RootToTile(x, y float64, level int) Index {
	n := int(1) << uint(level)
	tx := int(math.Floor((x - p.bounds.MinX) / p.bounds.Width() * float64(n)))
	ty := int(math.Floor((y - p.bounds.MinY) / p.bounds.Height() * float64(n)))
	return Index{Level: level, X: clamp(tx, 0, n-1), Y: clamp(ty, 0, n-1)}
}

func (p *AOIPyramid) TileBounds(idx Index) Bounds {
	n := float64(int(1) << uint(idx.Level))
	w := p.bounds.Width() / n
	h := p.bounds.Height() / n
	return Bounds{
		MinX: p.bounds.MinX + float64(idx.X)*w,
		MinY: p.bounds.MinY + float64(idx.Y)*h,
		MaxX: p.bounds.MinX + float64(idx.X+1)*w,
		MaxY: p.bounds.MinY + float64(idx.Y+1)*h,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
