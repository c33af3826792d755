// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package rendering

import (
	"github.com/tessera-viz/tessera/internal/factory"
	"github.com/tessera-viz/tessera/internal/tile"
)

// NewWebMercatorPyramidFactory constructs the factory for the standard
// web-mercator projection.
func NewWebMercatorPyramidFactory(name, path string) *factory.Factory {
	return factory.New(name, TypePyramid, path, func(f *factory.Factory) (any, error) {
		return tile.NewWebMercatorPyramid(), nil
	})
}

// NewAOIPyramidFactory constructs the factory for area-of-interest pyramids
// with configurable extents.
func NewAOIPyramidFactory(name, path string) *factory.Factory {
	return factory.New(name, TypePyramid, path, func(f *factory.Factory) (any, error) {
		return tile.NewAOIPyramid(tile.Bounds{
			MinX: PyramidMinX.Float(f),
			MinY: PyramidMinY.Float(f),
			MaxX: PyramidMaxX.Float(f),
			MaxY: PyramidMaxY.Float(f),
		}), nil
	}).
		AddProperty(PyramidMinX).
		AddProperty(PyramidMinY).
		AddProperty(PyramidMaxX).
		AddProperty(PyramidMaxY)
}
