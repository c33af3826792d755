// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package rendering assembles the configurable-factory tree behind each map
// layer: renderer settings, value transforms, tile pyramid projection,
// serializer, and tile storage back-end, all selected and tuned by the layer
// configuration document.
package rendering

import "github.com/tessera-viz/tessera/internal/factory"

// Factory type tags produced by this package.
const (
	TypeLayer          = "layer"
	TypeData           = "data"
	TypeRenderer       = "renderer"
	TypeValueTransform = "valueTransform"
	TypePyramid        = "pyramid"
	TypeSerializer     = "serializer"
	TypePyramidIO      = "pyramidio"
)

// Layer-level properties.
var (
	// LayerID identifies the layer to clients.
	LayerID = factory.NewStringProperty("id", "")

	// LayerName is the display name; falls back to the id.
	LayerName = factory.NewStringProperty("name", "")
)

// Data-node properties.
var (
	// DataID names the dataset the layer's tiles are read from.
	DataID = factory.NewStringProperty("id", "")
)

// Renderer properties.
var (
	RendererRamp       = factory.NewStringProperty("ramp", "hot")
	RendererCoarseness = factory.NewIntProperty("coarseness", 1)
	RendererOpacity    = factory.NewFloatProperty("opacity", 1.0)
	RendererRangeMin   = factory.NewFloatProperty("rangeMin", 0)
	RendererRangeMax   = factory.NewFloatProperty("rangeMax", 100)
)

// Value-transform properties.
var (
	TransformMin = factory.NewFloatProperty("min", 0)
	TransformMax = factory.NewFloatProperty("max", 100)
)

// AOI pyramid extent properties.
var (
	PyramidMinX = factory.NewFloatProperty("minX", -180)
	PyramidMinY = factory.NewFloatProperty("minY", -90)
	PyramidMaxX = factory.NewFloatProperty("maxX", 180)
	PyramidMaxY = factory.NewFloatProperty("maxY", 90)
)

// Tile storage properties.
var (
	// FileIORoot is the tile directory for the file back-end.
	FileIORoot = factory.NewStringProperty("root", "tiles")

	// BadgerIODir is the store directory for the badger back-end.
	BadgerIODir = factory.NewStringProperty("dir", "data/tiles")

	// IOCircuitBreaker wraps the back-end with a circuit breaker when true.
	IOCircuitBreaker = factory.NewBoolProperty("circuitBreaker", false)
)
