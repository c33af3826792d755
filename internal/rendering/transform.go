// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package rendering

import (
	"math"

	"github.com/tessera-viz/tessera/internal/factory"
)

// ValueTransform maps raw bin values into [0, 1] for ramp lookup.
type ValueTransform interface {
	// Name identifies the transform in configuration documents.
	Name() string

	// Apply normalizes a raw value; results are clamped to [0, 1].
	Apply(value float64) float64
}

// LinearTransform normalizes values linearly between a minimum and maximum.
type LinearTransform struct {
	Min, Max float64
}

func (t *LinearTransform) Name() string { return "linear" }

func (t *LinearTransform) Apply(value float64) float64 {
	if t.Max <= t.Min {
		return 0
	}
	return clamp01((value - t.Min) / (t.Max - t.Min))
}

// Log10Transform compresses heavy-tailed values with a log10 curve, the
// usual choice for count-density heatmaps.
type Log10Transform struct {
	Max float64
}

func (t *Log10Transform) Name() string { return "log10" }

func (t *Log10Transform) Apply(value float64) float64 {
	if t.Max <= 0 || value <= 0 {
		return 0
	}
	return clamp01(math.Log10(1+value) / math.Log10(1+t.Max))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NewLinearTransformFactory constructs the factory for linear transforms.
func NewLinearTransformFactory(name, path string) *factory.Factory {
	return factory.New(name, TypeValueTransform, path, func(f *factory.Factory) (any, error) {
		return &LinearTransform{
			Min: TransformMin.Float(f),
			Max: TransformMax.Float(f),
		}, nil
	}).AddProperty(TransformMin).AddProperty(TransformMax)
}

// NewLog10TransformFactory constructs the factory for log10 transforms.
func NewLog10TransformFactory(name, path string) *factory.Factory {
	f := factory.New(name, TypeValueTransform, path, func(f *factory.Factory) (any, error) {
		return &Log10Transform{Max: TransformMax.Float(f)}, nil
	})
	return f.AddProperty(TransformMax)
}
