// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package rendering

import "github.com/tessera-viz/tessera/internal/factory"

// HeatmapRenderer carries the client-facing rendering settings of a layer.
// The browser map applies these when styling tile bins; the server's job is
// resolving, overriding, and versioning them.
type HeatmapRenderer struct {
	Ramp       string  `json:"ramp"`
	Coarseness int     `json:"coarseness"`
	Opacity    float64 `json:"opacity"`
	RangeMin   float64 `json:"rangeMin"`
	RangeMax   float64 `json:"rangeMax"`
}

// NewRendererFactory constructs the renderer settings factory.
func NewRendererFactory(name, path string) *factory.Factory {
	return factory.New(name, TypeRenderer, path, func(f *factory.Factory) (any, error) {
		return &HeatmapRenderer{
			Ramp:       RendererRamp.String(f),
			Coarseness: RendererCoarseness.Int(f),
			Opacity:    RendererOpacity.Float(f),
			RangeMin:   RendererRangeMin.Float(f),
			RangeMax:   RendererRangeMax.Float(f),
		}, nil
	}).
		AddProperty(RendererRamp).
		AddProperty(RendererCoarseness).
		AddProperty(RendererOpacity).
		AddProperty(RendererRangeMin).
		AddProperty(RendererRangeMax)
}
