// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package rendering

import (
	"fmt"

	"github.com/tessera-viz/tessera/internal/factory"
)

// Providers bundles the type-dispatch registries used to assemble a layer's
// factory tree. A configuration document picks concrete implementations by
// declaring "type" in the matching subtree; only the selected factories are
// built.
type Providers struct {
	Pyramids    *factory.Registry
	Serializers *factory.Registry
	PyramidIOs  *factory.Registry
	Transforms  *factory.Registry
}

// StandardProviders returns the registries with every built-in
// implementation registered.
func StandardProviders() *Providers {
	pyramids := factory.NewRegistry("webmercator")
	pyramids.Register("webmercator", NewWebMercatorPyramidFactory)
	pyramids.Register("aoi", NewAOIPyramidFactory)

	serializers := factory.NewRegistry("float-json")
	serializers.Register("float-json", NewFloatSerializerFactory)
	serializers.Register("float-array-json", NewFloatArraySerializerFactory)

	ios := factory.NewRegistry("memory")
	ios.Register("memory", NewMemoryIOFactory)
	ios.Register("file", NewFileIOFactory)
	ios.Register("badger", NewBadgerIOFactory)

	transforms := factory.NewRegistry("linear")
	transforms.Register("linear", NewLinearTransformFactory)
	transforms.Register("log10", NewLog10TransformFactory)

	return &Providers{
		Pyramids:    pyramids,
		Serializers: serializers,
		PyramidIOs:  ios,
		Transforms:  transforms,
	}
}

// Layer is the root product of a layer factory tree: the identity under
// which the tile and state endpoints expose the configuration.
type Layer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewLayerFactory assembles the full factory tree for one layer from its
// configuration node. The node is consulted only for type discriminators;
// the returned tree still needs ReadConfiguration.
//
// Tree shape:
//
//	layer (shares the layer node)
//	├── data            (path "data": dataset id)
//	│   ├── pyramidio   (path "pyramidio", type-dispatched)
//	│   └── serializer  (path "serializer", type-dispatched)
//	├── pyramid         (path "pyramid", type-dispatched)
//	├── renderer        (path "renderer")
//	└── valueTransform  (path "valueTransform", type-dispatched)
func (p *Providers) NewLayerFactory(layerNode map[string]any) (*factory.Factory, error) {
	dataNode, _ := layerNode["data"].(map[string]any)

	pyramidIO, err := p.PyramidIOs.Create("", "pyramidio", dataNode)
	if err != nil {
		return nil, fmt.Errorf("assembling pyramidio factory: %w", err)
	}
	serializer, err := p.Serializers.Create("", "serializer", dataNode)
	if err != nil {
		return nil, fmt.Errorf("assembling serializer factory: %w", err)
	}
	pyramid, err := p.Pyramids.Create("", "pyramid", layerNode)
	if err != nil {
		return nil, fmt.Errorf("assembling pyramid factory: %w", err)
	}
	transform, err := p.Transforms.Create("", "valueTransform", layerNode)
	if err != nil {
		return nil, fmt.Errorf("assembling value transform factory: %w", err)
	}

	data := factory.New("", TypeData, "data", func(f *factory.Factory) (any, error) {
		return DataID.String(f), nil
	}).
		AddProperty(DataID).
		AddChild(pyramidIO).
		AddChild(serializer)

	root := factory.New("", TypeLayer, "", func(f *factory.Factory) (any, error) {
		layer := &Layer{ID: LayerID.String(f), Name: LayerName.String(f)}
		if layer.Name == "" {
			layer.Name = layer.ID
		}
		return layer, nil
	}).
		AddProperty(LayerID).
		AddProperty(LayerName).
		AddChild(data).
		AddChild(pyramid).
		AddChild(NewRendererFactory("", "renderer")).
		AddChild(transform)

	return root, nil
}
