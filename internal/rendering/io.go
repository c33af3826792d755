// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package rendering

import (
	"github.com/tessera-viz/tessera/internal/factory"
	"github.com/tessera-viz/tessera/internal/pyramidio"
	"github.com/tessera-viz/tessera/internal/serialization"
)

// Tile storage factories are singletons: a back-end holds OS resources
// (file handles, an embedded store) and every produce call for the same
// layer must share one instance.

// NewMemoryIOFactory constructs the in-memory tile store factory.
func NewMemoryIOFactory(name, path string) *factory.Factory {
	return factory.NewSingleton(name, TypePyramidIO, path, func(f *factory.Factory) (any, error) {
		return wrapBreaker(f, pyramidio.NewMemoryIO()), nil
	}).AddProperty(IOCircuitBreaker)
}

// NewFileIOFactory constructs the filesystem tile store factory.
func NewFileIOFactory(name, path string) *factory.Factory {
	return factory.NewSingleton(name, TypePyramidIO, path, func(f *factory.Factory) (any, error) {
		io, err := pyramidio.NewFileIO(FileIORoot.String(f))
		if err != nil {
			return nil, err
		}
		return wrapBreaker(f, io), nil
	}).
		AddProperty(FileIORoot).
		AddProperty(IOCircuitBreaker)
}

// NewBadgerIOFactory constructs the embedded-store tile factory.
func NewBadgerIOFactory(name, path string) *factory.Factory {
	return factory.NewSingleton(name, TypePyramidIO, path, func(f *factory.Factory) (any, error) {
		io, err := pyramidio.NewBadgerIO(BadgerIODir.String(f))
		if err != nil {
			return nil, err
		}
		return wrapBreaker(f, io), nil
	}).
		AddProperty(BadgerIODir).
		AddProperty(IOCircuitBreaker)
}

func wrapBreaker(f *factory.Factory, io pyramidio.PyramidIO) pyramidio.PyramidIO {
	if IOCircuitBreaker.Bool(f) {
		return pyramidio.NewBreakerIO(io, pyramidio.BreakerConfig{Name: f.Path()})
	}
	return io
}

// NewFloatSerializerFactory constructs the scalar-bin serializer factory.
func NewFloatSerializerFactory(name, path string) *factory.Factory {
	return factory.New(name, TypeSerializer, path, func(f *factory.Factory) (any, error) {
		return serialization.NewFloatJSONSerializer(), nil
	})
}

// NewFloatArraySerializerFactory constructs the vector-bin serializer
// factory.
func NewFloatArraySerializerFactory(name, path string) *factory.Factory {
	return factory.New(name, TypeSerializer, path, func(f *factory.Factory) (any, error) {
		return serialization.NewFloatArrayJSONSerializer(), nil
	})
}
