// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package factory

import (
	"fmt"
	"sync"
)

// Constructor builds a concrete factory. name disambiguates siblings; path
// is the JSON key the factory's configuration subtree lives under.
type Constructor func(name, path string) *Factory

// TypeKey is the configuration field holding the type discriminator a
// provider registry dispatches on.
const TypeKey = "type"

// Registry maps a type discriminator string to a factory constructor.
// A configuration document selects among alternative implementations by
// declaring the discriminator in its subtree; only the selected factory is
// built, so the assembled tree carries no dead branches.
type Registry struct {
	mu          sync.RWMutex
	ctors       map[string]Constructor
	defaultType string
}

// NewRegistry creates a registry that falls back to defaultType when a
// configuration subtree declares no type.
func NewRegistry(defaultType string) *Registry {
	return &Registry{
		ctors:       make(map[string]Constructor),
		defaultType: defaultType,
	}
}

// Register binds a type discriminator to a constructor. Later registrations
// of the same discriminator replace earlier ones.
func (r *Registry) Register(typeTag string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[typeTag] = ctor
}

// Types lists the registered discriminators.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.ctors))
	for t := range r.ctors {
		types = append(types, t)
	}
	return types
}

// Create builds the factory selected by the type discriminator found at
// parentNode[path][TypeKey], falling back to the registry's default type
// when the subtree or the field is absent. Returns ErrUnknownType (wrapped)
// when no constructor is registered for the requested discriminator.
//
// parentNode is consulted only for the discriminator; the built factory
// still resolves its own configuration during ReadConfiguration. The
// resolved discriminator is declared as a property on the built factory so
// it participates in configuration-state hashing: trees that differ only in
// the selected implementation hash differently.
func (r *Registry) Create(name, path string, parentNode map[string]any) (*Factory, error) {
	typeTag := r.declaredType(path, parentNode)
	r.mu.RLock()
	ctor, ok := r.ctors[typeTag]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q at path %q", ErrUnknownType, typeTag, path)
	}
	fac := ctor(name, path)
	fac.AddProperty(NewStringProperty(TypeKey, typeTag))
	return fac, nil
}

// declaredType reads the discriminator from the subtree at path, or returns
// the default.
func (r *Registry) declaredType(path string, parentNode map[string]any) string {
	node := parentNode
	if path != "" && parentNode != nil {
		sub, ok := parentNode[path].(map[string]any)
		if !ok {
			return r.defaultType
		}
		node = sub
	}
	if node == nil {
		return r.defaultType
	}
	if t, ok := node[TypeKey].(string); ok && t != "" {
		return t
	}
	return r.defaultType
}
