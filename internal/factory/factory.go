// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package factory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tessera-viz/tessera/internal/logging"
)

// CreateFunc constructs a factory's product from its resolved configuration.
// The receiving factory is passed so the hook can read property values.
type CreateFunc func(f *Factory) (any, error)

// Factory is a configuration-bound node that knows how to construct one
// category of product object. Factories form a tree assembled bottom-up with
// AddChild, configured once with ReadConfiguration against a root JSON
// document, and queried with Produce for the life of the process.
//
// Tree assembly (AddChild, AddProperty, SetDefault) must complete before
// ReadConfiguration; property reads and production are safe for concurrent
// use once configured. ReadConfiguration itself must not race against
// Produce or PropertyValue calls.
type Factory struct {
	name       string
	typeTag    string
	path       string
	parent     *Factory
	children   []*Factory
	properties []Property
	declared   map[Property]struct{}
	defaults   map[Property]any
	create     CreateFunc

	node       map[string]any
	configured bool

	singleton bool
	mu        sync.Mutex
	product   atomic.Pointer[any]
}

// New creates a factory producing objects tagged typeTag.
//
// path is the JSON key locating this factory's configuration subtree within
// its parent's subtree; an empty path means the factory shares its parent's
// node directly. name optionally disambiguates siblings producing the same
// type; the empty name matches any requested name.
func New(name, typeTag, path string, create CreateFunc) *Factory {
	return &Factory{
		name:     name,
		typeTag:  typeTag,
		path:     path,
		declared: make(map[Property]struct{}),
		defaults: make(map[Property]any),
		create:   create,
	}
}

// NewSingleton creates a factory that constructs its product at most once,
// caching and returning the same instance thereafter.
func NewSingleton(name, typeTag, path string, create CreateFunc) *Factory {
	f := New(name, typeTag, path, create)
	f.singleton = true
	return f
}

// Name returns the factory's disambiguating name, or "" if none was given.
func (f *Factory) Name() string { return f.name }

// TypeTag returns the factory's product type tag.
func (f *Factory) TypeTag() string { return f.typeTag }

// Path returns the factory's JSON path segment, or "" if it shares its
// parent's node.
func (f *Factory) Path() string { return f.path }

// Root walks parent links to the top of the factory tree.
func (f *Factory) Root() *Factory {
	if f.parent != nil {
		return f.parent.Root()
	}
	return f
}

// Configured reports whether ReadConfiguration has run on this factory.
func (f *Factory) Configured() bool { return f.configured }

// Properties lists the properties directly declared by this factory, in
// declaration order.
func (f *Factory) Properties() []Property { return f.properties }

// AddProperty declares a property consumed by this factory. Returns f for
// chaining. Assembly-time only.
func (f *Factory) AddProperty(p Property) *Factory {
	if _, ok := f.declared[p]; ok {
		return f
	}
	f.declared[p] = struct{}{}
	f.properties = append(f.properties, p)
	return f
}

// SetDefault overrides a property's default value for this factory only.
// JSON-supplied values still win. Assembly-time only.
func (f *Factory) SetDefault(p Property, value any) {
	f.defaults[p] = value
}

// AddChild attaches a child factory. The child's parent back-reference is
// set here, never at construction, so trees can be assembled bottom-up.
// Returns f for chaining. Assembly-time only.
func (f *Factory) AddChild(child *Factory) *Factory {
	f.children = append(f.children, child)
	child.parent = f
	return f
}

// Children returns the ordered child factories.
func (f *Factory) Children() []*Factory { return f.children }

// FactoryByPath locates a descendant factory by its accumulated path
// segments. A factory with an empty path is transparent: the search passes
// through to its children. Returns nil when no factory matches.
func (f *Factory) FactoryByPath(path []string) *Factory {
	if len(path) == 0 {
		return nil
	}
	if f.path == "" {
		for _, child := range f.children {
			if found := child.FactoryByPath(path); found != nil {
				return found
			}
		}
		return nil
	}
	if f.path != path[0] {
		return nil
	}
	if len(path) == 1 {
		return f
	}
	for _, child := range f.children {
		if found := child.FactoryByPath(path[1:]); found != nil {
			return found
		}
	}
	return nil
}

// ReadConfiguration resolves this factory's configuration node within root
// and recursively configures every child against the resolved node. A
// missing or wrongly-shaped subtree is not an error: the factory and its
// descendants fall back to defaults. Calling ReadConfiguration again
// re-resolves every node; callers must serialize it against production
// traffic.
func (f *Factory) ReadConfiguration(root map[string]any) {
	f.node = f.resolveNode(root)
	for _, child := range f.children {
		child.ReadConfiguration(f.node)
	}
	f.configured = true
}

// resolveNode maps this factory's path to its subtree of root. An empty path
// shares root directly; an absent or non-object entry yields nil, meaning
// everything below defaults.
func (f *Factory) resolveNode(root map[string]any) map[string]any {
	if f.path == "" || root == nil {
		return root
	}
	sub, ok := root[f.path]
	if !ok {
		return nil
	}
	node, ok := sub.(map[string]any)
	if !ok {
		return nil
	}
	return node
}

// ConfigurationNode returns the JSON subtree this factory was configured
// against, or nil before configuration or when the subtree was absent.
func (f *Factory) ConfigurationNode() map[string]any { return f.node }

// DefaultValue returns the effective default for a property: the per-factory
// override when set, the property's own static default otherwise.
func (f *Factory) DefaultValue(p Property) any {
	if v, ok := f.defaults[p]; ok {
		return v
	}
	return p.DefaultValue()
}

// HasPropertyValue reports whether an actual (non-default) value was read at
// configuration time for the given property.
func (f *Factory) HasPropertyValue(p Property) bool {
	if !f.configured || f.node == nil {
		return false
	}
	node := f.propertyNode(p)
	if node == nil {
		return false
	}
	_, ok := node[p.Name()]
	return ok
}

// PropertyValue returns the value read at configuration time for the given
// property, or its default when unconfigured, absent, or malformed. Decode
// errors are never fatal: absence logs at info, a wrong shape logs at warn,
// and both fall back to the default.
//
// The owning node is found by a depth-first search for whichever factory in
// the subtree declared the property, self first. If two sibling subtrees
// declare the same property the first match wins; this order dependence is
// inherited deliberately from the configuration model.
func (f *Factory) PropertyValue(p Property) any {
	if !f.configured || f.node == nil {
		return f.DefaultValue(p)
	}
	node := f.propertyNode(p)
	if node == nil {
		return f.DefaultValue(p)
	}
	value, err := p.Decode(node)
	if err != nil {
		if err == ErrPropertyAbsent {
			logging.Info().
				Str("property", p.Name()).
				Msg("property not in configuration, using default")
		} else {
			logging.Warn().
				Err(err).
				Str("property", p.Name()).
				Msg("error reading property from configuration, using default")
		}
		return f.DefaultValue(p)
	}
	return value
}

// propertyNode searches the subtree for the configuration node of the
// factory that declared p. A declaring factory returns its node even when
// nil; the caller keeps searching siblings in that case.
func (f *Factory) propertyNode(p Property) map[string]any {
	if _, ok := f.declared[p]; ok {
		return f.node
	}
	for _, child := range f.children {
		if node := child.propertyNode(p); node != nil {
			return node
		}
	}
	return nil
}

// Produce builds or fetches a product of the given type from this factory's
// subtree. An empty name matches any factory name; otherwise names must
// match exactly, and type tags always compare exactly (not polymorphically).
//
// Returns ErrUnconfigured before ReadConfiguration and ErrNoProducer when no
// node in the subtree is eligible. A matching node whose create hook fails
// returns that failure as-is, so callers can tell absence from a producer
// that matched but could not construct.
func (f *Factory) Produce(name, typeTag string) (any, error) {
	if !f.configured {
		return nil, ErrUnconfigured
	}
	if (name == "" || name == f.name) && typeTag == f.typeTag {
		if f.singleton {
			return f.singletonProduct()
		}
		return f.create(f)
	}
	for _, child := range f.children {
		product, err := child.Produce(name, typeTag)
		if err != nil {
			if err == ErrNoProducer {
				continue
			}
			return nil, err
		}
		return product, nil
	}
	return nil, ErrNoProducer
}

// singletonProduct returns the cached product, constructing it at most once
// under the factory's lock. The lock-free fast path serves the common
// cached-hit case.
func (f *Factory) singletonProduct() (any, error) {
	if p := f.product.Load(); p != nil {
		return *p, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.product.Load(); p != nil {
		return *p, nil
	}
	product, err := f.create(f)
	if err != nil {
		return nil, err
	}
	f.product.Store(&product)
	return product, nil
}

// Producer locates the factory in the subtree that would serve a Produce
// call with the same arguments, or nil when none matches.
func (f *Factory) Producer(name, typeTag string) *Factory {
	if (name == "" || name == f.name) && typeTag == f.typeTag {
		return f
	}
	for _, child := range f.children {
		if producer := child.Producer(name, typeTag); producer != nil {
			return producer
		}
	}
	return nil
}

// GenerateSHA256 returns a hex-encoded SHA-256 digest of the configuration
// state: every property in the subtree contributes "name:value" using its
// currently resolved value, depth-first, factory before children, in
// declaration order. Trees with identical effective values hash identically.
// An empty string means the state could not be hashed and must not be used
// as a cache key.
func (f *Factory) GenerateSHA256() string {
	var sb strings.Builder
	f.writeFactoryString(&sb)
	digest := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(digest[:])
}

func (f *Factory) writeFactoryString(sb *strings.Builder) {
	for _, p := range f.properties {
		sb.WriteString(p.Name())
		sb.WriteString(":")
		fmt.Fprint(sb, f.PropertyValue(p))
	}
	for _, child := range f.children {
		child.writeFactoryString(sb)
	}
}

// ExplicitConfiguration returns the full effective configuration of the
// subtree with every property expanded to its resolved value, suitable for
// display or diffing. Children with their own path nest under it; children
// sharing this factory's node contribute to the same object.
func (f *Factory) ExplicitConfiguration() map[string]any {
	config := make(map[string]any)
	f.writeConfiguration(config)
	return config
}

func (f *Factory) writeConfiguration(config map[string]any) {
	for _, p := range f.properties {
		config[p.Name()] = p.Encode(f.PropertyValue(p))
	}
	for _, child := range f.children {
		if child.path != "" {
			childNode := make(map[string]any)
			config[child.path] = childNode
			child.writeConfiguration(childNode)
		} else {
			child.writeConfiguration(config)
		}
	}
}
