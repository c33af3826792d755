// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

// Package factory implements Tessera's JSON-driven configurable-factory
// framework: a recursive tree of named, typed component factories that read
// layered JSON configuration, validate and default properties, and produce
// singleton or transient products.
//
// # Model
//
// A Factory owns an ordered list of child factories, a set of declared
// Properties, and an optional path segment locating its configuration
// subtree inside its parent's subtree. Trees are assembled bottom-up:
//
//	renderer := factory.New("", "renderer", "renderer", newRenderer).
//		AddProperty(RampProperty).
//		AddProperty(CoarsenessProperty)
//	layer := factory.New("", "layer", "", newLayer).AddChild(renderer)
//
// ReadConfiguration walks the tree once, resolving each factory's node from
// its parent's node by its path. Missing subtrees are not errors: the
// affected factories simply answer every property read with defaults.
//
// Produce matches by exact name (empty matches all) and exact type tag, self
// first and then children depth-first. Singleton factories construct their
// product at most once under a per-node lock.
//
// # Overrides and state hashing
//
// DecodeQueryParams and MergeOverride derive variant configuration documents
// from query-style parameters. GenerateSHA256 digests the effective property
// values of a subtree into a stable key, which the layer service uses to
// cache and address override-derived configuration states.
//
// Registry maps a "type" discriminator declared in configuration to a
// concrete factory constructor, so a document selects among alternative
// implementations (storage back-ends, renderers, transforms) without the
// tree carrying dead branches.
package factory
