// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package factory

import "errors"

// Sentinel errors for configuration and production.
var (
	// ErrUnconfigured indicates Produce was called before ReadConfiguration.
	ErrUnconfigured = errors.New("factory has not been configured")

	// ErrNoProducer indicates no factory in the subtree matched the requested
	// name and product type. Callers must treat this as absence, distinct from
	// a producer that matched but failed to construct.
	ErrNoProducer = errors.New("no eligible producer found")

	// ErrPropertyAbsent indicates the property's key is missing from its
	// configuration node. Recovered internally by falling back to the default.
	ErrPropertyAbsent = errors.New("property not present in configuration")

	// ErrUnknownType indicates a provider registry has no constructor for the
	// requested type discriminator.
	ErrUnknownType = errors.New("no factory registered for type")
)
