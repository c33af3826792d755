// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package factory

import (
	"fmt"
	"strconv"
)

// Property is a named, typed, defaultable configuration value consumed by
// exactly one factory node. Implementations are immutable once constructed
// and are identified by pointer: the same *Property value must be used to
// declare the property and to read it back.
type Property interface {
	// Name is the JSON key of the property within its factory's
	// configuration node. Unique within the declaring factory.
	Name() string

	// DefaultValue is the statically declared fallback.
	DefaultValue() any

	// Decode extracts and converts the property's value from the owning
	// configuration node. Returns ErrPropertyAbsent when the key is missing
	// and a descriptive error when the value has the wrong shape.
	Decode(node map[string]any) (any, error)

	// Encode converts a resolved value back into a JSON-compatible fragment.
	Encode(value any) any
}

// StringProperty is a Property holding a string value.
type StringProperty struct {
	name string
	def  string
}

// NewStringProperty creates a string property with the given default.
func NewStringProperty(name, def string) *StringProperty {
	return &StringProperty{name: name, def: def}
}

func (p *StringProperty) Name() string      { return p.name }
func (p *StringProperty) DefaultValue() any { return p.def }

func (p *StringProperty) Decode(node map[string]any) (any, error) {
	raw, ok := node[p.name]
	if !ok {
		return nil, ErrPropertyAbsent
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("property %q: expected string, got %T", p.name, raw)
	}
	return s, nil
}

func (p *StringProperty) Encode(value any) any { return value }

// String returns the typed value from a factory, falling back to the default
// on any mismatch.
func (p *StringProperty) String(f *Factory) string {
	if s, ok := f.PropertyValue(p).(string); ok {
		return s
	}
	return p.def
}

// IntProperty is a Property holding an integer value. Decoding is tolerant of
// JSON numbers (float64), integer types, and numeric strings; query-parameter
// overrides arrive as strings.
type IntProperty struct {
	name string
	def  int
}

// NewIntProperty creates an integer property with the given default.
func NewIntProperty(name string, def int) *IntProperty {
	return &IntProperty{name: name, def: def}
}

func (p *IntProperty) Name() string      { return p.name }
func (p *IntProperty) DefaultValue() any { return p.def }

func (p *IntProperty) Decode(node map[string]any) (any, error) {
	raw, ok := node[p.name]
	if !ok {
		return nil, ErrPropertyAbsent
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: cannot parse %q as int", p.name, v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("property %q: expected int, got %T", p.name, raw)
	}
}

func (p *IntProperty) Encode(value any) any { return value }

// Int returns the typed value from a factory, falling back to the default.
func (p *IntProperty) Int(f *Factory) int {
	if n, ok := f.PropertyValue(p).(int); ok {
		return n
	}
	return p.def
}

// FloatProperty is a Property holding a float64 value. Decoding accepts JSON
// numbers, integer types, and numeric strings.
type FloatProperty struct {
	name string
	def  float64
}

// NewFloatProperty creates a float property with the given default.
func NewFloatProperty(name string, def float64) *FloatProperty {
	return &FloatProperty{name: name, def: def}
}

func (p *FloatProperty) Name() string      { return p.name }
func (p *FloatProperty) DefaultValue() any { return p.def }

func (p *FloatProperty) Decode(node map[string]any) (any, error) {
	raw, ok := node[p.name]
	if !ok {
		return nil, ErrPropertyAbsent
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("property %q: cannot parse %q as float", p.name, v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("property %q: expected number, got %T", p.name, raw)
	}
}

func (p *FloatProperty) Encode(value any) any { return value }

// Float returns the typed value from a factory, falling back to the default.
func (p *FloatProperty) Float(f *Factory) float64 {
	if v, ok := f.PropertyValue(p).(float64); ok {
		return v
	}
	return p.def
}

// BoolProperty is a Property holding a boolean value. Decoding accepts JSON
// booleans and the strings "true"/"false".
type BoolProperty struct {
	name string
	def  bool
}

// NewBoolProperty creates a boolean property with the given default.
func NewBoolProperty(name string, def bool) *BoolProperty {
	return &BoolProperty{name: name, def: def}
}

func (p *BoolProperty) Name() string      { return p.name }
func (p *BoolProperty) DefaultValue() any { return p.def }

func (p *BoolProperty) Decode(node map[string]any) (any, error) {
	raw, ok := node[p.name]
	if !ok {
		return nil, ErrPropertyAbsent
	}
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: cannot parse %q as bool", p.name, v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("property %q: expected bool, got %T", p.name, raw)
	}
}

func (p *BoolProperty) Encode(value any) any { return value }

// Bool returns the typed value from a factory, falling back to the default.
func (p *BoolProperty) Bool(f *Factory) bool {
	if b, ok := f.PropertyValue(p).(bool); ok {
		return b
	}
	return p.def
}

// StringListProperty is a Property holding a list of strings.
type StringListProperty struct {
	name string
	def  []string
}

// NewStringListProperty creates a string-list property with the given default.
func NewStringListProperty(name string, def []string) *StringListProperty {
	return &StringListProperty{name: name, def: def}
}

func (p *StringListProperty) Name() string      { return p.name }
func (p *StringListProperty) DefaultValue() any { return p.def }

func (p *StringListProperty) Decode(node map[string]any) (any, error) {
	raw, ok := node[p.name]
	if !ok {
		return nil, ErrPropertyAbsent
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("property %q: list element is %T, not string", p.name, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("property %q: expected string list, got %T", p.name, raw)
	}
}

func (p *StringListProperty) Encode(value any) any { return value }

// Strings returns the typed value from a factory, falling back to the default.
func (p *StringListProperty) Strings(f *Factory) []string {
	if v, ok := f.PropertyValue(p).([]string); ok {
		return v
	}
	return p.def
}

// JSONProperty is a Property holding an arbitrary JSON object subtree.
type JSONProperty struct {
	name string
	def  map[string]any
}

// NewJSONProperty creates a raw-object property with the given default.
func NewJSONProperty(name string, def map[string]any) *JSONProperty {
	return &JSONProperty{name: name, def: def}
}

func (p *JSONProperty) Name() string      { return p.name }
func (p *JSONProperty) DefaultValue() any { return p.def }

func (p *JSONProperty) Decode(node map[string]any) (any, error) {
	raw, ok := node[p.name]
	if !ok {
		return nil, ErrPropertyAbsent
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("property %q: expected object, got %T", p.name, raw)
	}
	return obj, nil
}

func (p *JSONProperty) Encode(value any) any { return value }

// Object returns the typed value from a factory, falling back to the default.
func (p *JSONProperty) Object(f *Factory) map[string]any {
	if v, ok := f.PropertyValue(p).(map[string]any); ok {
		return v
	}
	return p.def
}
