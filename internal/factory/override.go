// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package factory

import (
	"fmt"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/sjson"
)

// DecodeQueryParams converts query-style override parameters into a nested
// JSON document. Dotted keys nest:
//
//	"renderer.ramp=cool&renderer.coarseness=3"
//
// becomes {"renderer": {"ramp": "cool", "coarseness": "3"}}. Keys and values
// are percent-decoded ("+" reads as a space). Values stay strings; property
// decoding is tolerant of numeric strings, so overrides round-trip through
// the same codecs as file-supplied configuration.
func DecodeQueryParams(query string) (map[string]any, error) {
	doc := []byte("{}")
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, found := strings.Cut(pair, "=")
		if !found || rawKey == "" {
			return nil, fmt.Errorf("malformed override parameter %q", pair)
		}
		key, err := url.QueryUnescape(rawKey)
		if err != nil || key == "" {
			return nil, fmt.Errorf("malformed override parameter %q", pair)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("malformed override parameter %q", pair)
		}
		doc, err = sjson.SetBytes(doc, key, value)
		if err != nil {
			return nil, fmt.Errorf("setting override %q: %w", key, err)
		}
	}
	var out map[string]any
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("decoding override document: %w", err)
	}
	return out, nil
}

// MergeOverride deep-merges override into base and returns a fresh document;
// neither input is modified and no maps are shared with the result. Object
// values merge recursively, everything else in override replaces the base
// value.
func MergeOverride(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		merged[k] = copyValue(v)
	}
	for k, v := range override {
		baseObj, baseOK := merged[k].(map[string]any)
		overObj, overOK := v.(map[string]any)
		if baseOK && overOK {
			merged[k] = MergeOverride(baseObj, overObj)
			continue
		}
		merged[k] = copyValue(v)
	}
	return merged
}

func copyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
