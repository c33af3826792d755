// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package factory

import "testing"

func TestDecodeQueryParams(t *testing.T) {
	doc, err := DecodeQueryParams("renderer.ramp=cool&renderer.coarseness=3&valueTransform.type=linear")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	renderer, ok := doc["renderer"].(map[string]any)
	if !ok {
		t.Fatalf("renderer should nest, got %T", doc["renderer"])
	}
	if renderer["ramp"] != "cool" {
		t.Errorf("ramp = %v, want cool", renderer["ramp"])
	}
	if renderer["coarseness"] != "3" {
		t.Errorf("coarseness = %v, want string \"3\"", renderer["coarseness"])
	}
	vt, ok := doc["valueTransform"].(map[string]any)
	if !ok || vt["type"] != "linear" {
		t.Errorf("valueTransform.type = %v, want linear", doc["valueTransform"])
	}
}

func TestDecodeQueryParamsPercentEncoded(t *testing.T) {
	doc, err := DecodeQueryParams("renderer.ramp=cool%20blue&data.id=tweets+2026&renderer.label=a%2Bb")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	renderer, _ := doc["renderer"].(map[string]any)
	if renderer["ramp"] != "cool blue" {
		t.Errorf("ramp = %v, want \"cool blue\"", renderer["ramp"])
	}
	if renderer["label"] != "a+b" {
		t.Errorf("label = %v, want \"a+b\"", renderer["label"])
	}
	data, _ := doc["data"].(map[string]any)
	if data["id"] != "tweets 2026" {
		t.Errorf("id = %v, want \"tweets 2026\"", data["id"])
	}
}

func TestDecodeQueryParamsEmpty(t *testing.T) {
	doc, err := DecodeQueryParams("")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("empty query should decode to empty document, got %v", doc)
	}
}

func TestDecodeQueryParamsMalformed(t *testing.T) {
	if _, err := DecodeQueryParams("novalue"); err == nil {
		t.Error("pair without '=' should error")
	}
	if _, err := DecodeQueryParams("=cool"); err == nil {
		t.Error("pair without key should error")
	}
	if _, err := DecodeQueryParams("renderer.ramp=cool%zz"); err == nil {
		t.Error("invalid percent escape should error")
	}
}

func TestMergeOverride(t *testing.T) {
	base := map[string]any{
		"id": "test-layer0",
		"renderer": map[string]any{
			"ramp":       "hot",
			"coarseness": 1.0,
		},
	}
	override := map[string]any{
		"renderer": map[string]any{
			"ramp": "cool",
		},
	}

	merged := MergeOverride(base, override)

	renderer := merged["renderer"].(map[string]any)
	if renderer["ramp"] != "cool" {
		t.Errorf("override must win: ramp = %v", renderer["ramp"])
	}
	if renderer["coarseness"] != 1.0 {
		t.Errorf("unoverridden key must survive: coarseness = %v", renderer["coarseness"])
	}
	if merged["id"] != "test-layer0" {
		t.Errorf("untouched top-level key must survive: id = %v", merged["id"])
	}

	// The merge must not alias or mutate its inputs.
	renderer["ramp"] = "mutated"
	if base["renderer"].(map[string]any)["ramp"] != "hot" {
		t.Error("merge result aliases base document")
	}
	if override["renderer"].(map[string]any)["ramp"] != "cool" {
		t.Error("merge result aliases override document")
	}
}

func TestMergeOverrideReplacesNonObjects(t *testing.T) {
	base := map[string]any{"tags": []any{"a", "b"}, "renderer": map[string]any{"ramp": "hot"}}
	override := map[string]any{"tags": []any{"c"}, "renderer": "flattened"}

	merged := MergeOverride(base, override)
	tags := merged["tags"].([]any)
	if len(tags) != 1 || tags[0] != "c" {
		t.Errorf("lists replace wholesale, got %v", tags)
	}
	if merged["renderer"] != "flattened" {
		t.Errorf("non-object override replaces object, got %v", merged["renderer"])
	}
}
