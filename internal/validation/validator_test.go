// Tessera - Geospatial Tile Visualization Platform
// Copyright 2026 Tessera Contributors
// SPDX-License-Identifier: MIT
// https://github.com/tessera-viz/tessera

package validation

import (
	"strings"
	"testing"
)

type sample struct {
	Level string `validate:"oneof=debug info warn error"`
	Port  int    `validate:"gte=1,lte=65535"`
	Name  string `validate:"required"`
}

func TestValidateStructPasses(t *testing.T) {
	if err := ValidateStruct(&sample{Level: "info", Port: 8080, Name: "tiles"}); err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
}

func TestValidateStructCollectsFields(t *testing.T) {
	err := ValidateStruct(&sample{Level: "verbose", Port: 0, Name: ""})
	if err == nil {
		t.Fatal("invalid struct accepted")
	}
	if len(err.Fields) != 3 {
		t.Fatalf("got %d field errors, want 3", len(err.Fields))
	}
	if !strings.Contains(err.Error(), "Level must be one of") {
		t.Errorf("missing oneof translation in %q", err.Error())
	}
	if !strings.Contains(err.Error(), "Name is required") {
		t.Errorf("missing required translation in %q", err.Error())
	}
}

func TestToAPIErrorSingleField(t *testing.T) {
	err := ValidateStruct(&sample{Level: "info", Port: 8080, Name: ""})
	if err == nil {
		t.Fatal("invalid struct accepted")
	}
	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "Name" {
		t.Errorf("field detail = %v, want Name", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	err := ValidateStruct(&sample{Level: "verbose", Port: 70000, Name: ""})
	if err == nil {
		t.Fatal("invalid struct accepted")
	}
	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]any)
	if !ok {
		t.Fatalf("fields detail has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("got %d field details, want 3", len(fields))
	}
}
