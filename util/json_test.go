// util/json_test.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"strings"
	"testing"
)

func TestFindDuplicateJSONKeys(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected []DuplicateJSONKey
	}{
		{
			name:     "no duplicates",
			json:     `{"a": 1, "b": 2, "c": 3}`,
			expected: nil,
		},
		{
			name: "simple duplicate at root",
			json: `{"a": 1, "b": 2, "a": 3}`,
			expected: []DuplicateJSONKey{
				{Path: "", Key: "a"},
			},
		},
		{
			name: "duplicate in nested object",
			json: `{"outer": {"inner": 1, "inner": 2}}`,
			expected: []DuplicateJSONKey{
				{Path: "outer", Key: "inner"},
			},
		},
		{
			name: "multiple duplicates at different levels",
			json: `{"a": 1, "a": 2, "nested": {"b": 1, "b": 2}}`,
			expected: []DuplicateJSONKey{
				{Path: "", Key: "a"},
				{Path: "nested", Key: "b"},
			},
		},
		{
			name:     "array with objects no duplicates",
			json:     `{"items": [{"x": 1}, {"x": 2}]}`,
			expected: nil,
		},
		{
			name: "duplicate inside array element",
			json: `{"items": [{"x": 1, "x": 2}]}`,
			expected: []DuplicateJSONKey{
				{Path: "items", Key: "x"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindDuplicateJSONKeys([]byte(tt.json))

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d duplicates, got %d", len(tt.expected), len(result))
				return
			}

			for i, exp := range tt.expected {
				if result[i].Path != exp.Path || result[i].Key != exp.Key {
					t.Errorf("duplicate %d: expected {Path: %q, Key: %q}, got {Path: %q, Key: %q}",
						i, exp.Path, exp.Key, result[i].Path, result[i].Key)
				}
			}
		})
	}
}

func TestUnmarshalJSONBytesErrors(t *testing.T) {
	type simple struct {
		Speed int `json:"speed"`
	}

	var s simple
	if err := UnmarshalJSONBytes([]byte("{\n  \"speed\": 12\n}"), &s); err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if s.Speed != 12 {
		t.Errorf("speed = %d, expected 12", s.Speed)
	}

	err := UnmarshalJSONBytes([]byte("{\n  \"speed\": \"fast\"\n}"), &s)
	if err == nil {
		t.Errorf("no error for type mismatch")
	} else if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error does not locate line 2: %v", err)
	}

	if err := UnmarshalJSONBytes([]byte("{\n  broken\n}"), &s); err == nil {
		t.Errorf("no error for malformed JSON")
	}
}

func TestCheckJSON(t *testing.T) {
	type inner struct {
		Radius int `json:"radius"`
	}
	type config struct {
		Name  string                `json:"name"`
		Pads  []inner               `json:"pads"`
		Tags  map[string]int        `json:"tags"`
		Kinds SingleOrArray[string] `json:"kinds"`
	}

	for _, tt := range []struct {
		name string
		json string
		ok   bool
	}{
		{name: "valid", json: `{"name": "x", "pads": [{"radius": 3}], "tags": {"a": 1}, "kinds": "Clear"}`, ok: true},
		{name: "kinds as array", json: `{"kinds": ["Clear", "Road"]}`, ok: true},
		{name: "misspelled key", json: `{"nmae": "x"}`, ok: false},
		{name: "wrong nesting", json: `{"pads": {"radius": 3}}`, ok: false},
		{name: "kinds as object", json: `{"kinds": {"a": 1}}`, ok: false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var e ErrorLogger
			CheckJSON[config]([]byte(tt.json), &e)
			if tt.ok && e.HaveErrors() {
				t.Errorf("unexpected errors: %s", e.String())
			} else if !tt.ok && !e.HaveErrors() {
				t.Errorf("expected validation errors, got none")
			}
		})
	}
}

func TestSingleOrArray(t *testing.T) {
	var s SingleOrArray[string]
	if err := s.UnmarshalJSON([]byte(`"Clear"`)); err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if len(s) != 1 || s[0] != "Clear" {
		t.Errorf("got %v for single value", s)
	}

	if err := s.UnmarshalJSON([]byte(`["Clear", "Road"]`)); err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if len(s) != 2 || s[0] != "Clear" || s[1] != "Road" {
		t.Errorf("got %v for array value", s)
	}

	if err := s.UnmarshalJSON([]byte(`null`)); err != nil {
		t.Errorf("unexpected error: %v", err)
	} else if s != nil {
		t.Errorf("got %v for null", s)
	}
}
