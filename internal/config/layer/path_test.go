package layer

import (
	"reflect"
	"testing"
)

func TestMerge(t *testing.T) {
	dst := map[string]any{
		"a": 1,
		"t": map[string]any{"x": 1, "y": 2},
		"l": []any{1, 2},
	}
	src := map[string]any{
		"b": 2,
		"t": map[string]any{"y": 3, "z": map[string]any{"k": "v"}},
		"l": []any{3},
		"n": nil,
	}
	got := Merge(dst, src)
	want := map[string]any{
		"a": 1,
		"b": 2,
		"t": map[string]any{"x": 1, "y": 3, "z": map[string]any{"k": "v"}},
		"l": []any{3},
		"n": nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %v, want %v", got, want)
	}

	// src is not aliased by the result.
	src["t"].(map[string]any)["z"].(map[string]any)["k"] = "changed"
	if got["t"].(map[string]any)["z"].(map[string]any)["k"] != "v" {
		t.Error("Merge() result shares maps with src")
	}
}

func TestMergeDeleting(t *testing.T) {
	dst := map[string]any{
		"m": map[string]any{"x": "keep", "y": "drop"},
		"g": "drop",
	}
	src := map[string]any{
		"m": map[string]any{"y": nil},
		"g": nil,
		"n": map[string]any{"a": nil, "b": 1},
	}
	got := MergeDeleting(dst, src)
	want := map[string]any{
		"m": map[string]any{"x": "keep"},
		"n": map[string]any{"b": 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeDeleting() = %v, want %v", got, want)
	}
}

func TestLookup(t *testing.T) {
	data := map[string]any{
		"whichkey": map[string]any{
			"bindings": []any{"a"},
			"delay":    0,
		},
		"scalar": 1,
	}
	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"whichkey.bindings", []any{"a"}, true},
		{"whichkey.delay", 0, true},
		{"whichkey.missing", nil, false},
		{"scalar.below", nil, false},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		got, ok := Lookup(data, tt.path)
		if ok != tt.wantOK || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Lookup(%q) = %v, %v, want %v, %v", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
	if _, ok := Lookup(nil, "a"); ok {
		t.Error("Lookup(nil) found a value")
	}
}

func TestAssign(t *testing.T) {
	data := map[string]any{"whichkey": "not a table"}
	Assign(data, "whichkey.sortOrder", "custom")
	Assign(data, "other", 1)
	want := map[string]any{
		"whichkey": map[string]any{"sortOrder": "custom"},
		"other":    1,
	}
	if !reflect.DeepEqual(data, want) {
		t.Errorf("Assign() = %v, want %v", data, want)
	}
}
