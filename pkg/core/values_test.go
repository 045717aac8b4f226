package core

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	id := uuid.MustParse("0b3c4a6e-8f1d-4c55-9a4e-2f7d5f0a1b2c")

	tests := []struct {
		name string
		kind Kind
		raw  any
		want any
	}{
		{"string passthrough", KindString, "Cube", "Cube"},
		{"number as string", KindString, json.Number("42"), "42"},
		{"uint from json number", KindUint, json.Number("12"), uint64(12)},
		{"uint from integral float", KindUint, 12.0, uint64(12)},
		{"uint from yaml int", KindUint, 7, uint64(7)},
		{"uint from string", KindUint, " 9 ", uint64(9)},
		{"bool", KindBool, true, true},
		{"bool from string", KindBool, "Yes", true},
		{"bool from number", KindBool, json.Number("0"), false},
		{"vec3 from slice", KindVec3, []any{json.Number("1"), 2.5, -3}, Vec3{1, 2.5, -3}},
		{"vec3 from object", KindVec3, map[string]any{"x": 1, "y": 2, "z": 3}, Vec3{1, 2, 3}},
		{"vec3 from json string", KindVec3, "[0.5,1,2]", Vec3{0.5, 1, 2}},
		{"list from array", KindStringList, []any{"a", "b"}, []string{"a", "b"}},
		{"list from comma string", KindStringList, "a, b ,, c", []string{"a", "b", "c"}},
		{"list from json string", KindStringList, `["x,y","z"]`, []string{"x,y", "z"}},
		{"format case-insensitive", KindFormat, "GLB", FormatGLB},
		{"format with dot", KindFormat, ".obj", FormatOBJ},
		{"access level", KindAccessLevel, "Approval Required", AccessApprovalRequired},
		{"uuid", KindUUID, id.String(), id},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Coerce(tc.kind, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCoerce_Failures(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		raw  any
	}{
		{"negative uint", KindUint, -1},
		{"fractional uint", KindUint, 1.5},
		{"word as uint", KindUint, "many"},
		{"bool from word", KindBool, "maybe"},
		{"bool from two", KindBool, 2},
		{"short vec3", KindVec3, []any{1, 2}},
		{"vec3 with text", KindVec3, []any{1, "two", 3}},
		{"list with object", KindStringList, []any{map[string]any{"a": 1}}},
		{"string from object", KindString, map[string]any{}},
		{"unknown format", KindFormat, "max"},
		{"unknown access level", KindAccessLevel, "secret"},
		{"bad uuid", KindUUID, "not-a-uuid"},
		{"uuid from number", KindUUID, 12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Coerce(tc.kind, tc.raw)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	in := map[string]any{
		"int":    3,
		"float":  1.5,
		"whole":  2.0,
		"number": json.Number("4.50"),
		"list":   []string{"a"},
		"nested": map[any]any{"k": uint8(1)},
		"nil":    nil,
	}

	got := NormalizeValue(in)

	assert.Equal(t, map[string]any{
		"int":    json.Number("3"),
		"float":  json.Number("1.5"),
		"whole":  json.Number("2"),
		"number": json.Number("4.5"),
		"list":   []any{"a"},
		"nested": map[string]any{"k": json.Number("1")},
		"nil":    nil,
	}, got)

	// Normalizing twice is a no-op.
	assert.Equal(t, got, NormalizeValue(got))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,b,"))
	assert.Nil(t, SplitList("  "))
}
