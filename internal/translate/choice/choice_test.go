// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package choice

import (
	"encoding/json"
	"testing"

	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func object(t *testing.T, doc string) *jschema.Object {
	t.Helper()
	obj, err := jschema.DecodeObject([]byte(doc))
	require.NoError(t, err)
	return obj
}

func TestFlatten_MergesPropertiesByName(t *testing.T) {
	in := object(t, `{"oneOf":[{"properties":{"a":{"type":"string"}}},{"properties":{"a":{"type":"number"}}}]}`)

	out, err := Flatten(in)
	require.NoError(t, err)

	assert.False(t, out.Has("oneOf"))
	props := out.Object("properties")
	require.Equal(t, []string{"a"}, props.Keys())
	assert.Equal(t, []any{"string", "number"}, props.Object("a").Value("type"))
	assert.True(t, in.Has("oneOf"), "input must not be mutated")
}

func TestFlatten_DedupesByType(t *testing.T) {
	in := object(t, `{"anyOf":[{"properties":{"a":{"type":"string"}}},{"properties":{"a":{"type":"string"}}}]}`)

	out, err := Flatten(in)
	require.NoError(t, err)
	assert.Equal(t, "string", out.Object("properties").Object("a").Value("type"))
}

func TestFlatten_ArrayConcatenatesItems(t *testing.T) {
	in := object(t, `{"type":"array","items":[{"type":"string"},{}],"oneOf":[{"type":"array","items":[{"type":"boolean"}]}]}`)

	out, err := Flatten(in)
	require.NoError(t, err)

	items := out.Array("items")
	require.Len(t, items, 2)
	assert.Equal(t, "string", items[0].(*jschema.Object).String("type"))
	assert.Equal(t, "boolean", items[1].(*jschema.Object).String("type"))
}

func TestFlatten_MetaNamesAndCoercesDefault(t *testing.T) {
	in := object(t, `{
		"oneOf": [{"properties":{"x":{"type":"null"}}},{"properties":{"y":{"type":"string"}}}],
		"oneOf_meta": {"code":"choice 1","default":"null"}
	}`)

	out, err := Flatten(in)
	require.NoError(t, err)

	prop := out.Object("properties").Object("choice 1")
	require.NotNil(t, prop)
	assert.Equal(t, "choice_1", prop.String("name"))
	def, ok := prop.Get("default")
	assert.True(t, ok)
	assert.Nil(t, def)
	assert.Equal(t, []any{"null", "string"}, prop.Value("type"))
	assert.Equal(t, "choice 1", prop.Object("choiceMeta").String("code"))
}

func TestFlatten_OrdersByIndex(t *testing.T) {
	in := object(t, `{
		"properties": {"b":{"type":"string"},"c":{"type":"boolean"}},
		"oneOf": [{"properties":{"a":{"type":"string"}}},{"properties":{"a":{"type":"boolean"}}}],
		"oneOf_meta": {"name":"a","index":1}
	}`)

	out, err := Flatten(in)
	require.NoError(t, err)

	props := out.Object("properties")
	assert.Equal(t, []string{"b", "a", "c"}, props.Keys())
	assert.Equal(t, json.Number("1"), props.Object("a").Object("choiceMeta").Value("index"))
	assert.Equal(t, 1, props.Object("c").Object("choiceMeta").Value("index"))
}

func TestFlatten_MissingIndex(t *testing.T) {
	in := object(t, `{
		"properties": {"b":{"type":"string"}},
		"oneOf": [{"properties":{"a":{"type":"string"}}}],
		"oneOf_meta": {"name":"a"}
	}`)

	_, err := Flatten(in)
	assert.ErrorIs(t, err, ErrMissingChoiceIndex)
}

func TestFlatten_MergedChoice(t *testing.T) {
	in := object(t, `{
		"allOf": [
			{"GUID":"g1","oneOf":[{"properties":{"p":{"type":"string"}}},{"properties":{"p":{"type":"boolean"}}}]},
			{"GUID":"g2","properties":{"q":{"type":"string"}}}
		],
		"allOf_meta": [
			{"ids":["g1"],"choice":"oneOf","name":"p","index":0},
			{"ids":["g2"],"choice":"allOf","name":"q","index":1}
		]
	}`)

	out, err := Flatten(in)
	require.NoError(t, err)

	for _, kw := range Keywords {
		assert.False(t, out.Has(kw))
		assert.False(t, out.Has(MetaKeyword(kw)))
	}
	props := out.Object("properties")
	assert.Equal(t, []string{"p", "q"}, props.Keys())
	assert.Equal(t, []any{"string", "boolean"}, props.Object("p").Value("type"))
	assert.Equal(t, "string", props.Object("q").Value("type"))
}

func TestFlatten_MalformedMergedChoice(t *testing.T) {
	tests := map[string]string{
		"entry not an object": `{"allOf":[{"GUID":"g1"}],"allOf_meta":["x"]}`,
		"missing ids":         `{"allOf":[{"GUID":"g1"}],"allOf_meta":[{"choice":"oneOf"}]}`,
		"no matching item":    `{"allOf":[{"GUID":"g1"}],"allOf_meta":[{"ids":["g9"],"choice":"oneOf"}]}`,
		"item lacks choice":   `{"allOf":[{"GUID":"g1"}],"allOf_meta":[{"ids":["g1"],"choice":"anyOf"}]}`,
		"unknown choice":      `{"allOf":[{"GUID":"g1"}],"allOf_meta":[{"ids":["g1"],"choice":"someOf"}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Flatten(object(t, doc))
			assert.ErrorIs(t, err, ErrMalformedMergedChoice)
		})
	}
}

func TestFlatten_ChoiceProperty(t *testing.T) {
	in := object(t, `{
		"type": "record",
		"properties": {
			"v": {
				"type": "choice",
				"choice": "oneOf",
				"description": "either",
				"items": [
					{"type":"record","subschema":true,"properties":{"v":{"type":"string"}}},
					{"type":"record","subschema":true,"properties":{"v":{"$ref":"#/definitions/Addr","name":"Addr"}}}
				]
			}
		}
	}`)

	out, err := Flatten(in)
	require.NoError(t, err)

	v := out.Object("properties").Object("v")
	assert.Equal(t, "either", v.String("description"))
	assert.False(t, v.Has("choice"))
	assert.False(t, v.Has("items"))
	types := v.Array("type")
	require.Len(t, types, 2)
	assert.Equal(t, "string", types[0])
	assert.Equal(t, "#/definitions/Addr", types[1].(*jschema.Object).String("$ref"))
}

func TestFlatten_SingleChoiceAlternativeCollapses(t *testing.T) {
	in := object(t, `{"properties":{"v":{"type":"choice","choice":"oneOf","items":[{"properties":{"v":{"type":"enum","name":"E","symbols":["A"]}}}]}}}`)

	out, err := Flatten(in)
	require.NoError(t, err)

	v := out.Object("properties").Object("v")
	assert.Equal(t, "enum", v.String("type"))
	assert.Equal(t, []any{"A"}, v.Value("symbols"))
}

func TestCoerceDefault(t *testing.T) {
	assert.Nil(t, CoerceDefault("null", "null"))
	assert.Equal(t, "null", CoerceDefault("string", "null"))
	assert.Equal(t, json.Number("12.5"), CoerceDefault("number", "12.50"))
	assert.Equal(t, "abc", CoerceDefault("number", "abc"))
	assert.Equal(t, "", CoerceDefault("number", ""))
	assert.Equal(t, json.Number("3"), CoerceDefault("number", json.Number("3")))
	assert.Equal(t, json.Number("1000"), CoerceDefault("number", "1e3"))
	assert.Equal(t, json.Number("12345678901234567890"), CoerceDefault("number", "12345678901234567890"))
	assert.Equal(t, json.Number("-7"), CoerceDefault("number", " -7 "))
	for _, s := range []string{"NaN", "Inf", "-Infinity", "0x10", "01", "1."} {
		assert.Equal(t, s, CoerceDefault("number", s), s)
	}
}

func TestFlatten_ChoicePropertyOfArrayExtendsItems(t *testing.T) {
	in := object(t, `{
		"type": "array",
		"items": [{"type":"string"}],
		"properties": {
			"New_field": {
				"type": "choice",
				"choice": "oneOf",
				"items": [
					{"type":"record","subschema":true,"properties":{"New_field":{"type":"map","properties":{"schema":{"type":"string"}}}}},
					{"type":"record","subschema":true,"properties":{"New_field":{"type":"string"}}}
				]
			}
		}
	}`)

	out, err := Flatten(in)
	require.NoError(t, err)

	assert.False(t, out.Has("properties"))
	items := out.Array("items")
	require.Len(t, items, 2)
	assert.Equal(t, "string", items[0].(*jschema.Object).String("type"))
	assert.Equal(t, "map", items[1].(*jschema.Object).String("type"))
}
