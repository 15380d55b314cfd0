// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package reverse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dacolabs/avrobridge/internal/jschema"
)

func TestAdapt(t *testing.T) {
	in, err := jschema.DecodeObject([]byte(`{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"title": "my-entity",
		"type": "object",
		"properties": {
			"user-id": {"type": "integer"},
			"price": {"type": "number"},
			"nick": {"type": "string"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"owner": {"$ref": "#/definitions/the-owner"}
		},
		"required": ["user-id"]
	}`))
	require.NoError(t, err)

	out := Adapt(in)

	assert.Equal(t, "my_entity", out.String("title"))
	assert.Equal(t, []string{"user_id", "price", "nick", "tags", "owner"}, out.Object("properties").Keys())
	assert.Equal(t, []any{"user_id"}, out.Array("required"))

	userID := prop(out, "user_id")
	assert.Equal(t, "number", userID.String("type"))
	assert.Equal(t, "int", userID.String("mode"))

	price := prop(out, "price")
	assert.Equal(t, []any{"null", "bytes"}, price.Value("type"))
	assert.Equal(t, "decimal", price.String("subtype"))
	assert.True(t, price.Has("default"))

	assert.Equal(t, `{"type":["null","string"],"default":null}`, jschema.MustString(prop(out, "nick")))

	tags := prop(out, "tags")
	assert.Equal(t, "choice", tags.String("type"))
	assert.Equal(t, "tags", tags.String("name"))
	items := tags.Array("items")
	require.Len(t, items, 2)
	arrayAlt := items[1].(*jschema.Object).Object("properties").Object("tags")
	assert.Equal(t, "array", arrayAlt.String("type"))
	assert.True(t, arrayAlt.Has("items"))

	assert.Equal(t, "#/definitions/the_owner", prop(out, "owner").String("$ref"))
	assert.False(t, prop(out, "owner").Has("type"))

	assert.Equal(t, "my-entity", in.String("title"), "input must not be mutated")
}

func TestAdapt_MultipleTypes(t *testing.T) {
	in := jschema.ObjectOf("type", []any{"integer", "int", "string"})
	out := Adapt(in)
	assert.Equal(t, []any{"number", "string"}, out.Value("type"))
	assert.Equal(t, "int", out.String("mode"))

	single := Adapt(jschema.ObjectOf("type", []any{"integer", "int"}))
	assert.Equal(t, "number", single.Value("type"))
}

func TestAdapt_SingleComplexRootPropertyKept(t *testing.T) {
	in := jschema.ObjectOf(
		"$schema", SchemaDraft,
		"type", "object",
		"properties", jschema.ObjectOf("inner", jschema.ObjectOf("type", "object")),
	)
	out := Adapt(in)
	assert.Equal(t, "object", prop(out, "inner").String("type"))
	assert.False(t, out.Has("required"))
}

func TestAdaptName(t *testing.T) {
	assert.Equal(t, "my_entity", AdaptName("my entity"))
	assert.Equal(t, "Order", AdaptName("Order"))
}
