// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraverse_VisitsAllSubschemas(t *testing.T) {
	schema := ObjectOf(
		"type", "record",
		"properties", ObjectOf(
			"a", ObjectOf("type", "string"),
			"b", ObjectOf("type", "array", "items", ObjectOf("type", "int")),
		),
		"oneOf", []any{ObjectOf("type", "null")},
		"definitions", ObjectOf("D", ObjectOf("type", "enum")),
	)

	var types []string //nolint:prealloc
	for s := range Traverse(schema) {
		types = append(types, s.String("type"))
	}

	assert.Equal(t, []string{"record", "string", "array", "int", "enum", "null"}, types)
}

func TestTraverse_EarlyStop(t *testing.T) {
	schema := ObjectOf("properties", ObjectOf("a", NewObject(), "b", NewObject()))

	count := 0
	for range Traverse(schema) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestTraverse_Cycle(t *testing.T) {
	schema := NewObject()
	schema.Set("properties", ObjectOf("self", schema))

	count := 0
	for range Traverse(schema) {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestTraverse_Nil(t *testing.T) {
	count := 0
	for range Traverse(nil) {
		count++
	}
	assert.Equal(t, 0, count)
}

func TestMap_BottomUp(t *testing.T) {
	schema := ObjectOf(
		"properties", ObjectOf(
			"a", ObjectOf("type", "string"),
			"b", ObjectOf("items", []any{ObjectOf("type", "int")}),
		),
	)

	var order []string
	out := Map(schema, func(node *Object) *Object {
		order = append(order, node.String("type"))
		node.Set("seen", true)
		return node
	})

	assert.Equal(t, []string{"string", "int", "", ""}, order)
	assert.True(t, out.Bool("seen"))
	assert.True(t, out.Object("properties").Object("b").Array("items")[0].(*Object).Bool("seen"))
	assert.False(t, schema.Has("seen"), "input must not be mutated")
}
