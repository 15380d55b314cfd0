// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import "iter"

// PropertiesLike lists keywords whose value maps names to subschemas.
var PropertiesLike = []string{"properties", "definitions", "patternProperties"}

// ItemsLike lists keywords whose value is a subschema or a list of subschemas.
var ItemsLike = []string{"items", "oneOf", "allOf", "anyOf", "not"}

// Traverse returns an iterator over all schemas in the tree, parents first.
// It handles cycles by tracking visited schemas.
func Traverse(schema *Object) iter.Seq[*Object] {
	return func(yield func(*Object) bool) {
		visited := make(map[*Object]struct{})
		traverseWithVisited(schema, yield, visited)
	}
}

func traverseWithVisited(schema *Object, yield func(*Object) bool, visited map[*Object]struct{}) bool {
	if schema == nil {
		return true
	}
	if _, ok := visited[schema]; ok {
		return true
	}
	visited[schema] = struct{}{}

	if !yield(schema) {
		return false
	}

	for _, key := range PropertiesLike {
		for _, v := range schema.Object(key).All() {
			if s, ok := v.(*Object); ok && !traverseWithVisited(s, yield, visited) {
				return false
			}
		}
	}
	for _, key := range ItemsLike {
		switch v := schema.Value(key).(type) {
		case *Object:
			if !traverseWithVisited(v, yield, visited) {
				return false
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(*Object); ok && !traverseWithVisited(s, yield, visited) {
					return false
				}
			}
		}
	}
	return true
}

// Map rebuilds the schema tree bottom-up: children are mapped first, then fn
// receives a copy of the node holding the mapped children.
func Map(schema *Object, fn func(*Object) *Object) *Object {
	if schema == nil {
		return nil
	}
	node := schema.Clone()
	for _, key := range PropertiesLike {
		props := node.Object(key)
		if props.Len() == 0 {
			continue
		}
		mapped := NewObject()
		for name, v := range props.All() {
			if s, ok := v.(*Object); ok {
				mapped.Set(name, Map(s, fn))
			} else {
				mapped.Set(name, v)
			}
		}
		node.Set(key, mapped)
	}
	for _, key := range ItemsLike {
		switch v := node.Value(key).(type) {
		case *Object:
			node.Set(key, Map(v, fn))
		case []any:
			items := make([]any, len(v))
			for i, item := range v {
				if s, ok := item.(*Object); ok {
					items[i] = Map(s, fn)
				} else {
					items[i] = item
				}
			}
			node.Set(key, items)
		}
	}
	return fn(node)
}
