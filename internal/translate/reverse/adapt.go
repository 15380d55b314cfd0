// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package reverse

import (
	"slices"
	"strings"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
)

var complexKeywords = []string{"patternProperties", "properties", "items", "allOf", "oneOf", "anyOf", "not"}

// Adapt rewrites a standard JSON Schema into a modeling schema that converts
// cleanly to Avro: names become valid Avro names, integer and number types get
// Avro modes, and optional properties without a default become nullable.
func Adapt(schema *jschema.Object) *jschema.Object {
	return jschema.Map(schema, func(node *jschema.Object) *jschema.Object {
		node = adaptNames(node)
		node = adaptType(node)
		node = nullDefaultForMultiple(node)
		return optionalProperties(node)
	})
}

// AdaptName turns an entity name into a valid Avro name.
func AdaptName(name string) string {
	return avro.SanitizeName(name)
}

func adaptNames(node *jschema.Object) *jschema.Object {
	if title := node.String("title"); title != "" {
		node.Set("title", AdaptName(title))
	}
	if req := node.Array("required"); req != nil {
		names := make([]any, len(req))
		for i, r := range req {
			if s, ok := r.(string); ok {
				names[i] = AdaptName(s)
			} else {
				names[i] = r
			}
		}
		node.Set("required", names)
	}
	for _, key := range jschema.PropertiesLike {
		props := node.Object(key)
		if props.Len() == 0 {
			continue
		}
		renamed := jschema.NewObject()
		for name, v := range props.All() {
			renamed.Set(AdaptName(name), v)
		}
		node.Set(key, renamed)
	}
	if ref := node.String("$ref"); ref != "" {
		i := strings.LastIndex(ref, "/")
		node.Set("$ref", ref[:i+1]+AdaptName(ref[i+1:]))
	}
	return node
}

func adaptType(node *jschema.Object) *jschema.Object {
	switch typ := node.Value("type").(type) {
	case []any:
		return adaptMultiple(node, typ)
	case string:
		switch typ {
		case "number":
			if node.Has("mode") || node.Has("logicalType") {
				return node
			}
			node.Set("type", "bytes")
			node.Set("subtype", "decimal")
		case "integer", "int":
			node.Set("type", "number")
			node.Set("mode", "int")
		}
	}
	return node
}

func adaptMultiple(node *jschema.Object, types []any) *jschema.Object {
	data := node
	adapted := make([]any, 0, len(types))
	for _, t := range types {
		next := data.Clone()
		next.Set("type", t)
		data = adaptType(next)
		if !slices.Contains(adapted, data.Value("type")) {
			adapted = append(adapted, data.Value("type"))
		}
	}
	if len(adapted) == 1 {
		return data
	}
	data.Set("type", adapted)
	return data
}

func nullDefaultForMultiple(node *jschema.Object) *jschema.Object {
	if types := node.Array("type"); len(types) > 0 && types[0] == "null" {
		node.Set("default", nil)
	}
	return node
}

// optionalProperties makes every optional property without a default
// nullable. Properties that may hold a complex type become choices.
func optionalProperties(node *jschema.Object) *jschema.Object {
	props := node.Object("properties")
	if props == nil {
		return node
	}
	if node.Has("$schema") && node.String("type") == "object" && props.Len() == 1 {
		if only, ok := props.Value(props.Keys()[0]).(*jschema.Object); ok && isComplexType(only.Value("type")) {
			return node
		}
	}

	required := node.Array("required")
	if required == nil {
		required = []any{}
	}
	out := jschema.NewObject()
	for key, v := range props.All() {
		p, ok := v.(*jschema.Object)
		if !ok || slices.Contains(required, any(key)) {
			out.Set(key, v)
			continue
		}
		prop, changed := withNullDefault(p)
		if !changed {
			out.Set(key, p)
			continue
		}
		types := prop.Array("type")
		if !slices.ContainsFunc(types, isComplexType) {
			out.Set(key, prop)
			continue
		}
		out.Set(key, choiceOf(key, prop, types))
	}
	node.Set("properties", out)
	node.Set("required", required)
	return node
}

func withNullDefault(p *jschema.Object) (*jschema.Object, bool) {
	if def, ok := p.Get("default"); ok && def != "" {
		return p, false
	}
	var types []any
	switch t := p.Value("type").(type) {
	case string:
		types = []any{t}
	case []any:
		types = t
	default:
		return p, false
	}
	if len(types) > 0 && types[0] == "null" {
		return p, false
	}
	nullable := []any{"null"}
	for _, t := range types {
		if !slices.Contains(nullable, t) {
			nullable = append(nullable, t)
		}
	}
	out := p.Clone()
	out.Set("default", nil)
	out.Set("type", nullable)
	return out, true
}

func choiceOf(name string, prop *jschema.Object, types []any) *jschema.Object {
	keyword := "properties"
	if slices.Contains(types, any("array")) {
		keyword = "items"
	}
	subschemas := make([]any, len(types))
	for i, t := range types {
		var data *jschema.Object
		switch {
		case t == "array":
			data = prop.Without("patternProperties", "properties")
		case isComplexType(t):
			data = prop.Without("items")
		default:
			data = prop.Without(complexKeywords...)
		}
		data.Set("type", t)
		subschemas[i] = jschema.ObjectOf(
			"type", "subschema",
			"subschema", true,
			"properties", jschema.ObjectOf(name, data),
		)
	}

	out := prop.Without(append(slices.Clone(complexKeywords), "type")...)
	out.Set("name", name)
	out.Set("type", "choice")
	out.Set("choice", "oneOf")
	out.Set(keyword, subschemas)
	return out
}

func isComplexType(t any) bool {
	s, ok := t.(string)
	return ok && (s == "object" || s == "record" || s == "array" || s == "map")
}
