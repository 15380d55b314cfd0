// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package forward

import (
	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/translate/choice"
)

// structural keys live in avro.Complex fields rather than attributes.
var structuralKeys = []string{"type", "name", "namespace", "fields", "items", "values"}

var referenceKeys = []string{"doc", "order", "default"}

func (c *Converter) convertType(orig, n *jschema.Object) (avro.Schema, error) {
	if alts, ok := n.Value("type").([]any); ok {
		return c.convertMultiple(orig, alts)
	}

	switch typ := n.String("type"); typ {
	case "string", "boolean", "null", "bytes":
		return c.build(n, typ), nil
	case "number":
		mode := n.String("mode")
		if mode == "" {
			mode = "int"
		}
		n.Set("type", mode)
		return c.build(n, mode), nil
	case "enum":
		return c.convertEnum(n), nil
	case "fixed":
		return c.convertFixed(n), nil
	case "map":
		return c.convertMap(n)
	case "array":
		return c.convertArray(n)
	case "record":
		return c.convertRecord(n)
	case "":
		return c.build(n, defaultType), nil
	default:
		return c.build(n, typ), nil
	}
}

// build filters the node's attributes for typ and returns the simplest schema
// carrying them.
func (c *Converter) build(n *jschema.Object, typ string) avro.Schema {
	return avro.Simplify(c.complex(n, typ))
}

func (c *Converter) complex(n *jschema.Object, typ string) *avro.Complex {
	n.Set("type", typ)
	var custom []string
	if c.keywords != nil {
		custom = c.keywords(typ, n)
	}
	attrs := avro.FilterAttributes(n, typ, custom)
	return &avro.Complex{
		Type:      typ,
		Name:      attrs.String("name"),
		Namespace: attrs.String("namespace"),
		Attrs:     attrs.Without(structuralKeys...),
	}
}

func (c *Converter) convertMultiple(orig *jschema.Object, alts []any) (avro.Schema, error) {
	var types []avro.Schema
	for _, alt := range alts {
		var node *jschema.Object
		switch a := alt.(type) {
		case string:
			node = orig.Clone()
			node.Set("type", a)
		case *jschema.Object:
			fieldType := a.String("type")
			if fieldType == "" {
				fieldType = typeFromRef(a)
			}
			if fieldType == "" {
				fieldType = defaultType
			}
			node = orig.Merge(a).Without(avro.GeneralAttributes...)
			node.Set("type", fieldType)
		default:
			continue
		}
		converted, err := c.Convert(node)
		if err != nil {
			return nil, err
		}
		types = append(types, converted)
	}

	types = uniqueBy(types, unionKey)
	if len(types) == 1 {
		return types[0], nil
	}
	return avro.Union(types), nil
}

func (c *Converter) convertEnum(n *jschema.Object) avro.Schema {
	if n.String("name") == "" {
		n.Set("name", c.names.Next())
	}
	refAttrs := n.Pick(referenceKeys...)
	if def, ok := n.Get("symbolDefault"); ok {
		n.Set("default", def)
	} else {
		n.Delete("default")
	}
	n.Delete("symbolDefault")
	return c.scope.ResolveOrDefine(c.complex(n, "enum"), refAttrs)
}

func (c *Converter) convertFixed(n *jschema.Object) avro.Schema {
	if n.String("name") == "" {
		n.Set("name", c.names.Next())
	}
	if !n.Has("size") {
		n.Set("size", 16)
	}
	return c.scope.ResolveOrDefine(c.complex(n, "fixed"), n.Pick(referenceKeys...))
}

func (c *Converter) convertMap(n *jschema.Object) (avro.Schema, error) {
	out := c.complex(n, "map")
	out.Values = avro.Primitive(defaultType)
	if values := n.Object("values"); values.Len() > 0 {
		first := values.Object(values.Keys()[0])
		if first == nil {
			first = jschema.NewObject()
		}
		v, err := c.Convert(first)
		if err != nil {
			return nil, err
		}
		out.Values = v
	}
	return out, nil
}

func (c *Converter) convertArray(n *jschema.Object) (avro.Schema, error) {
	out := c.complex(n, "array")
	switch items := n.Value("items").(type) {
	case []any:
		var converted []avro.Schema
		for _, item := range items {
			obj, ok := item.(*jschema.Object)
			if !ok {
				continue
			}
			s, err := c.Convert(obj)
			if err != nil {
				return nil, err
			}
			converted = append(converted, s)
		}
		converted = uniqueBy(converted, itemKey)
		switch len(converted) {
		case 0:
			out.Items = avro.Primitive(defaultType)
		case 1:
			out.Items = converted[0]
		default:
			out.Items = avro.Union(converted)
		}
	case *jschema.Object:
		s, err := c.Convert(items)
		if err != nil {
			return nil, err
		}
		out.Items = s
	default:
		out.Items = avro.Primitive(defaultType)
	}
	return out, nil
}

func (c *Converter) convertRecord(n *jschema.Object) (avro.Schema, error) {
	rec, err := c.record(n)
	if err != nil {
		return nil, err
	}
	return c.scope.ResolveOrDefine(rec, n.Pick(referenceKeys...)), nil
}

func (c *Converter) record(n *jschema.Object) (*avro.Complex, error) {
	if n.String("name") == "" {
		n.Set("name", c.names.Next())
	}
	out := c.complex(n, "record")
	out.Fields = []*avro.Field{}
	for key, v := range n.Object("fields").All() {
		prop, ok := v.(*jschema.Object)
		if !ok {
			continue
		}
		f, err := c.field(key, prop)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, f)
	}
	return out, nil
}

// field converts a record property. Field-level attributes are detached
// before the type is converted and reattached to the field.
func (c *Converter) field(key string, prop *jschema.Object) (*avro.Field, error) {
	def, hasDefault := fieldDefault(prop)
	typ, err := c.Convert(prop.Without("description", "default", "order", "aliases", "nullable"))
	if err != nil {
		return nil, err
	}
	if ref, ok := typ.(avro.Reference); ok && !hasDefault {
		def, hasDefault = c.scope.Default(string(ref))
	}

	if prop.Bool("nullable") {
		typ, def, hasDefault = nullable(typ, def, hasDefault)
	}

	attrs := jschema.NewObject()
	if hasDefault {
		attrs.Set("default", def)
	}
	if doc := prop.String("description"); doc != "" {
		attrs.Set("doc", doc)
	}
	for _, key := range []string{"order", "aliases"} {
		if v, ok := prop.Get(key); ok {
			attrs.Set(key, v)
		}
	}
	return &avro.Field{Name: avro.SanitizeName(key), Type: typ, Attrs: attrs}, nil
}

// fieldDefault returns the property's own default coerced to its first type,
// falling back to the default of a first object alternative.
func fieldDefault(prop *jschema.Object) (any, bool) {
	first := prop.Value("type")
	if alts, ok := first.([]any); ok && len(alts) > 0 {
		first = alts[0]
	}
	if v, ok := prop.Get("default"); ok {
		typ, _ := first.(string)
		if obj, isObj := first.(*jschema.Object); isObj {
			typ = obj.String("type")
		}
		return choice.CoerceDefault(typ, v), true
	}
	return unionDefault(prop)
}

// nullable widens typ with null: first when there is no default or a null
// default, last when a non-null default must stay valid.
func nullable(typ avro.Schema, def any, hasDefault bool) (avro.Schema, any, bool) {
	nonNullDefault := hasDefault && def != nil
	members := avro.Union{typ}
	if u, ok := typ.(avro.Union); ok {
		for _, m := range u {
			if m == avro.Primitive("null") {
				return typ, def, hasDefault
			}
		}
		members = u
	}
	if nonNullDefault {
		return append(members, avro.Primitive("null")), def, true
	}
	return append(avro.Union{avro.Primitive("null")}, members...), nil, true
}

func uniqueBy(types []avro.Schema, key func(avro.Schema) string) []avro.Schema {
	seen := make(map[string]bool, len(types))
	out := make([]avro.Schema, 0, len(types))
	for _, t := range types {
		k := key(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

// unionKey identifies union members: named types by type and name, others by type.
func unionKey(s avro.Schema) string {
	if c, ok := s.(*avro.Complex); ok && avro.IsNamedType(c.Type) {
		return c.Type + ":" + c.Name
	}
	return typeOrJSON(s)
}

// itemKey identifies array items: named types by name, others by type.
func itemKey(s avro.Schema) string {
	if c, ok := s.(*avro.Complex); ok && avro.IsNamedType(c.Type) {
		return "named:" + c.Name
	}
	return typeOrJSON(s)
}

func typeOrJSON(s avro.Schema) string {
	switch v := s.(type) {
	case avro.Primitive:
		return string(v)
	case avro.Reference:
		return string(v)
	case *avro.Complex:
		return v.Type
	}
	text, _ := avro.Marshal(s, "")
	return text
}
