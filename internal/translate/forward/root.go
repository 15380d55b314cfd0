// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package forward

import (
	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
)

// Definition is a converted entry of a definitions document.
type Definition struct {
	Name        string
	Schema      avro.Schema
	CustomProps *jschema.Object
}

// Root converts an entity schema into a record named name and expands the
// user-defined types it uses. A schema that is only a choice between
// references renders as a union of qualified names.
func (c *Converter) Root(schema *jschema.Object, name string) (avro.Schema, error) {
	if refs, ok := bareUnion(schema); ok {
		return c.bareUnionRefs(refs), nil
	}

	n, err := c.prepare(schema)
	if err != nil {
		return nil, err
	}
	n.Set("type", "record")
	convertDoc(n)
	convertLogicalType(n)
	handleRequired(n)
	convertProperties(n)
	convertName(n)
	if name != "" {
		n.Set("name", name)
	}
	convertMetaProperties(n)

	rec, err := c.record(n)
	if err != nil {
		return nil, err
	}
	c.scope.Define(rec)
	return c.scope.Resolve(rec), nil
}

// bareUnion reports whether schema is a oneOf of pure references without
// properties of its own.
func bareUnion(schema *jschema.Object) ([]*jschema.Object, bool) {
	if schema.Object("properties").Len() > 0 {
		return nil, false
	}
	alts := schema.Array("oneOf")
	if len(alts) == 0 {
		return nil, false
	}
	refs := make([]*jschema.Object, 0, len(alts))
	for _, alt := range alts {
		obj, ok := alt.(*jschema.Object)
		if !ok || obj.String("$ref") == "" || obj.Has("properties") || obj.Has("type") {
			return nil, false
		}
		refs = append(refs, obj)
	}
	return refs, true
}

func (c *Converter) bareUnionRefs(refs []*jschema.Object) avro.Schema {
	var union avro.Union
	seen := map[string]bool{}
	for _, ref := range refs {
		name := c.scope.Qualify(typeFromRef(ref))
		if seen[name] {
			continue
		}
		seen[name] = true
		union = append(union, avro.Reference(name))
	}
	return union
}

// ConvertDefinitions converts every property of a definitions document into
// a named definition.
func (c *Converter) ConvertDefinitions(doc *jschema.Object) ([]Definition, error) {
	var defs []Definition
	for key, v := range doc.Object("properties").All() {
		prop, ok := v.(*jschema.Object)
		if !ok {
			continue
		}
		if !hasName(prop) {
			prop = prop.Clone()
			prop.Set("name", key)
		}
		s, err := c.Convert(prop)
		if err != nil {
			return nil, err
		}
		def := Definition{Name: avro.SanitizeName(key), Schema: s}
		if c.keywords != nil {
			if keys := c.keywords(avro.TypeName(s), prop); len(keys) > 0 {
				def.CustomProps = prop.Pick(keys...)
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// RegisterDefinitions converts a definitions document and registers every
// definition in the converter's scope.
func (c *Converter) RegisterDefinitions(doc *jschema.Object) error {
	defs, err := c.ConvertDefinitions(doc)
	if err != nil {
		return err
	}
	for _, d := range defs {
		c.scope.Register(d.Name, d.Schema, d.CustomProps)
	}
	return nil
}

func hasName(n *jschema.Object) bool {
	for _, key := range nameKeys {
		if n.String(key) != "" {
			return true
		}
	}
	return false
}
