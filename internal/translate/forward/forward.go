// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package forward converts modeling schemas into Avro schemas.
//
// A Converter walks one node at a time: choices are flattened, the node's
// type, doc, default, logical type, name and meta properties are derived,
// then the node is dispatched on its type. Named types go through the UDT
// scope the converter is bound to, so a name is defined once per document.
package forward

import (
	"strings"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/translate/choice"
	"github.com/dacolabs/avrobridge/internal/translate/udt"
)

const defaultType = "string"

var nameKeys = []string{"typeName", "code", "name", "displayName"}

// Converter converts modeling schema nodes into Avro schemas.
type Converter struct {
	scope    *udt.Scope
	keywords avro.KeywordFunc
	names    avro.NameGenerator
}

// New returns a converter bound to scope. keywords supplies the configured
// custom property keys per Avro type and may be nil.
func New(scope *udt.Scope, keywords avro.KeywordFunc) *Converter {
	return &Converter{scope: scope, keywords: keywords}
}

// Convert converts a single modeling schema node.
func (c *Converter) Convert(schema *jschema.Object) (avro.Schema, error) {
	n, err := c.prepare(schema)
	if err != nil {
		return nil, err
	}
	return c.convertPrepared(n)
}

func (c *Converter) convertPrepared(n *jschema.Object) (avro.Schema, error) {
	orig := n.Clone()
	convertDoc(n)
	convertDefault(n)
	convertLogicalType(n)
	handleRequired(n)
	convertProperties(n)
	convertName(n)
	convertMetaProperties(n)
	return c.convertType(orig, n)
}

// prepare flattens choices and resolves the node's type.
func (c *Converter) prepare(schema *jschema.Object) (*jschema.Object, error) {
	n, err := choice.Flatten(schema)
	if err != nil {
		return nil, err
	}
	if !n.Has("type") {
		if t := typeFromRef(n); t != "" {
			n.Set("type", t)
		}
	}
	if n.String("type") == "object" {
		n.Set("type", "record")
	}
	return n, nil
}

func typeFromRef(n *jschema.Object) string {
	ref := n.String("$ref")
	if ref == "" {
		return ""
	}
	if !strings.Contains(ref, "#") {
		return ref
	}
	return avro.QualifiedName(n.String("namespace"), avro.SanitizeName(jschema.RefName(ref)))
}

func convertDoc(n *jschema.Object) {
	description := n.String("description")
	if n.Has("$ref") && n.String("refDescription") != "" {
		description = n.String("refDescription")
	}
	if description != "" {
		n.Set("doc", description)
	}
}

func convertDefault(n *jschema.Object) {
	if v, ok := unionDefault(n); ok {
		n.Set("default", v)
	}
}

// unionDefault computes the default carried by the first alternative of the
// node's type, or by the node itself when the type is a single name.
func unionDefault(n *jschema.Object) (any, bool) {
	first := n.Value("type")
	if alts, ok := first.([]any); ok {
		if len(alts) == 0 {
			return nil, false
		}
		first = alts[0]
	}
	switch t := first.(type) {
	case string:
		v, ok := n.Get("default")
		if !ok {
			return nil, false
		}
		return choice.CoerceDefault(t, v), true
	case *jschema.Object:
		v, ok := t.Get("default")
		if !ok {
			return nil, false
		}
		return choice.CoerceDefault(t.String("type"), v), true
	}
	return nil, false
}

func convertLogicalType(n *jschema.Object) {
	logicalType := n.String("logicalType")
	if logicalType == "" {
		logicalType = n.String("subtype")
	}
	if logicalType == "" {
		return
	}
	n.Set("logicalType", logicalType)
	if logicalType == "duration" && jschema.IsTruthy(n.Value("durationSize")) {
		n.Set("size", n.Value("durationSize"))
	}
}

// handleRequired drops defaults of required properties unless they are nullable.
func handleRequired(n *jschema.Object) {
	required, ok := n.Value("required").([]any)
	props := n.Object("properties")
	if !ok || props == nil {
		return
	}
	out := jschema.NewObject()
	for key, v := range props.All() {
		p, isObj := v.(*jschema.Object)
		if isObj && containsString(required, key) && !p.Bool("nullable") {
			v = p.Without("default")
		}
		out.Set(key, v)
	}
	n.Set("properties", out)
}

func convertProperties(n *jschema.Object) {
	props, ok := n.Get("properties")
	if !ok {
		return
	}
	if n.String("type") == "map" {
		n.Set("values", props)
		return
	}
	n.Set("fields", props)
}

func convertName(n *jschema.Object) {
	for _, key := range nameKeys {
		if name := n.String(key); name != "" {
			n.Delete(nameKeys...)
			n.Set("name", avro.SanitizeName(name))
			return
		}
	}
}

func convertMetaProperties(n *jschema.Object) {
	if _, isUnion := n.Value("type").([]any); isUnion || n.String("type") == "null" {
		return
	}
	for _, m := range n.Array("metaProps") {
		meta, ok := m.(*jschema.Object)
		if !ok || meta.String("metaKey") == "" {
			continue
		}
		key := meta.String("metaKey")
		n.Set(key, meta.Value(avro.MetaValueKey(key)))
	}
}

func containsString(list []any, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
