// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package avro

import (
	"slices"

	"github.com/dacolabs/avrobridge/internal/jschema"
)

// Types lists every Avro type keyword.
var Types = []string{
	"string", "boolean", "bytes", "null", "array", "record",
	"enum", "fixed", "int", "long", "float", "double", "map",
}

var primitives = []string{"null", "boolean", "int", "long", "float", "double", "bytes", "string"}

var namedTypes = []string{"record", "fixed", "enum"}

// GeneralAttributes are valid on every schema.
var GeneralAttributes = []string{"type", "doc", "order", "default", "nullable"}

// MetaProperties are the Java interop keys passed through on any schema.
var MetaProperties = []string{"avro.java.string", "java-element", "java-element-class", "java-class", "java-key-class"}

var metaValueKeys = map[string]string{
	"avro.java.string":   "metaValueString",
	"java-element":       "metaValueElement",
	"java-element-class": "metaValueElementClass",
	"java-class":         "metaValueClass",
	"java-key-class":     "metaValueKeyClass",
}

var typeAttributes = map[string][]string{
	"enum":   {"name", "aliases", "namespace", "symbols", "symbolDefault"},
	"array":  {"items"},
	"map":    {"values"},
	"record": {"name", "aliases", "namespace", "fields"},
	"fixed":  {"name", "aliases", "namespace", "size", "logicalType"},
	"string": {"logicalType"},
	"bytes":  {"logicalType"},
	"int":    {"logicalType"},
	"long":   {"logicalType"},
}

var decimalAttributes = []string{"precision", "scale"}

// LogicalTypes maps each carrier type to the logical types it may hold.
var LogicalTypes = map[string][]string{
	"bytes":  {"decimal"},
	"int":    {"date", "time-millis"},
	"long":   {"time-micros", "timestamp-millis", "timestamp-micros", "local-timestamp-millis", "local-timestamp-micros"},
	"fixed":  {"decimal", "duration"},
	"string": {"uuid"},
}

// KeywordFunc returns the configured custom property keywords for an Avro type
// given the attributes of the node being emitted.
type KeywordFunc func(avroType string, attrs *jschema.Object) []string

// IsNamedType reports whether typ is record, enum or fixed.
func IsNamedType(typ string) bool {
	return slices.Contains(namedTypes, typ)
}

// IsPrimitive reports whether typ is an Avro primitive type.
func IsPrimitive(typ string) bool {
	return slices.Contains(primitives, typ)
}

// IsType reports whether typ is any Avro type keyword.
func IsType(typ string) bool {
	return slices.Contains(Types, typ)
}

// IsMetaProperty reports whether key is a Java interop meta key.
func IsMetaProperty(key string) bool {
	return slices.Contains(MetaProperties, key)
}

// MetaValueKey returns the modeling attribute holding the value of a meta key.
func MetaValueKey(metaKey string) string {
	if k, ok := metaValueKeys[metaKey]; ok {
		return k
	}
	return "metaValue"
}

// ValidLogicalType reports whether logicalType may be carried by typ.
func ValidLogicalType(typ, logicalType string) bool {
	return slices.Contains(LogicalTypes[typ], logicalType)
}

// AllowedAttributes returns the attribute keys kept for avroType.
func AllowedAttributes(avroType, logicalType string, custom []string) []string {
	keys := slices.Clone(typeAttributes[avroType])
	keys = append(keys, GeneralAttributes...)
	if (avroType == "bytes" || avroType == "fixed") && logicalType == "decimal" {
		keys = append(keys, decimalAttributes...)
	}
	keys = append(keys, MetaProperties...)
	return append(keys, custom...)
}

// FilterAttributes keeps only the keys of attrs valid for avroType, plus the
// general, meta and custom keys. A logicalType invalid for the node's own type is dropped.
func FilterAttributes(attrs *jschema.Object, avroType string, custom []string) *jschema.Object {
	logicalType := attrs.String("logicalType")
	if !ValidLogicalType(attrs.String("type"), logicalType) {
		attrs = attrs.Without("logicalType")
		logicalType = ""
	}
	return attrs.Pick(AllowedAttributes(avroType, logicalType, custom)...)
}

// ReorderKeys returns a copy of obj with type, doc, namespace and name first.
func ReorderKeys(obj *jschema.Object) *jschema.Object {
	leading := []string{"type", "doc", "namespace", "name"}
	out := jschema.NewObject()
	for _, key := range leading {
		if v, ok := obj.Get(key); ok {
			out.Set(key, v)
		}
	}
	for key, v := range obj.All() {
		if !slices.Contains(leading, key) {
			out.Set(key, v)
		}
	}
	return out
}

// Simplify collapses a complex schema that carries nothing but its type into
// the bare type name.
func Simplify(s Schema) Schema {
	c, ok := s.(*Complex)
	if !ok {
		return s
	}
	if c.Name != "" || c.Namespace != "" || c.Fields != nil || c.Items != nil || c.Values != nil || c.Attrs.Len() > 0 {
		return s
	}
	if c.Type == "record" || c.Type == "enum" || c.Type == "fixed" || c.Type == "array" || c.Type == "map" {
		return s
	}
	if IsPrimitive(c.Type) {
		return Primitive(c.Type)
	}
	return Reference(c.Type)
}

// RefTo builds a reference to name that keeps the given attributes.
func RefTo(name string, attrs *jschema.Object) Schema {
	return Simplify(&Complex{Type: name, Attrs: attrs.Without("type")})
}
