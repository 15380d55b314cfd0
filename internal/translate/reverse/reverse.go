// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package reverse converts Avro schema documents back into modeling schemas.
//
// Named types become entries of a definitions map and are referenced from
// their point of use; unions are rebuilt as multi-typed properties or, when an
// alternative is complex, as choice properties.
package reverse

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/logger"
)

// SchemaDraft is the $schema written on every converted root.
const SchemaDraft = "http://json-schema.org/draft-04/schema#"

var (
	numericTypes = []string{"int", "long", "float", "double"}
	// primitiveTypes are the types that never need a choice when they appear
	// in a union.
	primitiveTypes = []string{"null", "boolean", "int", "long", "float", "double", "bytes", "string", "enum", "fixed"}
)

// ErrNoInlineRoot is returned when a union document holds nothing that can
// become an entity.
var ErrNoInlineRoot = errors.New("union document has no record alternatives")

// Options configures a reverse conversion.
type Options struct {
	// FieldKeywords returns the custom property keys to keep on a field of
	// the given Avro type.
	FieldKeywords avro.KeywordFunc
	// EntityKeywords returns the custom property keys to keep on a root.
	EntityKeywords func(attrs *jschema.Object) []string
	// Subject and Topic name the record synthesized for a union of
	// references.
	Subject string
	Topic   string
	Logger  *logger.Logger
}

// Document is one converted root together with the Avro node it came from.
type Document struct {
	Schema *jschema.Object
	Source avro.Schema
}

// Namespace returns the namespace of the source root.
func (d Document) Namespace() string {
	attrs := attrsOf(d.Source)
	ns, _ := avro.SplitName(attrs.String("name"))
	if ns == "" {
		ns = attrs.String("namespace")
	}
	return ns
}

type converter struct {
	opts           Options
	defs           *Definitions
	collectionRefs []string
	log            *logger.Logger
}

// Convert converts a decoded Avro document into one modeling schema per
// root. A union document yields one schema per record alternative; a union
// made only of references yields a single synthesized record.
func Convert(doc any, opts Options) ([]Document, error) {
	doc = normalizeRoot(doc)
	s, err := avro.Parse(doc)
	if err != nil {
		return nil, err
	}

	c := &converter{
		opts:           opts,
		collectionRefs: collectionRefs(doc),
		log:            opts.Logger,
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	c.defs = NewDefinitions(c.log)

	roots := []avro.Schema{s}
	if u, ok := s.(avro.Union); ok {
		if roots, err = c.unionRoots(u); err != nil {
			return nil, err
		}
	}

	nodes := make([]*jschema.Object, len(roots))
	for i, root := range roots {
		nodes[i] = c.convertSchema(root, EmptyNamespace, nil)
	}

	docs := make([]Document, len(roots))
	for i, root := range roots {
		schema := c.resolveRoot(nodes[i])
		schema = c.rootAttributes(schema, root)
		schema = c.defs.FilterUnused(schema)
		schema = c.defs.UpdateRefs(schema)
		docs[i] = Document{Schema: rootName(schema), Source: root}
	}
	return docs, nil
}

// normalizeRoot treats an object whose keys are all numeric indices as the
// list it encodes.
func normalizeRoot(doc any) any {
	obj, ok := doc.(*jschema.Object)
	if !ok || obj.Len() == 0 || obj.Has("type") {
		return doc
	}
	list := make([]any, 0, obj.Len())
	for k, v := range obj.All() {
		if _, err := strconv.Atoi(k); err != nil {
			return doc
		}
		list = append(list, v)
	}
	return list
}

func collectionRefs(doc any) []string {
	obj, ok := doc.(*jschema.Object)
	if !ok {
		return nil
	}
	var names []string
	for _, r := range obj.Array("references") {
		if ref, ok := r.(*jschema.Object); ok && ref.String("name") != "" {
			_, name := avro.SplitName(ref.String("name"))
			names = append(names, name)
		}
	}
	return names
}

func (c *converter) unionRoots(u avro.Union) ([]avro.Schema, error) {
	allRefs := len(u) > 0
	for _, alt := range u {
		if _, ok := alt.(avro.Reference); !ok {
			allRefs = false
		}
	}
	if allRefs {
		return []avro.Schema{c.unionRecord(u)}, nil
	}

	var roots []avro.Schema
	for _, alt := range u {
		if rec, ok := alt.(*avro.Complex); ok && avro.IsNamedType(rec.Type) {
			roots = append(roots, alt)
			continue
		}
		c.log.Warn("union alternative skipped", nil, map[string]any{"type": avro.TypeName(alt)})
	}
	if len(roots) == 0 {
		return nil, ErrNoInlineRoot
	}
	return roots, nil
}

// unionRecord wraps a union of references into a record with a single
// "value" field, named after the subject or topic.
func (c *converter) unionRecord(u avro.Union) avro.Schema {
	full := c.opts.Subject
	for _, suffix := range []string{"-key", "-value"} {
		full = strings.TrimSuffix(full, suffix)
	}
	if full == "" {
		full = c.opts.Topic
	}
	if full == "" {
		full = avro.DefaultName
	}
	ns, name := avro.SplitName(full)
	return &avro.Complex{
		Type:      "record",
		Name:      avro.SanitizeName(name),
		Namespace: ns,
		Fields:    []*avro.Field{{Name: "value", Type: u}},
		Attrs:     jschema.NewObject(),
	}
}

func (c *converter) convertSchema(s avro.Schema, namespace string, fieldAttrs *jschema.Object) *jschema.Object {
	if u, ok := s.(avro.Union); ok {
		return c.convertUnion(u, namespace)
	}

	typ := avro.TypeName(s)
	attrs := attrsOf(s)
	fieldDefault := fieldAttrs.Value("default")
	if jschema.IsTruthy(fieldDefault) && !jschema.IsTruthy(attrs.Value("default")) {
		attrs.Set("default", fieldDefault)
	}

	node := c.convertType(s, typ, namespace, c.fieldAttributes(attrs, typ))
	if !avro.IsNamedType(typ) {
		return node
	}

	def := node.Merge(fieldAttrs.Pick(c.fieldKeywords(typ, fieldAttrs)...))
	if jschema.IsTruthy(fieldDefault) && !jschema.IsTruthy(def.Value("default")) {
		def.Set("default", fieldDefault)
	}
	ns := node.String("namespace")
	if ns == "" {
		ns = namespace
	}
	return c.defs.Add(ns, def)
}

func (c *converter) convertUnion(u avro.Union, namespace string) *jschema.Object {
	if len(u) == 1 {
		return c.convertSchema(u[0], namespace, nil)
	}
	types := make([]any, len(u))
	for i, alt := range u {
		types[i] = c.convertSchema(alt, namespace, nil)
	}
	return jschema.ObjectOf("type", types)
}

func (c *converter) convertType(s avro.Schema, typ, parentNamespace string, attrs *jschema.Object) *jschema.Object {
	namespace := attrs.String("namespace")
	if namespace == "" {
		namespace = parentNamespace
	}
	complexSchema, _ := s.(*avro.Complex)

	switch {
	case slices.Contains(numericTypes, typ):
		out := attrs.Clone()
		out.Set("type", "number")
		out.Set("mode", typ)
		return out
	case typ == "enum":
		out := attrs.Without("default")
		if v := attrs.Value("default"); jschema.IsTruthy(v) {
			out.Set("symbolDefault", v)
		}
		out.Set("type", "enum")
		return out
	case slices.Contains(primitiveTypes, typ):
		out := attrs.Clone()
		out.Set("type", typ)
		return out
	case typ == "map":
		return c.convertMap(complexSchema, namespace, attrs)
	case typ == "record" || typ == "error":
		return c.convertRecord(complexSchema, namespace, attrs)
	case typ == "array":
		return c.convertArray(complexSchema, namespace, attrs)
	}
	return c.convertReference(typ, namespace, attrs)
}

func (c *converter) convertMap(s *avro.Complex, namespace string, attrs *jschema.Object) *jschema.Object {
	var values avro.Schema = avro.Primitive("string")
	if s != nil && s.Values != nil {
		values = s.Values
	}
	value := c.convertSchema(values, namespace, nil)
	value.Set("name", "schema")
	props := handleMultipleFields([]*jschema.Object{value})

	out := attrs.Without("values")
	out.Set("type", "map")
	switch v := values.(type) {
	case avro.Primitive:
		out.Set("subtype", fmt.Sprintf("map<%s>", v))
	case avro.Reference:
		out.Set("subtype", fmt.Sprintf("map<%s>", v))
	}
	out.Set("properties", byName(props))
	out.Set("required", required(props))
	return out
}

func (c *converter) convertRecord(s *avro.Complex, namespace string, attrs *jschema.Object) *jschema.Object {
	var fields []*jschema.Object
	if s != nil {
		for _, f := range s.Fields {
			fields = append(fields, c.convertField(f, namespace))
		}
	}
	fields = handleMultipleFields(fields)

	out := attrs.Without("fields")
	out.Set("type", "record")
	out.Set("properties", byName(fields))
	out.Set("required", required(fields))
	return out
}

func (c *converter) convertArray(s *avro.Complex, namespace string, attrs *jschema.Object) *jschema.Object {
	var items avro.Schema = avro.Primitive("string")
	if s != nil && s.Items != nil {
		items = s.Items
	}
	converted := handleMultipleFields([]*jschema.Object{c.convertSchema(items, namespace, nil)})

	var choices []*jschema.Object
	list := make([]any, 0, len(converted))
	for _, item := range converted {
		if item.String("type") == "choice" {
			choices = append(choices, item)
			continue
		}
		list = append(list, item)
	}

	out := attrs.Without("items")
	out.Set("type", "array")
	out.Set("items", list)
	if len(choices) > 0 {
		out.Set("properties", byName(choices))
	}
	return out
}

func (c *converter) convertReference(typ, namespace string, attrs *jschema.Object) *jschema.Object {
	ns, name := avro.SplitName(typ)
	if ns == "" {
		ns = namespace
	}
	ref := typ
	if slices.Contains(c.collectionRefs, name) {
		ref = jschema.CollectionRefPrefix + "definitions/" + name
	}
	out := attrs.Clone()
	out.Set("$ref", ref)
	out.Set("definitionName", name)
	out.Set("name", name)
	out.Set("namespace", ns)
	return out
}

// convertField converts a record field. The ["null", T] shorthand becomes T
// marked nullable.
func (c *converter) convertField(f *avro.Field, namespace string) *jschema.Object {
	obj := fieldObject(f)
	typ := f.Type
	nullable := false
	if u, ok := typ.(avro.Union); ok && len(u) == 2 && u[0] == avro.Primitive("null") {
		if _, nested := u[1].(avro.Union); !nested {
			typ, nullable = u[1], true
		}
	}

	props := c.convertSchema(typ, namespace, obj)
	typeName := props.String("mode")
	if typeName == "" {
		typeName = props.String("type")
	}

	out := c.fieldAttributes(obj, "")
	if aliases, ok := obj.Get("aliases"); ok {
		out.Set("aliases", aliases)
	}
	out = out.Merge(obj.Pick(c.fieldKeywords(typeName, obj)...)).Merge(props)
	out.Set("name", f.Name)
	if nullable {
		out.Set("nullable", true)
	}
	return out
}

// handleMultipleFields turns multi-typed nodes into either a merged node
// listing the type names or, when an alternative is complex, a choice.
func handleMultipleFields(items []*jschema.Object) []*jschema.Object {
	out := make([]*jschema.Object, len(items))
	for i, item := range items {
		types, ok := item.Value("type").([]any)
		switch {
		case !ok:
			out[i] = item
		case hasComplexType(types):
			out[i] = oneOf(item, types)
		default:
			out[i] = mergeTypes(item, types)
		}
	}
	return out
}

func hasComplexType(types []any) bool {
	for _, t := range types {
		alt, ok := t.(*jschema.Object)
		if !ok {
			continue
		}
		typ := alt.String("mode")
		if typ == "" {
			typ = alt.String("type")
		}
		if !slices.Contains(primitiveTypes, typ) {
			return true
		}
	}
	return false
}

func oneOf(item *jschema.Object, types []any) *jschema.Object {
	name := item.String("name")
	if name == "" {
		name = avro.DefaultName
	}
	subschemas := make([]any, 0, len(types))
	for _, t := range types {
		alt, ok := t.(*jschema.Object)
		if !ok {
			continue
		}
		subschemas = append(subschemas, jschema.ObjectOf(
			"type", "record",
			"subschema", true,
			"properties", jschema.ObjectOf(name, alt.Without("name")),
		))
	}
	out := item.Clone()
	out.Set("type", "choice")
	out.Set("choice", "oneOf")
	out.Set("items", subschemas)
	return out
}

func mergeTypes(item *jschema.Object, types []any) *jschema.Object {
	merged := jschema.NewObject()
	var names []any
	for _, t := range types {
		alt, ok := t.(*jschema.Object)
		if !ok {
			continue
		}
		merged = merged.Merge(alt)
		names = append(names, alt.Value("type"))
	}
	merged.Set("type", names)

	out := item.Merge(merged)
	if name, ok := item.Get("name"); ok {
		out.Set("name", name)
	} else {
		out.Delete("name")
	}
	return out
}

func byName(items []*jschema.Object) *jschema.Object {
	out := jschema.NewObject()
	for _, item := range items {
		name := item.String("name")
		if name == "" {
			name = avro.DefaultName
		}
		out.Set(name, item)
	}
	return out
}

// required lists the names of items that carry no default.
func required(items []*jschema.Object) []any {
	names := []any{}
	for _, item := range items {
		if item.Has("default") || item.String("name") == "" {
			continue
		}
		names = append(names, item.String("name"))
	}
	return names
}

func (c *converter) resolveRoot(node *jschema.Object) *jschema.Object {
	if node.String("$ref") == "" {
		return node
	}
	if def := c.defs.Find(node.String("namespace"), node.String("definitionName")); def != nil {
		return def.Clone()
	}
	return node
}

func (c *converter) rootAttributes(schema *jschema.Object, root avro.Schema) *jschema.Object {
	out := schema.Clone()
	out.Set("type", "object")
	out.Set("$schema", SchemaDraft)
	out.Set("definitions", c.defs.All())
	if c.opts.EntityKeywords != nil {
		attrs := attrsOf(root)
		out = out.Merge(attrs.Pick(c.opts.EntityKeywords(attrs)...))
	}
	return out
}

// rootName replaces the name and namespace of a root with its title.
func rootName(schema *jschema.Object) *jschema.Object {
	_, title := avro.SplitName(schema.String("name"))
	out := schema.Without("name", "namespace")
	if title != "" {
		out.Set("title", title)
	}
	return out
}
