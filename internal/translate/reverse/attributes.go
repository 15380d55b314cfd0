// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package reverse

import (
	"strconv"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
)

// fieldAttributes maps the Avro attributes of a node onto modeling keys.
func (c *converter) fieldAttributes(attrs *jschema.Object, avroType string) *jschema.Object {
	out := avro.FilterAttributes(attrs, avroType, c.fieldKeywords(avroType, attrs))

	if avro.IsNamedType(avroType) {
		ns, name := avro.SplitName(out.String("name"))
		if ns == "" {
			ns = out.String("namespace")
		}
		out.Set("name", name)
		if ns != "" {
			out.Set("namespace", ns)
		} else {
			out.Delete("namespace")
		}
	}

	logicalType := out.String("logicalType")
	if logicalType != "" && (avroType == "fixed" || avroType == "bytes") {
		out.Set("subtype", logicalType)
	}
	if doc, ok := out.Get("doc"); ok {
		out.Delete("doc")
		out.Set("description", doc)
	}
	if b, ok := out.Value("default").(bool); ok {
		out.Set("default", strconv.FormatBool(b))
	}
	if size, ok := out.Get("size"); ok && logicalType == "duration" {
		out.Delete("size")
		out.Set("durationSize", size)
	}
	return metaProps(out)
}

// metaProps gathers Java meta keys into a metaProps list placed where the
// first of them appeared.
func metaProps(attrs *jschema.Object) *jschema.Object {
	var props []any
	out := jschema.NewObject()
	for k, v := range attrs.All() {
		if !avro.IsMetaProperty(k) {
			out.Set(k, v)
			continue
		}
		if props == nil {
			out.Set("metaProps", nil)
		}
		props = append(props, jschema.ObjectOf("metaKey", k, avro.MetaValueKey(k), v))
	}
	if props != nil {
		out.Set("metaProps", props)
	}
	return out
}

func (c *converter) fieldKeywords(avroType string, attrs *jschema.Object) []string {
	if c.opts.FieldKeywords == nil {
		return nil
	}
	return c.opts.FieldKeywords(avroType, attrs)
}

// attrsOf returns the attributes of a node as one object: type, name and
// namespace first, nested schemas excluded.
func attrsOf(s avro.Schema) *jschema.Object {
	c, ok := s.(*avro.Complex)
	if !ok {
		return jschema.NewObject()
	}
	out := jschema.ObjectOf("type", c.Type)
	if c.Name != "" {
		out.Set("name", c.Name)
	}
	if c.Namespace != "" {
		out.Set("namespace", c.Namespace)
	}
	return out.Merge(c.Attrs)
}

// fieldObject returns the attributes of a record field with its name.
func fieldObject(f *avro.Field) *jschema.Object {
	return jschema.ObjectOf("name", f.Name).Merge(f.Attrs)
}
