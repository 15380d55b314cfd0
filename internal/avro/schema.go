// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package avro models Avro schema documents as a closed set of schema kinds
// and provides the name and attribute normalization shared by both
// conversion directions.
package avro

import (
	"fmt"

	"github.com/dacolabs/avrobridge/internal/jschema"
)

// Schema is one Avro schema node: Primitive, Reference, Union or *Complex.
type Schema interface {
	isSchema()
}

// Primitive is a bare primitive type name such as "string" or "long".
type Primitive string

// Reference is a bare name pointing at a named type defined elsewhere.
type Reference string

// Union is a list of alternative schemas.
type Union []Schema

// Complex is an object schema. Type is either an Avro type keyword or the name
// of a named type when the node is a reference carrying extra attributes.
type Complex struct {
	Type      string
	Name      string
	Namespace string
	Fields    []*Field
	Items     Schema
	Values    Schema
	// Attrs holds every other attribute (doc, default, symbols, size,
	// logicalType, custom properties) in output order.
	Attrs *jschema.Object
}

// Field is a record field.
type Field struct {
	Name  string
	Type  Schema
	Attrs *jschema.Object
}

func (Primitive) isSchema() {}
func (Reference) isSchema() {}
func (Union) isSchema()     {}
func (*Complex) isSchema()  {}

// TypeName returns the type keyword of s. Unions report "union".
func TypeName(s Schema) string {
	switch v := s.(type) {
	case Primitive:
		return string(v)
	case Reference:
		return string(v)
	case Union:
		return "union"
	case *Complex:
		return v.Type
	case nil:
		return ""
	}
	panic(fmt.Sprintf("avro: unexpected schema %T", s))
}

// Attr returns an attribute of a complex schema.
func (c *Complex) Attr(key string) (any, bool) {
	return c.Attrs.Get(key)
}

// SetAttr sets an attribute, allocating the attribute set on first use.
func (c *Complex) SetAttr(key string, v any) {
	if c.Attrs == nil {
		c.Attrs = jschema.NewObject()
	}
	c.Attrs.Set(key, v)
}

// Clone returns a deep copy of s.
func Clone(s Schema) Schema {
	switch v := s.(type) {
	case nil:
		return nil
	case Primitive, Reference:
		return v
	case Union:
		out := make(Union, len(v))
		for i, alt := range v {
			out[i] = Clone(alt)
		}
		return out
	case *Complex:
		c := *v
		c.Attrs = v.Attrs.Clone()
		c.Items = Clone(v.Items)
		c.Values = Clone(v.Values)
		if v.Fields != nil {
			c.Fields = make([]*Field, len(v.Fields))
			for i, f := range v.Fields {
				c.Fields[i] = &Field{Name: f.Name, Type: Clone(f.Type), Attrs: f.Attrs.Clone()}
			}
		}
		return &c
	}
	panic(fmt.Sprintf("avro: unexpected schema %T", s))
}

// Parse converts a decoded JSON value into a Schema.
func Parse(v any) (Schema, error) {
	switch t := v.(type) {
	case string:
		if IsPrimitive(t) {
			return Primitive(t), nil
		}
		return Reference(t), nil
	case []any:
		u := make(Union, 0, len(t))
		for _, item := range t {
			s, err := Parse(item)
			if err != nil {
				return nil, err
			}
			u = append(u, s)
		}
		return u, nil
	case *jschema.Object:
		return parseObject(t)
	}
	return nil, fmt.Errorf("invalid schema value %v", v)
}

func parseObject(obj *jschema.Object) (Schema, error) {
	switch typ := obj.Value("type").(type) {
	case string:
		c := &Complex{Type: typ, Attrs: jschema.NewObject()}
		for key, val := range obj.All() {
			switch key {
			case "type":
			case "name":
				c.Name, _ = val.(string)
			case "namespace":
				c.Namespace, _ = val.(string)
			case "fields":
				if typ != "record" && typ != "error" {
					c.Attrs.Set(key, val)
					continue
				}
				fields, err := parseFields(val)
				if err != nil {
					return nil, err
				}
				c.Fields = fields
			case "items":
				s, err := Parse(val)
				if err != nil {
					return nil, err
				}
				c.Items = s
			case "values":
				s, err := Parse(val)
				if err != nil {
					return nil, err
				}
				c.Values = s
			default:
				c.Attrs.Set(key, val)
			}
		}
		if c.Type == "record" && c.Fields == nil {
			c.Fields = []*Field{}
		}
		return c, nil
	case nil:
		return nil, fmt.Errorf("schema %q has no type", obj.String("name"))
	default:
		return Parse(typ)
	}
}

func parseFields(v any) ([]*Field, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("record fields must be a list")
	}
	fields := make([]*Field, 0, len(list))
	for _, item := range list {
		obj, ok := item.(*jschema.Object)
		if !ok {
			return nil, fmt.Errorf("record field must be an object")
		}
		f := &Field{Name: obj.String("name"), Attrs: jschema.NewObject()}
		for key, val := range obj.All() {
			switch key {
			case "name":
			case "type":
				s, err := Parse(val)
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", f.Name, err)
				}
				f.Type = s
			default:
				f.Attrs.Set(key, val)
			}
		}
		if f.Type == nil {
			return nil, fmt.Errorf("field %q has no type", f.Name)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// ToJSON converts s into the ordered JSON value model.
// Complex keys are ordered type, doc, namespace, name, attributes, then fields, items or values.
func ToJSON(s Schema) any {
	switch v := s.(type) {
	case nil:
		return nil
	case Primitive:
		return string(v)
	case Reference:
		return string(v)
	case Union:
		out := make([]any, len(v))
		for i, alt := range v {
			out[i] = ToJSON(alt)
		}
		return out
	case *Complex:
		obj := jschema.NewObject()
		obj.Set("type", v.Type)
		if v.Name != "" {
			obj.Set("name", v.Name)
		}
		if v.Namespace != "" {
			obj.Set("namespace", v.Namespace)
		}
		for key, val := range v.Attrs.All() {
			obj.Set(key, val)
		}
		obj = ReorderKeys(obj)
		if v.Fields != nil {
			fields := make([]any, len(v.Fields))
			for i, f := range v.Fields {
				fields[i] = fieldJSON(f)
			}
			obj.Set("fields", fields)
		}
		if v.Items != nil {
			obj.Set("items", ToJSON(v.Items))
		}
		if v.Values != nil {
			obj.Set("values", ToJSON(v.Values))
		}
		return obj
	}
	panic(fmt.Sprintf("avro: unexpected schema %T", s))
}

func fieldJSON(f *Field) *jschema.Object {
	obj := jschema.NewObject()
	obj.Set("name", f.Name)
	obj.Set("type", ToJSON(f.Type))
	for key, val := range f.Attrs.All() {
		obj.Set(key, val)
	}
	return obj
}

// Marshal encodes s as JSON. An empty indent produces compact output.
func Marshal(s Schema, indent string) (string, error) {
	data, err := jschema.Marshal(ToJSON(s), indent)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
