// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package avro

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// Signature is the structural identity of a schema: type, name, the field
// names of records, the item and value schemas, and logical type parameters.
// Docs, defaults and custom properties do not take part.
type Signature struct {
	Type        string
	Name        string
	Fields      []string
	Items       *Signature
	Values      *Signature
	Members     []Signature
	LogicalType string
	Precision   string
	Scale       string
	Size        string
}

// SignatureOf computes the structural signature of s.
func SignatureOf(s Schema) Signature {
	switch v := s.(type) {
	case nil:
		return Signature{}
	case Primitive:
		return Signature{Type: string(v)}
	case Reference:
		return Signature{Type: string(v)}
	case Union:
		sig := Signature{Type: "union"}
		for _, alt := range v {
			sig.Members = append(sig.Members, SignatureOf(alt))
		}
		return sig
	case *Complex:
		sig := Signature{
			Type:        v.Type,
			Name:        v.Name,
			LogicalType: attrString(v, "logicalType"),
			Precision:   attrString(v, "precision"),
			Scale:       attrString(v, "scale"),
			Size:        attrString(v, "size"),
		}
		for _, f := range v.Fields {
			sig.Fields = append(sig.Fields, f.Name)
		}
		if v.Items != nil {
			items := SignatureOf(v.Items)
			sig.Items = &items
		}
		if v.Values != nil {
			values := SignatureOf(v.Values)
			sig.Values = &values
		}
		return sig
	}
	panic(fmt.Sprintf("avro: unexpected schema %T", s))
}

// SameStructure reports whether a and b have equal structural signatures.
func SameStructure(a, b Schema) bool {
	return cmp.Equal(SignatureOf(a), SignatureOf(b))
}

// StructureDiff describes how the signatures of a and b differ, or "" when equal.
func StructureDiff(a, b Schema) string {
	return cmp.Diff(SignatureOf(a), SignatureOf(b))
}

func attrString(c *Complex, key string) string {
	v, ok := c.Attr(key)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
