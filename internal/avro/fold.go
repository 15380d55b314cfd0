// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package avro

import "fmt"

// Map rewrites s top-down. fn receives every non-union node before its
// children; the children of the node fn returns are then mapped in turn.
// Union members are mapped individually.
func Map(s Schema, fn func(Schema) Schema) Schema {
	switch v := s.(type) {
	case nil:
		return nil
	case Union:
		return mapUnion(v, fn)
	case Primitive, Reference, *Complex:
	default:
		panic(fmt.Sprintf("avro: unexpected schema %T", s))
	}

	switch t := fn(s).(type) {
	case nil:
		return nil
	case Primitive, Reference:
		return t
	case Union:
		return mapUnion(t, fn)
	case *Complex:
		c := *t
		if t.Fields != nil {
			c.Fields = make([]*Field, len(t.Fields))
			for i, f := range t.Fields {
				c.Fields[i] = &Field{Name: f.Name, Type: Map(f.Type, fn), Attrs: f.Attrs}
			}
		}
		c.Items = Map(t.Items, fn)
		c.Values = Map(t.Values, fn)
		return &c
	default:
		panic(fmt.Sprintf("avro: unexpected schema %T", t))
	}
}

func mapUnion(u Union, fn func(Schema) Schema) Schema {
	out := make(Union, len(u))
	for i, alt := range u {
		out[i] = Map(alt, fn)
	}
	return out
}

// Fold accumulates over every node of s in pre-order, union members included.
func Fold[T any](s Schema, acc T, fn func(T, Schema) T) T {
	switch v := s.(type) {
	case nil:
		return acc
	case Primitive, Reference:
		return fn(acc, v)
	case Union:
		acc = fn(acc, v)
		for _, alt := range v {
			acc = Fold(alt, acc, fn)
		}
		return acc
	case *Complex:
		acc = fn(acc, v)
		for _, f := range v.Fields {
			acc = Fold(f.Type, acc, fn)
		}
		acc = Fold(v.Items, acc, fn)
		return Fold(v.Values, acc, fn)
	}
	panic(fmt.Sprintf("avro: unexpected schema %T", s))
}
