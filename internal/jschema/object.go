// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"
)

// Object is a JSON object that remembers the insertion order of its keys.
// Values are nil, bool, json.Number, float64, int, string, []any or *Object.
// A nil *Object behaves as an empty object for reads.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectOf builds an Object from alternating key/value pairs.
// It panics if a key is not a string.
func ObjectOf(pairs ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1])
	}
	return o
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.keys)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[key]
	return ok
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Value returns the value stored under key or nil.
func (o *Object) Value(key string) any {
	v, _ := o.Get(key)
	return v
}

// Set stores v under key. New keys are appended, existing keys keep their position.
func (o *Object) Set(key string, v any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key if present.
func (o *Object) Delete(keys ...string) {
	if o == nil {
		return
	}
	for _, key := range keys {
		if _, ok := o.values[key]; !ok {
			continue
		}
		delete(o.values, key)
		o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	}
}

// All iterates over key/value pairs in insertion order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}
		for _, k := range o.keys {
			if !yield(k, o.values[k]) {
				return
			}
		}
	}
}

// String returns the string stored under key, or "" when absent or not a string.
func (o *Object) String(key string) string {
	s, _ := o.Value(key).(string)
	return s
}

// Bool returns the bool stored under key, or false.
func (o *Object) Bool(key string) bool {
	b, _ := o.Value(key).(bool)
	return b
}

// Object returns the nested object stored under key, or nil.
func (o *Object) Object(key string) *Object {
	obj, _ := o.Value(key).(*Object)
	return obj
}

// Array returns the array stored under key, or nil.
func (o *Object) Array(key string) []any {
	arr, _ := o.Value(key).([]any)
	return arr
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := &Object{
		keys:   slices.Clone(o.keys),
		values: make(map[string]any, len(o.values)),
	}
	for k, v := range o.values {
		c.values[k] = CloneValue(v)
	}
	return c
}

// Merge returns a copy of o with the keys of other set on top of it.
func (o *Object) Merge(other *Object) *Object {
	c := o.Clone()
	if c == nil {
		c = NewObject()
	}
	for k, v := range other.All() {
		c.Set(k, CloneValue(v))
	}
	return c
}

// Without returns a copy of o without the given keys.
func (o *Object) Without(keys ...string) *Object {
	c := o.Clone()
	if c == nil {
		return NewObject()
	}
	c.Delete(keys...)
	return c
}

// Pick returns a copy of o holding only the given keys, in o's order.
func (o *Object) Pick(keys ...string) *Object {
	c := NewObject()
	for k, v := range o.All() {
		if slices.Contains(keys, k) {
			c.Set(k, CloneValue(v))
		}
	}
	return c
}

// Map converts o into plain Go maps and slices, dropping key order.
func (o *Object) Map() map[string]any {
	if o == nil {
		return nil
	}
	m := make(map[string]any, len(o.keys))
	for k, v := range o.values {
		m[k] = plain(v)
	}
	return m
}

func plain(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Map()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// CloneValue deep copies a JSON value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes o with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encode(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := encode(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return errNotObject
	}
	*o = *obj
	return nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
