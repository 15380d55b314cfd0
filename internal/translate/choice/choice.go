// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package choice flattens oneOf/anyOf/allOf constructs of a modeling schema
// into multi-typed properties, since Avro only knows type unions.
package choice

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
)

// Keywords are the choice keywords, in processing order.
var Keywords = []string{"oneOf", "anyOf", "allOf"}

var (
	// ErrMissingChoiceIndex is returned when choice-derived and existing
	// properties must be interleaved but a choice carries no index.
	ErrMissingChoiceIndex = errors.New("choice metadata has no index")

	// ErrMalformedMergedChoice is returned when merged choice metadata does not
	// describe the allOf items it layers on.
	ErrMalformedMergedChoice = errors.New("malformed merged choice metadata")
)

// MetaKeyword returns the metadata keyword of a choice keyword.
func MetaKeyword(keyword string) string {
	return keyword + "_meta"
}

// Flatten returns a copy of schema with every choice keyword resolved.
// Alternatives of array schemas are appended to items; otherwise properties
// of all alternatives are merged by name into multi-typed properties.
func Flatten(schema *jschema.Object) (*jschema.Object, error) {
	s := flattenChoiceProperties(schema.Clone())
	if s == nil {
		return jschema.NewObject(), nil
	}
	for _, keyword := range Keywords {
		var err error
		if s, err = flattenKeyword(s, keyword); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func flattenKeyword(s *jschema.Object, keyword string) (*jschema.Object, error) {
	alternatives, ok := s.Value(keyword).([]any)
	if !ok {
		return s, nil
	}
	if metas, ok := s.Value(MetaKeyword(keyword)).([]any); ok {
		return flattenMerged(s, metas)
	}
	meta := s.Object(MetaKeyword(keyword))

	var fields []any
	for _, alt := range alternatives {
		sub, ok := alt.(*jschema.Object)
		if !ok {
			continue
		}
		flat, err := Flatten(sub)
		if err != nil {
			return nil, err
		}
		if flat.String("type") == "array" {
			fields = append(fields, nonEmpty(asList(flat.Value("items")))...)
			continue
		}
		for key, prop := range flat.Object("properties").All() {
			p, ok := prop.(*jschema.Object)
			if !ok {
				continue
			}
			field := jschema.ObjectOf("name", avro.SanitizeName(key)).Merge(p)
			if field.Len() > 0 {
				fields = append(fields, field)
			}
		}
	}

	out := s.Without(keyword, MetaKeyword(keyword))
	if s.String("type") == "array" {
		items := nonEmpty(asList(s.Value("items")))
		out.Set("items", append(items, fields...))
		return out, nil
	}

	merged := jschema.NewObject()
	for _, f := range fields {
		field := f.(*jschema.Object)
		fieldName := firstString(meta, "code", "name")
		if fieldName == "" {
			fieldName = field.String("name")
		}

		prop := merged.Object(fieldName)
		if prop == nil {
			prop = meta.Clone()
			if prop == nil {
				prop = jschema.NewObject()
			}
			if def, ok := meta.Get("default"); ok {
				prop.Set("default", CoerceDefault(field.String("type"), def))
			}
			prop.Set("name", avro.SanitizeName(fieldName))
			prop.Set("type", []any{})
			if meta != nil {
				prop.Set("choiceMeta", meta.Clone())
			}
			merged.Set(fieldName, prop)
		}

		altName := field.String("name")
		if altName == "" {
			altName = fieldName
		}
		alt := field.Clone()
		alt.Set("name", avro.SanitizeName(altName))
		prop.Set("type", dedupe(append(asList(prop.Value("type")), alt)))
	}

	for name, v := range merged.All() {
		merged.Set(name, settle(v.(*jschema.Object)))
	}

	props, err := addPropertiesFromChoices(s.Object("properties"), merged)
	if err != nil {
		return nil, err
	}
	out.Set("properties", props)
	return out, nil
}

func flattenMerged(s *jschema.Object, metas []any) (*jschema.Object, error) {
	allOf := s.Array("allOf")
	updated := s
	for i, m := range metas {
		meta, ok := m.(*jschema.Object)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is not an object", ErrMalformedMergedChoice, i)
		}
		ids, ok := meta.Value("ids").([]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has no ids", ErrMalformedMergedChoice, i)
		}

		var items []any
		for _, item := range allOf {
			obj, ok := item.(*jschema.Object)
			if ok && slices.Contains(ids, any(obj.String("GUID"))) {
				items = append(items, obj)
			}
		}

		keyword := meta.String("choice")
		if keyword == "" {
			keyword = "allOf"
		}
		if !slices.Contains(Keywords, keyword) {
			return nil, fmt.Errorf("%w: unknown choice %q", ErrMalformedMergedChoice, keyword)
		}
		if keyword != "allOf" {
			if len(items) == 0 {
				return nil, fmt.Errorf("%w: no allOf item matches ids of %s", ErrMalformedMergedChoice, keyword)
			}
			nested, ok := items[0].(*jschema.Object).Value(keyword).([]any)
			if !ok {
				return nil, fmt.Errorf("%w: matched item has no %s", ErrMalformedMergedChoice, keyword)
			}
			items = nested
		}

		next := removeChoices(updated)
		next.Set(keyword, items)
		next.Set(MetaKeyword(keyword), meta)
		var err error
		if updated, err = flattenKeyword(next, keyword); err != nil {
			return nil, err
		}
	}
	return removeChoices(updated), nil
}

// flattenChoiceProperties resolves properties of the form
// {type: "choice", choice: "oneOf", items: [{properties: {name: alt}}]}.
func flattenChoiceProperties(s *jschema.Object) *jschema.Object {
	props := s.Object("properties")
	if props.Len() == 0 {
		return s
	}
	isArray := s.String("type") == "array"
	var items []any
	out := jschema.NewObject()
	for name, v := range props.All() {
		p, ok := v.(*jschema.Object)
		if !ok || p.String("type") != "choice" {
			out.Set(name, v)
			continue
		}
		alts := choiceAlternatives(p)
		if isArray {
			items = append(items, alts...)
			continue
		}
		prop := p.Without("type", "choice", "items", "subschema")
		if _, isList := prop.Value("properties").([]any); isList {
			prop.Delete("properties")
		}
		prop.Set("type", dedupe(alts))
		out.Set(name, settle(prop))
	}
	if isArray && len(items) > 0 {
		s.Set("items", dedupe(append(nonEmpty(asList(s.Value("items"))), items...)))
		if out.Len() == 0 {
			s.Delete("properties")
			return s
		}
	}
	s.Set("properties", out)
	return s
}

func choiceAlternatives(p *jschema.Object) []any {
	subschemas := p.Array("items")
	if subschemas == nil {
		subschemas = p.Array("properties")
	}
	var alts []any
	for _, sub := range subschemas {
		subObj, ok := sub.(*jschema.Object)
		if !ok {
			continue
		}
		for _, alt := range subObj.Object("properties").All() {
			if a, ok := alt.(*jschema.Object); ok {
				alts = append(alts, a)
			}
		}
	}
	return alts
}

// settle reduces bare alternatives to type names and replaces a property
// whose alternatives collapsed to a single object with that object.
func settle(prop *jschema.Object) *jschema.Object {
	types := asList(prop.Value("type"))
	for i, t := range types {
		if alt, ok := t.(*jschema.Object); ok {
			if bare := alt.Without("name"); bare.Len() == 1 && bare.String("type") != "" {
				types[i] = bare.String("type")
			}
		}
	}
	if len(types) != 1 {
		prop.Set("type", types)
		return prop
	}
	switch only := types[0].(type) {
	case string:
		prop.Set("type", only)
		return prop
	case *jschema.Object:
		return prop.Without("type").Merge(only)
	}
	prop.Set("type", types)
	return prop
}

func addPropertiesFromChoices(existing, choices *jschema.Object) (*jschema.Object, error) {
	if choices.Len() == 0 {
		if existing == nil {
			return jschema.NewObject(), nil
		}
		return existing, nil
	}

	type entry struct {
		name  string
		value *jschema.Object
		index float64
	}
	var entries []entry
	missing := false
	for name, v := range choices.All() {
		p := v.(*jschema.Object)
		idx, ok := jschema.Number(p.Object("choiceMeta").Value("index"))
		if !ok {
			missing = true
		}
		entries = append(entries, entry{name: name, value: p, index: idx})
	}
	if existing.Len() > 0 && missing {
		return nil, ErrMissingChoiceIndex
	}
	i := 0
	for name, v := range existing.All() {
		p, ok := v.(*jschema.Object)
		if !ok {
			continue
		}
		p = p.Clone()
		p.Set("choiceMeta", jschema.ObjectOf("index", i))
		entries = append(entries, entry{name: name, value: p, index: float64(i)})
		i++
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].index < entries[b].index })

	out := jschema.NewObject()
	for _, e := range entries {
		out.Set(e.name, e.value)
	}
	return out, nil
}

// CoerceDefault converts a default value according to the type it belongs to:
// the string "null" becomes null for null types, numeric strings become numbers.
func CoerceDefault(typ string, v any) any {
	switch typ {
	case "null":
		if v == "null" {
			return nil
		}
	case "number":
		if s, ok := v.(string); ok {
			if n, ok := parseNumber(strings.TrimSpace(s)); ok {
				return n
			}
		}
	}
	return v
}

var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// parseNumber accepts JSON number literals only. Integers keep every digit;
// fractions and exponents are normalized.
func parseNumber(s string) (json.Number, bool) {
	if !numberLiteral.MatchString(s) {
		return "", false
	}
	if !strings.ContainsAny(s, ".eE") {
		return json.Number(s), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return json.Number(s), true
	}
	return jsonNumber(f), true
}

func jsonNumber(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

func dedupe(types []any) []any {
	seen := make(map[string]bool, len(types))
	out := make([]any, 0, len(types))
	for _, t := range types {
		key := typeKey(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func typeKey(t any) string {
	obj, ok := t.(*jschema.Object)
	if !ok {
		return fmt.Sprint(t)
	}
	typ := obj.String("type")
	if typ == "" || avro.IsNamedType(typ) || obj.Has("$ref") {
		return jschema.MustString(obj.Without("name", "choiceMeta"))
	}
	return typ
}

func removeChoices(s *jschema.Object) *jschema.Object {
	keys := make([]string, 0, 2*len(Keywords))
	for _, k := range Keywords {
		keys = append(keys, k, MetaKeyword(k))
	}
	return s.Without(keys...)
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return slices.Clone(t)
	default:
		return []any{t}
	}
}

func nonEmpty(items []any) []any {
	out := items[:0]
	for _, item := range items {
		if obj, ok := item.(*jschema.Object); ok && obj.Len() == 0 {
			continue
		}
		if item == nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

func firstString(obj *jschema.Object, keys ...string) string {
	for _, k := range keys {
		if s := obj.String(k); s != "" {
			return s
		}
	}
	return ""
}
