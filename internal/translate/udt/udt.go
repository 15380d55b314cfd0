// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package udt tracks user-defined Avro types (named records, enums and fixed
// types) so that a name is defined once per document and referenced afterwards.
package udt

import (
	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/logger"
)

// Entry is a registered definition.
type Entry struct {
	Definition  avro.Schema
	Namespace   string
	Used        bool
	Collection  bool
	Subject     string
	Version     int
	CustomProps *jschema.Object
}

// CollectionRef points at another entity's schema.
type CollectionRef struct {
	Name      string
	Namespace string
	Subject   string
	Version   int
}

// Registry holds the definitions known while rendering a model.
// It is not safe for concurrent use.
type Registry struct {
	entries map[string]*Entry
	log     *logger.Logger
}

// New returns an empty registry. A nil logger discards warnings.
func New(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{entries: make(map[string]*Entry), log: log}
}

// Register stores def under name unless the name is already known.
func (r *Registry) Register(name string, def avro.Schema, customProps *jschema.Object) {
	if _, ok := r.entries[name]; ok {
		return
	}
	entry := &Entry{Definition: def, CustomProps: customProps}
	if c, ok := def.(*avro.Complex); ok {
		entry.Namespace = c.Namespace
	}
	r.entries[name] = entry
}

// RegisterCollection stores a reference to another entity's schema. It
// replaces a same-named local definition.
func (r *Registry) RegisterCollection(ref CollectionRef) {
	r.entries[ref.Name] = &Entry{
		Definition: avro.Reference(avro.QualifiedName(ref.Namespace, ref.Name)),
		Namespace:  ref.Namespace,
		Collection: true,
		Subject:    ref.Subject,
		Version:    ref.Version,
	}
}

// Lookup finds the entry for name; a namespace qualification is ignored.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	_, bare := avro.SplitName(name)
	e, ok := r.entries[bare]
	return e, ok
}

// Default returns the default carried by a named definition.
func (r *Registry) Default(name string) (any, bool) {
	e, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	c, ok := e.Definition.(*avro.Complex)
	if !ok || !avro.IsNamedType(c.Type) {
		return nil, false
	}
	return c.Attr("default")
}

// ResetUsage clears every used flag, keeping the definitions.
func (r *Registry) ResetUsage() {
	for _, e := range r.entries {
		e.Used = false
	}
}

// Scope opens a new document: usage is reset so the first reference to each
// definition is inlined again.
func (r *Registry) Scope() *Scope {
	r.ResetUsage()
	return &Scope{r}
}

// Scope is the registry as seen while converting one document.
type Scope struct {
	*Registry
}

// ResolveOrDefine stores candidate as the definition of its name when the
// name is new and returns it inline. A known name yields a reference carrying
// refAttrs; a structural mismatch with the stored definition is logged.
func (s *Scope) ResolveOrDefine(candidate *avro.Complex, refAttrs *jschema.Object) avro.Schema {
	entry, ok := s.Lookup(candidate.Name)
	if !ok {
		s.entries[candidate.Name] = &Entry{
			Definition: avro.Clone(candidate),
			Namespace:  candidate.Namespace,
			Used:       true,
		}
		return candidate
	}
	if !entry.Collection && !avro.SameStructure(candidate, entry.Definition) {
		s.log.Warn("named type redefined with a different structure", nil, map[string]any{
			"name": candidate.Name,
			"diff": avro.StructureDiff(entry.Definition, candidate),
		})
	}
	return avro.RefTo(candidate.Name, refAttrs)
}

// Define stores c under its name if the name is new and marks the entry as
// used, so that later references render as names. It is used for document roots.
func (s *Scope) Define(c *avro.Complex) {
	if _, ok := s.Lookup(c.Name); !ok {
		s.entries[c.Name] = &Entry{Definition: avro.Clone(c), Namespace: c.Namespace}
	}
	entry, _ := s.Lookup(c.Name)
	entry.Used = true
}

// Resolve expands references in a converted document: the first use of an
// unused definition is inlined, later uses become qualified names.
func (s *Scope) Resolve(schema avro.Schema) avro.Schema {
	return avro.Map(schema, s.resolveNode)
}

func (s *Scope) resolveNode(node avro.Schema) avro.Schema {
	switch n := node.(type) {
	case avro.Reference:
		return s.expand(string(n))
	case *avro.Complex:
		if avro.IsType(n.Type) {
			if _, ok := s.Lookup(n.Type); !ok {
				s.markInline(n)
				return n
			}
		}
		return s.merge(n, s.expand(n.Type))
	}
	return node
}

// markInline records that a named type is defined inline in the current
// document, so later references to it render as names.
func (s *Scope) markInline(c *avro.Complex) {
	if !avro.IsNamedType(c.Type) || c.Name == "" {
		return
	}
	entry, ok := s.Lookup(c.Name)
	if !ok {
		s.entries[c.Name] = &Entry{Definition: avro.Clone(c), Namespace: c.Namespace, Used: true}
		return
	}
	if !entry.Collection {
		entry.Used = true
	}
}

func (s *Scope) expand(name string) avro.Schema {
	entry, ok := s.Lookup(name)
	if !ok || entry.Used || entry.Collection {
		return avro.Reference(s.Qualify(name))
	}
	def := avro.Clone(entry.Definition)
	if isNamedDefinition(def) {
		entry.Used = true
		c, ok := def.(*avro.Complex)
		if !ok {
			return def
		}
		for k, v := range entry.CustomProps.All() {
			if !c.Attrs.Has(k) {
				c.SetAttr(k, v)
			}
		}
		return s.referenceRendered(c)
	}
	return avro.Map(def, s.namedToReference)
}

// referenceRendered replaces the named types nested in def that the document
// already defines with references to them.
func (s *Scope) referenceRendered(def *avro.Complex) avro.Schema {
	return avro.Map(def, func(node avro.Schema) avro.Schema {
		c, ok := node.(*avro.Complex)
		if !ok || c == def || !avro.IsNamedType(c.Type) || c.Name == "" {
			return node
		}
		if entry, known := s.Lookup(c.Name); !known || !entry.Used {
			return node
		}
		return avro.RefTo(s.Qualify(c.Name), c.Attrs.Pick(avro.GeneralAttributes...).Without("default"))
	})
}

func (s *Scope) namedToReference(node avro.Schema) avro.Schema {
	c, ok := node.(*avro.Complex)
	if !ok || !avro.IsNamedType(c.Type) {
		return node
	}
	if entry, known := s.Lookup(c.Name); !known || !entry.Used {
		s.entries[c.Name] = &Entry{Definition: avro.Clone(c), Namespace: c.Namespace}
	}
	return avro.RefTo(c.Name, c.Attrs.Pick(avro.GeneralAttributes...).Without("default"))
}

// merge combines a reference carrying attributes with what it expanded to.
func (s *Scope) merge(wrapper *avro.Complex, expanded avro.Schema) avro.Schema {
	switch e := expanded.(type) {
	case *avro.Complex:
		out := *e
		out.Attrs = wrapper.Attrs.Merge(e.Attrs)
		if wrapper.Name != "" {
			out.Name = wrapper.Name
		}
		return &out
	case avro.Reference:
		return avro.RefTo(string(e), wrapper.Attrs)
	case avro.Primitive:
		return avro.Simplify(&avro.Complex{Type: string(e), Attrs: wrapper.Attrs.Clone()})
	}
	return expanded
}

// Qualify prefixes name with the namespace of its definition, if any.
func (s *Scope) Qualify(name string) string {
	entry, ok := s.Lookup(name)
	if !ok || entry.Namespace == "" {
		return name
	}
	_, bare := avro.SplitName(name)
	return avro.QualifiedName(entry.Namespace, bare)
}

func isNamedDefinition(def avro.Schema) bool {
	switch d := def.(type) {
	case avro.Primitive:
		return avro.IsNamedType(string(d))
	case avro.Reference:
		return avro.IsNamedType(string(d))
	case avro.Union:
		for _, alt := range d {
			if isNamedDefinition(alt) {
				return true
			}
		}
		return false
	case *avro.Complex:
		return avro.IsNamedType(d.Type)
	}
	return false
}
