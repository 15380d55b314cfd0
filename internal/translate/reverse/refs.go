// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package reverse

import (
	"slices"
	"strings"

	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/logger"
)

// EmptyNamespace keys definitions of named types declared without a namespace.
const EmptyNamespace = "#emptyNamespace"

const localRefPrefix = "#/definitions/"

// Definitions collects the named types met during one reverse conversion,
// keyed by namespace and then by name, in insertion order.
type Definitions struct {
	namespaces []string
	byNS       map[string]*jschema.Object
	log        *logger.Logger
}

// NewDefinitions returns an empty definitions map. A nil logger discards
// warnings.
func NewDefinitions(log *logger.Logger) *Definitions {
	if log == nil {
		log = logger.NewNop()
	}
	return &Definitions{byNS: make(map[string]*jschema.Object), log: log}
}

// Add stores def under namespace and returns the reference descriptor that
// replaces the named type at its point of use.
func (d *Definitions) Add(namespace string, def *jschema.Object) *jschema.Object {
	if namespace == "" {
		namespace = EmptyNamespace
	}
	defs, ok := d.byNS[namespace]
	if !ok {
		defs = jschema.NewObject()
		d.byNS[namespace] = defs
		d.namespaces = append(d.namespaces, namespace)
	}
	name := def.String("name")
	defs.Set(name, def)

	descriptor := jschema.ObjectOf(
		"definitionName", name,
		"$ref", name,
		"name", name,
		"namespace", namespace,
	)
	if v, ok := def.Get("default"); ok {
		descriptor.Set("default", v)
	}
	return descriptor
}

// Find returns the definition stored under namespace and name, or nil.
func (d *Definitions) Find(namespace, name string) *jschema.Object {
	if namespace == "" {
		namespace = EmptyNamespace
	}
	return d.byNS[namespace].Object(name)
}

// All returns every definition keyed by name. Later namespaces win on clashes,
// each of which is logged.
func (d *Definitions) All() *jschema.Object {
	out := jschema.NewObject()
	from := make(map[string]string)
	for _, ns := range d.namespaces {
		for name, def := range d.byNS[ns].All() {
			if prev, ok := from[name]; ok {
				d.log.Warn("definition name clash across namespaces", nil, map[string]any{
					"name":      name,
					"dropped":   prev,
					"namespace": ns,
				})
			}
			from[name] = ns
			out.Set(name, def)
		}
	}
	return out
}

// UsedDefinitions lists the definitions reachable from schema through
// reference descriptors, following references inside definitions. The
// schema's own definitions keyword is not walked.
func (d *Definitions) UsedDefinitions(schema *jschema.Object) []string {
	return d.used(schema.Without("definitions"), nil)
}

func (d *Definitions) used(schema *jschema.Object, ancestors []string) []string {
	var used []string
	for node := range jschema.Traverse(schema) {
		if node.String("$ref") == "" {
			continue
		}
		name := node.String("definitionName")
		if name == "" || slices.Contains(ancestors, name) || slices.Contains(used, name) {
			continue
		}
		def := d.Find(node.String("namespace"), name)
		if def == nil {
			continue
		}
		used = append(used, name)
		chain := append(slices.Concat(ancestors, used), name)
		for _, nested := range d.used(def, chain) {
			if !slices.Contains(used, nested) {
				used = append(used, nested)
			}
		}
	}
	return used
}

// FilterUnused drops definitions the schema never reaches. Key order of the
// remaining definitions is preserved.
func (d *Definitions) FilterUnused(schema *jschema.Object) *jschema.Object {
	defs := schema.Object("definitions")
	if defs == nil {
		return schema
	}
	used := d.UsedDefinitions(schema)
	kept := jschema.NewObject()
	for name, def := range defs.All() {
		if slices.Contains(used, name) {
			kept.Set(name, def)
		}
	}
	out := schema.Clone()
	out.Set("definitions", kept)
	return out
}

// UpdateRefs rewrites reference descriptors into modeling references: local
// definitions become #/definitions/ pointers, collection references are kept
// and anything else is marked as a restricted external reference.
func (d *Definitions) UpdateRefs(schema *jschema.Object) *jschema.Object {
	return jschema.Map(schema, func(node *jschema.Object) *jschema.Object {
		ref := node.String("$ref")
		if ref == "" {
			return node
		}
		out := node.Pick("name", "description")
		switch {
		case d.Find(node.String("namespace"), node.String("definitionName")) != nil:
			out.Set("$ref", localRefPrefix+node.String("definitionName"))
			copyKeys(out, node, "nullable", "default")
		case strings.HasPrefix(ref, jschema.CollectionRefPrefix):
			out.Set("$ref", ref)
			copyKeys(out, node, "nullable", "default")
		default:
			out.Set("$ref", ref)
			out.Set("hackoladeMeta", jschema.ObjectOf("restrictExternalReferenceCreation", true))
			out.Set("type", "reference")
		}
		return out
	})
}

func copyKeys(dst, src *jschema.Object, keys ...string) {
	for _, k := range keys {
		if v, ok := src.Get(k); ok {
			dst.Set(k, v)
		}
	}
}
