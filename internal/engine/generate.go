// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package engine

import (
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/registry"
	"github.com/dacolabs/avrobridge/internal/translate/forward"
	"github.com/dacolabs/avrobridge/internal/translate/udt"
)

// Output is a rendered script together with the sample data of the rendered
// entities when samples were requested.
type Output struct {
	Script  string `json:"script"`
	Samples string `json:"samples,omitempty"`
}

// entity is one entity of a model ready to be rendered.
type entity struct {
	id       string
	schema   *jschema.Object
	data     *jschema.Object
	internal *jschema.Object
	settings registry.Settings
	version  int
	deps     []string
}

// GenerateScript renders a single entity. External, model and internal
// definitions are registered before the entity is converted.
func (e *Engine) GenerateScript(in EntityInput) (*Output, error) {
	out, err := e.generateScript(in, e.scriptOptions(in.Options))
	if err != nil {
		return nil, e.fail(err, "Avro Forward-Engineering Error")
	}
	return out, nil
}

func (e *Engine) generateScript(in EntityInput, opts ScriptOptions) (*Output, error) {
	reg := udt.New(e.log)
	schema := in.JSONSchema.Object()
	for _, defs := range []*jschema.Object{
		in.ExternalDefinitions.Object(),
		in.ModelDefinitions.Object(),
		internalDefinitions(in.InternalDefinitions.Object(), schema),
	} {
		if err := e.register(reg, defs); err != nil {
			return nil, err
		}
	}

	s, _, err := settings(in.ContainerData, in.EntityData, in.ModelData)
	if err != nil {
		return nil, errors.Wrap(err, "decoding entity settings")
	}
	script, err := e.render(reg, schema, s, opts)
	if err != nil {
		return nil, err
	}

	out := &Output{Script: script}
	if data := in.JSONData.Object(); opts.IncludeSamples && data.Len() > 0 {
		out.Samples = samples([]any{data})
	}
	return out, nil
}

// GenerateModelScript renders every entity of a model. Entities referenced
// by other entities are rendered first. A failing entity is logged and left
// out; only a failure of the shared definitions fails the whole model.
func (e *Engine) GenerateModelScript(in ModelInput) (*Output, error) {
	opts := e.scriptOptions(in.Options)
	reg := udt.New(e.log)
	for _, defs := range []*jschema.Object{in.ExternalDefinitions.Object(), in.ModelDefinitions.Object()} {
		if err := e.register(reg, defs); err != nil {
			return nil, e.fail(err, "Avro model Forward-Engineering Error")
		}
	}

	entities := e.entities(in.Containers, first(in.ModelData))
	byName := make(map[string]*entity, len(entities))
	for _, ent := range entities {
		byName[ent.settings.Name] = ent
	}
	ordered := registry.Ordered(entities,
		func(ent *entity) string { return ent.settings.Name },
		func(ent *entity) []string { return ent.deps },
	)

	var scripts []string
	var data []any
	for _, ent := range ordered {
		script, err := e.renderEntity(reg, ent, byName, opts)
		if err != nil {
			e.fail(err, "Avro Forward-Engineering Error")
			continue
		}
		if script != "" {
			scripts = append(scripts, script)
		}
		if ent.data.Len() > 0 {
			data = append(data, ent.data)
		}
	}

	out := &Output{Script: strings.Join(scripts, "\n\n")}
	if opts.IncludeSamples && len(data) > 0 {
		out.Samples = samples(data)
	}
	return out, nil
}

func (e *Engine) entities(containers []Container, model map[string]any) []*entity {
	var out []*entity
	for _, c := range containers {
		for _, id := range c.Entities {
			s, data, err := settings(first(c.ContainerData), first(c.EntityData[id]), model)
			if err != nil {
				e.fail(errors.Wrapf(err, "decoding settings of entity %s", id), "Avro Forward-Engineering Error")
				continue
			}
			version := data.ConfluentVersion
			if version == 0 {
				version = 1
			}
			schema := c.JSONSchema[id].Object()
			out = append(out, &entity{
				id:       id,
				schema:   schema,
				data:     c.JSONData[id].Object(),
				internal: c.InternalDefinitions[id].Object(),
				settings: s,
				version:  version,
				deps:     collectionRefs(schema, s.Name),
			})
		}
	}
	return out
}

func (e *Engine) renderEntity(reg *udt.Registry, ent *entity, byName map[string]*entity, opts ScriptOptions) (string, error) {
	if err := e.register(reg, internalDefinitions(ent.internal, ent.schema)); err != nil {
		return "", errors.Wrapf(err, "entity %s", ent.id)
	}

	var refs []registry.Reference
	for _, dep := range ent.deps {
		target, ok := byName[dep]
		if !ok {
			e.log.Warn("collection reference target not found", nil, map[string]any{
				"entity":    ent.settings.Name,
				"reference": dep,
			})
			continue
		}
		subject := registry.SubjectName(target.settings)
		reg.RegisterCollection(udt.CollectionRef{
			Name:      target.settings.Name,
			Namespace: target.settings.Namespace,
			Subject:   subject,
			Version:   target.version,
		})
		refs = append(refs, registry.Reference{
			Name:    avro.QualifiedName(target.settings.Namespace, target.settings.Name),
			Subject: subject,
			Version: target.version,
		})
	}

	s := ent.settings
	s.References = registry.OrderReferences(refs, func(name string) []string {
		_, bare := avro.SplitName(name)
		var deps []string
		if target, ok := byName[bare]; ok {
			for _, d := range target.deps {
				if t, ok := byName[d]; ok {
					deps = append(deps, avro.QualifiedName(t.settings.Namespace, t.settings.Name))
				}
			}
		}
		return deps
	})

	script, err := e.render(reg, ent.schema, s, opts)
	if err != nil {
		return "", errors.Wrapf(err, "entity %s", ent.id)
	}
	return script, nil
}

// render converts an entity schema in a fresh scope of reg and formats it.
func (e *Engine) render(reg *udt.Registry, schema *jschema.Object, s registry.Settings, opts ScriptOptions) (string, error) {
	root, err := forward.New(reg.Scope(), e.cfg.FieldKeywords).Root(schema, s.Name)
	if err != nil {
		return "", errors.Wrap(err, "converting schema")
	}
	if rec, ok := root.(*avro.Complex); ok {
		for _, key := range e.cfg.EntityKeywords(schema) {
			if v, ok := schema.Get(key); ok && !rec.Attrs.Has(key) {
				rec.SetAttr(key, v)
			}
		}
	}
	s.References = referenced(root, s.References)
	script, err := registry.Format(opts.ScriptType, root, s, opts.Minify)
	if err != nil {
		return "", errors.Wrap(err, "formatting script")
	}
	return script, nil
}

func (e *Engine) register(reg *udt.Registry, defs *jschema.Object) error {
	if defs.Object("properties").Len() == 0 {
		return nil
	}
	if err := forward.New(reg.Scope(), e.cfg.FieldKeywords).RegisterDefinitions(defs); err != nil {
		return errors.Wrap(err, "registering definitions")
	}
	return nil
}

func (e *Engine) scriptOptions(o ScriptOptions) ScriptOptions {
	if o.ScriptType == "" {
		o.ScriptType = e.cfg.Options.ScriptType
	}
	if o.ScriptType == "" {
		o.ScriptType = registry.Confluent
	}
	o.Minify = o.Minify || e.cfg.Options.Minify
	o.IncludeSamples = o.IncludeSamples || e.cfg.Options.IncludeSamples
	return o
}

// internalDefinitions falls back to the definitions embedded in the entity
// schema when the host sent none.
func internalDefinitions(defs, schema *jschema.Object) *jschema.Object {
	if defs.Object("properties").Len() > 0 {
		return defs
	}
	if embedded := schema.Object("definitions"); embedded.Len() > 0 {
		return jschema.ObjectOf("properties", embedded)
	}
	return defs
}

// collectionRefs lists the entities schema points at through collection
// references, without self references.
func collectionRefs(schema *jschema.Object, self string) []string {
	var names []string
	for node := range jschema.Traverse(schema) {
		ref := node.String("$ref")
		if !jschema.IsCollectionRef(ref) {
			continue
		}
		name := avro.SanitizeName(jschema.RefName(ref))
		if name != self && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// referenced keeps the references that root still points at after conversion.
func referenced(root avro.Schema, refs []registry.Reference) []registry.Reference {
	if len(refs) == 0 {
		return refs
	}
	names := avro.Fold(root, make(map[string]bool), func(acc map[string]bool, node avro.Schema) map[string]bool {
		switch n := node.(type) {
		case avro.Reference:
			acc[string(n)] = true
		case *avro.Complex:
			if !avro.IsType(n.Type) {
				acc[n.Type] = true
			}
		}
		return acc
	})
	return slices.DeleteFunc(slices.Clone(refs), func(r registry.Reference) bool { return !names[r.Name] })
}

func samples(data []any) string {
	var v any = data
	if len(data) == 1 {
		v = data[0]
	}
	out, err := jschema.Marshal(v, "    ")
	if err != nil {
		return ""
	}
	return string(out)
}
