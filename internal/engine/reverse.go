// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package engine

import (
	"io/fs"

	"github.com/pkg/errors"

	"github.com/dacolabs/avrobridge/internal/avrofile"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/registry"
	"github.com/dacolabs/avrobridge/internal/translate/reverse"
)

// ReverseResult is what a reverse-engineered file yields.
type ReverseResult struct {
	Packages           []reverse.Package `json:"packages"`
	SchemaRegistryType string            `json:"schemaRegistryType,omitempty"`
	SchemaRegistryURL  string            `json:"schemaRegistryUrl,omitempty"`
}

// ReverseFromFile converts the Avro schema of name into modeling packages.
func (e *Engine) ReverseFromFile(fsys fs.FS, name string) (*ReverseResult, error) {
	res, err := e.reverseFromFile(fsys, name)
	if err != nil {
		return nil, e.fail(err, "Parsing Avro Schema Error")
	}
	return res, nil
}

func (e *Engine) reverseFromFile(fsys fs.FS, name string) (*ReverseResult, error) {
	content, err := avrofile.Read(fsys, name)
	if err != nil {
		return nil, err
	}

	base := content.Meta.Clone()
	if subject := base.String("subject"); subject != "" && !base.Has("confluentSubjectName") {
		base.Set("confluentSubjectName", subject)
	}

	docs, err := reverse.Convert(content.Schema, reverse.Options{
		FieldKeywords:  e.cfg.FieldKeywords,
		EntityKeywords: e.cfg.EntityKeywords,
		Subject:        base.String("confluentSubjectName"),
		Topic:          base.String("schemaTopic"),
		Logger:         e.log,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "converting %s", name)
	}
	packages, metas, err := reverse.Packages(docs, base)
	if err != nil {
		return nil, errors.Wrapf(err, "reading registry metadata of %s", name)
	}

	res := &ReverseResult{Packages: packages}
	if len(metas) > 0 {
		res.SchemaRegistryType = metas[0].SchemaRegistryType
		res.SchemaRegistryURL = metas[0].SchemaRegistryURL
	}
	return res, nil
}

// Validate checks a rendered script. An empty script type falls back to the
// configured one.
func (e *Engine) Validate(script, scriptType string) []registry.Message {
	if scriptType == "" {
		scriptType = e.scriptOptions(ScriptOptions{}).ScriptType
	}
	return e.validator.Validate(script, scriptType)
}

// AdaptResult is an adapted JSON Schema and entity name.
type AdaptResult struct {
	JSONSchema     string `json:"jsonSchema"`
	JSONSchemaName string `json:"jsonSchemaName"`
}

// Adapt rewrites a standard JSON Schema so that it converts cleanly to Avro.
func (e *Engine) Adapt(schemaText, name string) (*AdaptResult, error) {
	e.log.Info("Adaptation of JSON Schema started", nil)
	schema, err := jschema.DecodeObject([]byte(schemaText))
	if err != nil {
		return nil, e.fail(errors.Wrap(err, "parsing JSON Schema"), "Adapt JSON Schema")
	}
	adapted := jschema.MustString(reverse.Adapt(schema))
	e.log.Info("Adaptation of JSON Schema finished", nil)
	return &AdaptResult{JSONSchema: adapted, JSONSchemaName: reverse.AdaptName(name)}, nil
}
