// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package registry renders Avro schemas into the request scripts of the
// supported schema registries and validates such scripts.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
)

// Script types.
const (
	Confluent = "confluentSchemaRegistry"
	Azure     = "azureSchemaRegistry"
	Pulsar    = "pulsarSchemaRegistry"
	Generic   = "schemaRegistry"
	Common    = "common"
)

// ErrUnknownScriptType is returned for a script type no formatter is registered for.
var ErrUnknownScriptType = errors.New("unknown script type")

// Settings carries the entity and container data a script is rendered with.
type Settings struct {
	Name                   string
	Namespace              string
	Topic                  string
	Persistence            string
	SchemaGroupName        string
	SchemaType             string
	SchemaTopic            string
	SchemaNameStrategy     string
	ConfluentSubjectName   string
	ConfluentCompatibility string
	References             []Reference
}

// Reference points a Confluent schema at another registered subject.
type Reference struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

// Formatter renders a finished Avro schema for one script type.
type Formatter interface {
	// Name returns the script type, e.g. "confluentSchemaRegistry".
	Name() string

	// Format renders schema. minify drops indentation where the target allows it.
	Format(schema avro.Schema, settings Settings, minify bool) (string, error)
}

var formatters = make(map[string]Formatter)

func init() {
	Register(confluentFormatter{})
	Register(azureFormatter{})
	Register(pulsarFormatter{})
	Register(genericFormatter{})
	Register(commonFormatter{})
}

// Register adds a formatter to the registry.
func Register(f Formatter) {
	formatters[f.Name()] = f
}

// Get retrieves a formatter by script type.
func Get(name string) (Formatter, error) {
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScriptType, name)
	}
	return f, nil
}

// Available returns all registered script types, sorted.
func Available() []string {
	return slices.Sorted(maps.Keys(formatters))
}

// Format names the root after settings and renders it with the formatter
// registered for scriptType.
func Format(scriptType string, schema avro.Schema, settings Settings, minify bool) (string, error) {
	f, err := Get(scriptType)
	if err != nil {
		return "", err
	}
	return f.Format(nameRoot(schema, settings), settings, minify)
}

func nameRoot(schema avro.Schema, settings Settings) avro.Schema {
	root, ok := schema.(*avro.Complex)
	if !ok {
		return schema
	}
	out := *root
	if settings.Name != "" {
		out.Name = settings.Name
	}
	if settings.Namespace != "" {
		out.Namespace = settings.Namespace
	}
	return &out
}

func marshal(v any, minify bool) (string, error) {
	indent := "    "
	if minify {
		indent = ""
	}
	data, err := jschema.Marshal(v, indent)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
