// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package engine

import (
	"bytes"
	"encoding/json"

	"github.com/mitchellh/mapstructure"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/registry"
)

// Document is a JSON document sent by the host, either inline or as a JSON
// string holding the document text.
type Document json.RawMessage

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append((*d)[0:0], data...)
	return nil
}

// Object decodes d keeping key order. Anything that is not an object,
// including malformed text, yields an empty object.
func (d Document) Object() *jschema.Object {
	raw := bytes.TrimSpace(d)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return jschema.NewObject()
		}
		return jschema.ParseObject(text)
	}
	return jschema.ParseObject(string(raw))
}

// ScriptOptions select how scripts are rendered.
type ScriptOptions struct {
	ScriptType     string `json:"scriptType,omitempty"`
	Minify         bool   `json:"minify,omitempty"`
	IncludeSamples bool   `json:"includeSamples,omitempty"`
}

// EntityInput is a single entity with the definitions it may use.
type EntityInput struct {
	ContainerData       map[string]any `json:"containerData"`
	EntityData          map[string]any `json:"entityData"`
	ModelData           map[string]any `json:"modelData"`
	JSONSchema          Document       `json:"jsonSchema"`
	JSONData            Document       `json:"jsonData,omitempty"`
	InternalDefinitions Document       `json:"internalDefinitions,omitempty"`
	ExternalDefinitions Document       `json:"externalDefinitions,omitempty"`
	ModelDefinitions    Document       `json:"modelDefinitions,omitempty"`
	Options             ScriptOptions  `json:"options"`
}

// ModelInput is a whole model: containers of entities plus the definitions
// shared by all of them.
type ModelInput struct {
	Containers          []Container      `json:"containers"`
	ExternalDefinitions Document         `json:"externalDefinitions,omitempty"`
	ModelDefinitions    Document         `json:"modelDefinitions,omitempty"`
	ModelData           []map[string]any `json:"modelData"`
	Options             ScriptOptions    `json:"options"`
}

// Container groups entities by id. The per-entity maps are keyed by entity id.
type Container struct {
	ContainerData       []map[string]any            `json:"containerData"`
	Entities            []string                    `json:"entities"`
	JSONSchema          map[string]Document         `json:"jsonSchema"`
	JSONData            map[string]Document         `json:"jsonData"`
	EntityData          map[string][]map[string]any `json:"entityData"`
	InternalDefinitions map[string]Document         `json:"internalDefinitions"`
}

type containerData struct {
	Name            string `mapstructure:"name"`
	SchemaGroupName string `mapstructure:"schemaGroupName"`
}

type entityData struct {
	Code                   string `mapstructure:"code"`
	Name                   string `mapstructure:"name"`
	CollectionName         string `mapstructure:"collectionName"`
	PulsarTopicName        string `mapstructure:"pulsarTopicName"`
	IsNonPersistentTopic   bool   `mapstructure:"isNonPersistentTopic"`
	SchemaType             string `mapstructure:"schemaType"`
	ConfluentSubjectName   string `mapstructure:"confluentSubjectName"`
	ConfluentCompatibility string `mapstructure:"confluentCompatibility"`
	ConfluentVersion       int    `mapstructure:"confluentVersion"`
}

type modelData struct {
	SchemaTopic        string `mapstructure:"schemaTopic"`
	SchemaNameStrategy string `mapstructure:"schemaNameStrategy"`
}

func decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// settings derives the render settings of an entity from host data.
func settings(container, entity, model map[string]any) (registry.Settings, entityData, error) {
	var c containerData
	var e entityData
	var m modelData
	for _, d := range []struct {
		in  map[string]any
		out any
	}{{container, &c}, {entity, &e}, {model, &m}} {
		if err := decode(d.in, d.out); err != nil {
			return registry.Settings{}, e, err
		}
	}

	name := e.Code
	if name == "" {
		name = e.Name
	}
	if name == "" {
		name = e.CollectionName
	}
	persistence := "persistent"
	if e.IsNonPersistentTopic {
		persistence = "non-persistent"
	}
	return registry.Settings{
		Name:                   avro.SanitizeName(name),
		Namespace:              c.Name,
		Topic:                  e.PulsarTopicName,
		Persistence:            persistence,
		SchemaGroupName:        c.SchemaGroupName,
		SchemaType:             e.SchemaType,
		SchemaTopic:            m.SchemaTopic,
		SchemaNameStrategy:     m.SchemaNameStrategy,
		ConfluentSubjectName:   e.ConfluentSubjectName,
		ConfluentCompatibility: e.ConfluentCompatibility,
	}, e, nil
}

func first[T any](list []T) T {
	var zero T
	if len(list) == 0 {
		return zero
	}
	return list[0]
}
