// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package config handles the avrobridge plugin configuration: logging,
// custom properties and default script options.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/logger"
	"github.com/dacolabs/avrobridge/internal/registry"
)

// CurrentConfigVersion is the current version of the config file format.
const CurrentConfigVersion = 1

// FileName is the config file looked up in the working directory.
const FileName = "avrobridge.yaml"

// Config represents the avrobridge.yaml plugin configuration file.
type Config struct {
	Version     int                         `yaml:"version"`
	LogLevel    string                      `yaml:"logLevel,omitempty"`
	EntityLevel []CustomProperty            `yaml:"entityLevel,omitempty"`
	FieldLevel  map[string][]CustomProperty `yaml:"fieldLevel,omitempty"`
	Options     Options                     `yaml:"options"`
}

// CustomProperty is a user-defined attribute copied between the modeling
// schema and the Avro schema.
type CustomProperty struct {
	FieldKeyword    string      `yaml:"fieldKeyword"`
	IncludeInScript bool        `yaml:"includeInScript"`
	Dependency      *Dependency `yaml:"dependency,omitempty"`
}

// Dependency limits a custom property to nodes where Key holds Value.
type Dependency struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Options are the defaults for rendering scripts.
type Options struct {
	ScriptType     string `yaml:"scriptType,omitempty"`
	Minify         bool   `yaml:"minify,omitempty"`
	IncludeSamples bool   `yaml:"includeSamples,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Options: Options{ScriptType: registry.Confluent},
	}
}

// Load reads a Config from a file path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the Config to a file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(c)
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if c.Version != CurrentConfigVersion {
		return errors.New("unsupported config version")
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In(anySlice(logger.Levels)...)),
		validation.Field(&c.EntityLevel),
		validation.Field(&c.FieldLevel, validation.By(validateFieldLevel)),
		validation.Field(&c.Options),
	)
}

// Validate implements validation.Validatable.
func (p CustomProperty) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FieldKeyword, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ScriptType, validation.In(anySlice(registry.Available())...)),
	)
}

func validateFieldLevel(value any) error {
	fieldLevel, _ := value.(map[string][]CustomProperty)
	for typ, props := range fieldLevel {
		if !slices.Contains(avro.Types, typ) {
			return fmt.Errorf("unknown avro type %q", typ)
		}
		if err := validation.Validate(props); err != nil {
			return fmt.Errorf("%s: %w", typ, err)
		}
	}
	return nil
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// FieldKeywords returns the custom property keywords emitted for a node of
// avroType with attributes attrs.
func (c *Config) FieldKeywords(avroType string, attrs *jschema.Object) []string {
	if c == nil {
		return nil
	}
	return keywords(c.FieldLevel[avroType], attrs)
}

// EntityKeywords returns the custom property keywords emitted for an entity
// with attributes attrs.
func (c *Config) EntityKeywords(attrs *jschema.Object) []string {
	if c == nil {
		return nil
	}
	return keywords(c.EntityLevel, attrs)
}

// CustomPropertiesMap lists the keywords included in scripts per Avro type.
// Entity keywords are listed under "entity".
func (c *Config) CustomPropertiesMap() map[string][]string {
	out := make(map[string][]string)
	if c == nil {
		return out
	}
	if kws := included(c.EntityLevel); len(kws) > 0 {
		out["entity"] = kws
	}
	for _, typ := range avro.Types {
		if kws := included(c.FieldLevel[typ]); len(kws) > 0 {
			out[typ] = kws
		}
	}
	return out
}

func included(props []CustomProperty) []string {
	var out []string
	for _, p := range props {
		if p.IncludeInScript {
			out = append(out, p.FieldKeyword)
		}
	}
	return out
}

func keywords(props []CustomProperty, attrs *jschema.Object) []string {
	var out []string
	for _, p := range props {
		if p.IncludeInScript && p.Dependency.matches(attrs) {
			out = append(out, p.FieldKeyword)
		}
	}
	return out
}

// matches reports whether attrs satisfy d. A dependency missing its key or
// value always matches.
func (d *Dependency) matches(attrs *jschema.Object) bool {
	if d == nil || d.Key == "" || d.Value == nil {
		return true
	}
	v, ok := attrs.Get(d.Key)
	return ok && jschema.MustString(v) == jschema.MustString(d.Value)
}
