// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package reverse

import (
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/registry"
)

// Metadata holds the registry keys an Avro document may carry next to its
// schema.
type Metadata struct {
	Namespace            string `mapstructure:"-" json:"namespace"`
	SchemaGroupName      string `mapstructure:"schemaGroupName" json:"schemaGroupName,omitempty"`
	SchemaRegistryType   string `mapstructure:"schemaRegistryType" json:"schemaRegistryType,omitempty"`
	SchemaRegistryURL    string `mapstructure:"schemaRegistryUrl" json:"schemaRegistryUrl,omitempty"`
	ConfluentSubjectName string `mapstructure:"confluentSubjectName" json:"confluentSubjectName,omitempty"`
	SchemaTopic          string `mapstructure:"schemaTopic" json:"schemaTopic,omitempty"`
	SchemaType           string `mapstructure:"schemaType" json:"schemaType,omitempty"`
}

// MetadataOf decodes the registry keys of attrs.
func MetadataOf(attrs *jschema.Object) (Metadata, error) {
	var meta Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &meta,
	})
	if err != nil {
		return meta, err
	}
	if err := dec.Decode(attrs.Map()); err != nil {
		return meta, err
	}
	return meta, nil
}

// Package is one reverse-engineered entity placed into its container.
type Package struct {
	ObjectNames ObjectNames     `json:"objectNames"`
	Doc         PackageDoc      `json:"doc"`
	JSONSchema  *jschema.Object `json:"jsonSchema"`
}

// ObjectNames names the entity of a package.
type ObjectNames struct {
	CollectionName string `json:"collectionName"`
}

// PackageDoc places the entity into a container named after its namespace.
type PackageDoc struct {
	DBName         string     `json:"dbName"`
	CollectionName string     `json:"collectionName"`
	BucketInfo     BucketInfo `json:"bucketInfo"`
}

// BucketInfo describes the container of an entity.
type BucketInfo struct {
	Name string `json:"name"`
}

// Packages builds one package per converted document. base holds metadata
// found around the schema, such as a registry response wrapper; keys on a
// root override it.
func Packages(docs []Document, base *jschema.Object) ([]Package, []Metadata, error) {
	packages := make([]Package, 0, len(docs))
	metas := make([]Metadata, 0, len(docs))
	for _, doc := range docs {
		meta, err := MetadataOf(base.Merge(attrsOf(doc.Source)))
		if err != nil {
			return nil, nil, err
		}
		meta.Namespace = doc.Namespace()
		metas = append(metas, meta)

		title := doc.Schema.String("title")
		schema := doc.Schema.Clone()
		setNonEmpty(schema, "schemaType", meta.SchemaType)
		setNonEmpty(schema, "schemaTopic", meta.SchemaTopic)
		setNonEmpty(schema, "schemaGroupName", meta.SchemaGroupName)
		setNonEmpty(schema, "confluentSubjectName", meta.ConfluentSubjectName)
		if strategy := InferNameStrategy(title, meta.Namespace, meta.ConfluentSubjectName, meta.SchemaTopic); strategy != "" {
			schema.Set("schemaNameStrategy", strategy)
		}

		packages = append(packages, Package{
			ObjectNames: ObjectNames{CollectionName: title},
			Doc: PackageDoc{
				DBName:         meta.Namespace,
				CollectionName: title,
				BucketInfo:     BucketInfo{Name: meta.Namespace},
			},
			JSONSchema: schema,
		})
	}
	return packages, metas, nil
}

// InferNameStrategy guesses the naming strategy that produced subject for a
// record called name. It returns "" when no strategy matches.
func InferNameStrategy(name, namespace, subject, topic string) string {
	if subject == "" {
		return ""
	}
	parts := splitNonEmpty(subject, "-")
	if n := len(parts); n > 0 && (parts[n-1] == "key" || parts[n-1] == "value") {
		parts = parts[:n-1]
	}
	startsWithTopic := len(parts) > 0 && parts[0] == topic
	if startsWithTopic {
		parts = parts[1:]
		if len(parts) == 0 {
			if name == topic {
				return registry.RecordNameStrategy
			}
			return registry.TopicNameStrategy
		}
	}
	if len(parts) > 0 && parts[0] == namespace {
		parts = parts[1:]
	}
	if !slices.Equal(splitNonEmpty(name, "-"), parts) {
		return ""
	}
	if startsWithTopic {
		return registry.TopicRecordNameStrategy
	}
	return registry.RecordNameStrategy
}

func setNonEmpty(obj *jschema.Object, key, v string) {
	if v != "" {
		obj.Set(key, v)
	}
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
