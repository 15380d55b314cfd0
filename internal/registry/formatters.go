// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package registry

import (
	"fmt"
	"strings"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
)

const azureAPIVersion = "2020-09-01-preview"

// confluentFormatter renders an optional compatibility request followed by
// the subject version request. The schema always travels as a string, which
// is what the Confluent API accepts.
type confluentFormatter struct{}

func (confluentFormatter) Name() string { return Confluent }

func (confluentFormatter) Format(schema avro.Schema, s Settings, _ bool) (string, error) {
	text, err := avro.Marshal(schema, "")
	if err != nil {
		return "", err
	}
	body := jschema.ObjectOf("schema", text, "schemaType", "AVRO")
	if len(s.References) > 0 {
		refs := make([]any, len(s.References))
		for i, r := range s.References {
			refs[i] = jschema.ObjectOf("name", r.Name, "subject", r.Subject, "version", r.Version)
		}
		body.Set("references", refs)
	}
	payload, err := marshal(body, false)
	if err != nil {
		return "", err
	}

	subject := SubjectName(s)
	var b strings.Builder
	if s.ConfluentCompatibility != "" {
		fmt.Fprintf(&b, "PUT /config/%s HTTP/1.1\n{ \"compatibility\": \"%s\" }\n\n", subject, s.ConfluentCompatibility)
	}
	fmt.Fprintf(&b, "POST /subjects/%s/versions\n%s", subject, payload)
	return b.String(), nil
}

type azureFormatter struct{}

func (azureFormatter) Name() string { return Azure }

func (azureFormatter) Format(schema avro.Schema, s Settings, minify bool) (string, error) {
	payload, err := marshal(avro.ToJSON(schema), minify)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PUT /%s/schemas/%s?api-version=%s\n%s", s.SchemaGroupName, s.Name, azureAPIVersion, payload), nil
}

type pulsarFormatter struct{}

func (pulsarFormatter) Name() string { return Pulsar }

func (pulsarFormatter) Format(schema avro.Schema, s Settings, minify bool) (string, error) {
	body := jschema.ObjectOf(
		"type", "AVRO",
		"data", avro.ToJSON(schema),
		"properties", jschema.NewObject(),
	)
	payload, err := marshal(body, minify)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("POST /%s/%s/%s/schema\n%s", s.Persistence, s.Namespace, s.Topic, payload), nil
}

// genericFormatter wraps the compact schema text into {"schema": ...}.
type genericFormatter struct{}

func (genericFormatter) Name() string { return Generic }

func (genericFormatter) Format(schema avro.Schema, _ Settings, minify bool) (string, error) {
	text, err := avro.Marshal(schema, "")
	if err != nil {
		return "", err
	}
	return marshal(jschema.ObjectOf("schema", text), minify)
}

type commonFormatter struct{}

func (commonFormatter) Name() string { return Common }

func (commonFormatter) Format(schema avro.Schema, _ Settings, minify bool) (string, error) {
	return marshal(avro.ToJSON(schema), minify)
}
