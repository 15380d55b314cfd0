// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package avrofile reads the Avro schema held by a schema file, a registry
// export or an object container file.
package avrofile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"

	"github.com/linkedin/goavro/v2"

	"github.com/dacolabs/avrobridge/internal/jschema"
)

// ErrUnsupportedFile is returned for a file whose extension is not recognized.
var ErrUnsupportedFile = errors.New("file is not recognized as Avro schema or data")

// Extensions lists the recognized file extensions.
var Extensions = []string{".avro", ".avsc", ".confluent-avro", ".azureSchemaRegistry-avro", ".pulsarSchemaRegistry-avro"}

// Content is what a file holds: the decoded schema document and the keys
// that surrounded it when it was wrapped in a registry response.
type Content struct {
	Schema any
	Meta   *jschema.Object
}

// Read loads the schema of name from fsys.
func Read(fsys fs.FS, name string) (*Content, error) {
	ext := path.Ext(name)
	if !slices.Contains(Extensions, ext) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}

	var text string
	var err error
	if ext == ".avro" {
		text, err = containerSchema(fsys, name)
	} else {
		var data []byte
		data, err = fs.ReadFile(fsys, name)
		text = string(data)
	}
	if err != nil {
		return nil, err
	}
	return Parse(text)
}

// Parse decodes schema text. A registry wrapper such as
// {"schema": "<avro json>", "subject": ...} is unwrapped and its other keys
// are returned as metadata.
func Parse(text string) (*Content, error) {
	doc, err := jschema.DecodeJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	obj, ok := doc.(*jschema.Object)
	if !ok || obj.Has("type") {
		return &Content{Schema: doc, Meta: jschema.NewObject()}, nil
	}
	inner, ok := obj.Value("schema").(string)
	if !ok {
		return &Content{Schema: doc, Meta: jschema.NewObject()}, nil
	}
	schema, err := jschema.DecodeJSON([]byte(inner))
	if err != nil {
		return nil, fmt.Errorf("failed to parse wrapped schema: %w", err)
	}
	return &Content{Schema: schema, Meta: obj.Without("schema")}, nil
}

// containerSchema returns the schema stored in the header of an object
// container file. Data blocks are not read.
func containerSchema(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ocf, err := goavro.NewOCFReader(bufio.NewReader(f))
	if err != nil {
		return "", fmt.Errorf("failed to read container %s: %w", name, err)
	}
	return ocf.Codec().Schema(), nil
}
