// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_YAML(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"))
	schema, err := loader.LoadObject("simple.yaml")
	require.NoError(t, err)
	assert.Equal(t, "record", schema.String("type"))
	assert.Equal(t, []string{"name", "age"}, schema.Object("properties").Keys())
}

func TestLoadFile_JSON(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"))
	schema, err := loader.LoadObject("simple.json")
	require.NoError(t, err)
	assert.Equal(t, "record", schema.String("type"))
	assert.Equal(t, []string{"name", "age"}, schema.Object("properties").Keys())
}

func TestLoadFile_YAMLAndJSONAgree(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"))
	fromYAML, err := loader.LoadObject("simple.yaml")
	require.NoError(t, err)
	fromJSON, err := loader.LoadObject("simple.json")
	require.NoError(t, err)

	assert.Equal(t, MustString(fromJSON), MustString(fromYAML))
}

func TestLoadFile_NotFound(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"))
	_, err := loader.LoadFile("nonexistent.yaml")
	require.Error(t, err)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"schema.txt": &fstest.MapFile{Data: []byte("{}")},
	}
	loader := NewLoader(fsys)
	_, err := loader.LoadFile("schema.txt")
	require.Error(t, err)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"invalid.yaml": &fstest.MapFile{Data: []byte("{{invalid yaml")},
	}
	loader := NewLoader(fsys)
	_, err := loader.LoadFile("invalid.yaml")
	require.Error(t, err)
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"invalid.json": &fstest.MapFile{Data: []byte("{invalid json}")},
	}
	loader := NewLoader(fsys)
	_, err := loader.LoadFile("invalid.json")
	require.Error(t, err)
}

func TestLoadObject_NotAnObject(t *testing.T) {
	fsys := fstest.MapFS{
		"list.json": &fstest.MapFile{Data: []byte(`["a", "b"]`)},
	}
	loader := NewLoader(fsys)
	_, err := loader.LoadObject("list.json")
	require.Error(t, err)
}

func TestResolveRefs_SimpleFileRef(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"))
	schema, err := loader.LoadObject("with-file-ref.yaml")
	require.NoError(t, err)

	data := schema.Object("properties").Object("data")
	assert.Equal(t, "./external.yaml", data.String("$ref"))

	err = loader.ResolveRefs(schema, ".")
	require.NoError(t, err)

	data = schema.Object("properties").Object("data")
	assert.False(t, data.Has("$ref"))
	assert.Equal(t, "Data", data.String("name"))
	assert.Equal(t, []string{"id", "value"}, data.Object("properties").Keys())
}

func TestResolveRefs_NestedFileRefs(t *testing.T) {
	loader := NewLoader(os.DirFS("testdata"))
	schema, err := loader.LoadObject("nested/main.yaml")
	require.NoError(t, err)

	err = loader.ResolveRefs(schema, "nested")
	require.NoError(t, err)

	leaf := schema.Object("properties").Object("child").Object("properties").Object("leaf")
	assert.Equal(t, "Data", leaf.String("name"))
}

func TestResolveRefs_InternalRefsUntouched(t *testing.T) {
	schema := ObjectOf("properties", ObjectOf("a", ObjectOf("$ref", "#/definitions/A")))
	loader := NewLoader(fstest.MapFS{})

	require.NoError(t, loader.ResolveRefs(schema, "."))
	assert.Equal(t, "#/definitions/A", schema.Object("properties").Object("a").String("$ref"))
}
