// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/registry"
)

func TestConfig_LoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, FileName)

	cfg := Default()
	cfg.LogLevel = "warning"
	cfg.EntityLevel = []CustomProperty{{FieldKeyword: "owner", IncludeInScript: true}}

	err := cfg.Save(cfgPath)
	require.NoError(t, err)

	loaded, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, cfg, loaded)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "valid config",
			cfg:     Config{Version: 1},
			wantErr: "",
		},
		{
			name:    "unsupported version",
			cfg:     Config{Version: 99},
			wantErr: "unsupported config version",
		},
		{
			name:    "unknown log level",
			cfg:     Config{Version: 1, LogLevel: "loud"},
			wantErr: "LogLevel",
		},
		{
			name:    "unknown script type",
			cfg:     Config{Version: 1, Options: Options{ScriptType: "protobuf"}},
			wantErr: "ScriptType",
		},
		{
			name:    "empty keyword",
			cfg:     Config{Version: 1, EntityLevel: []CustomProperty{{IncludeInScript: true}}},
			wantErr: "FieldKeyword",
		},
		{
			name:    "unknown avro type",
			cfg:     Config{Version: 1, FieldLevel: map[string][]CustomProperty{"varchar": {{FieldKeyword: "x"}}}},
			wantErr: "unknown avro type",
		},
		{
			name:    "empty field keyword",
			cfg:     Config{Version: 1, FieldLevel: map[string][]CustomProperty{"string": {{}}}},
			wantErr: "FieldKeyword",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_SaveFormat(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, FileName)

	err := Default().Save(cfgPath)
	require.NoError(t, err)

	content, err := os.ReadFile(cfgPath) //nolint:gosec // test file path
	require.NoError(t, err)

	output := string(content)
	assert.Contains(t, output, "version: 1")
	assert.Contains(t, output, "scriptType: confluentSchemaRegistry")
}

func TestConfig_Load(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, registry.Azure, cfg.Options.ScriptType)
	assert.True(t, cfg.Options.Minify)
}

func TestConfig_Keywords(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"owner"}, cfg.EntityKeywords(nil))
	assert.Equal(t, []string{"pii"}, cfg.FieldKeywords("string", jschema.NewObject()))
	assert.Equal(t, []string{"pii", "mask"}, cfg.FieldKeywords("string", jschema.ObjectOf("pii", true)))
	assert.Nil(t, cfg.FieldKeywords("int", nil))

	assert.Equal(t, map[string][]string{
		"entity": {"owner"},
		"string": {"pii", "mask"},
	}, cfg.CustomPropertiesMap())

	var none *Config
	assert.Nil(t, none.FieldKeywords("string", nil))
	assert.Empty(t, none.CustomPropertiesMap())
}

func TestConfig_Load_NotFound(t *testing.T) {
	_, err := Load("testdata/nonexistent.yaml")
	assert.Error(t, err)
}

func TestConfig_Load_Invalid(t *testing.T) {
	_, err := Load("testdata/invalid.yaml")
	assert.Error(t, err)
}

func TestConfig_Save_InvalidPath(t *testing.T) {
	cfg := Config{Version: 1}

	err := cfg.Save("/nonexistent/directory/config.yaml")
	assert.Error(t, err)
}

func TestConfig_Load_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	emptyFile := filepath.Join(tmpDir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyFile, []byte(""), 0o600))

	_, err := Load(emptyFile)
	assert.Error(t, err)
}
