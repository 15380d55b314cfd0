// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dacolabs/avrobridge/internal/registry"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	} else {
		var err error
		dir, err = filepath.Abs(dir)
		require.NoError(t, err)
	}
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	require.NoError(t, os.Chdir(dir))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name           string
		dir            string // relative to the package, empty means t.TempDir()
		opts           Options
		wantErr        error
		wantScriptType string // only checked if wantErr is nil
	}{
		{
			name:           "defaults without config file",
			wantScriptType: registry.Confluent,
		},
		{
			name:    "explicit config missing",
			opts:    Options{ConfigPath: "missing.yaml"},
			wantErr: ErrConfigNotFound,
		},
		{
			name:    "invalid config",
			dir:     "testdata/invalid",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "invalid log level flag",
			dir:     "testdata/valid",
			opts:    Options{LogLevel: "verbose"},
			wantErr: ErrInvalidConfig,
		},
		{
			name:           "valid",
			dir:            "testdata/valid",
			wantScriptType: registry.Pulsar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, tt.dir)

			ctx, err := Load(context.Background(), tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			s := From(ctx)
			require.NotNil(t, s)
			assert.Equal(t, tt.wantScriptType, s.Config.Options.ScriptType)
			assert.NotNil(t, s.Logger)
			assert.NotNil(t, s.Engine)
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	path, err := filepath.Abs("testdata/valid/avrobridge.yaml")
	require.NoError(t, err)
	chdir(t, "")

	ctx, err := Load(context.Background(), Options{ConfigPath: path})
	require.NoError(t, err)
	s := From(ctx)
	require.NotNil(t, s)
	assert.True(t, s.Config.Options.Minify)
	assert.Equal(t, []string{"owner"}, s.Config.EntityKeywords(nil))
}

func TestFrom_NoContextStored(t *testing.T) {
	assert.Nil(t, From(context.Background()))
}

func TestPreRunLoad(t *testing.T) {
	chdir(t, "testdata/valid")

	cmd := &cobra.Command{}
	cmd.Flags().String(ConfigFlag, "", "")
	cmd.Flags().String(LogLevelFlag, "", "")
	cmd.SetContext(context.Background())

	_, err := RequireFromCommand(cmd)
	require.Error(t, err)

	require.NoError(t, PreRunLoad(cmd, nil))
	s, err := RequireFromCommand(cmd)
	require.NoError(t, err)
	assert.Equal(t, registry.Pulsar, s.Config.Options.ScriptType)
}

func TestPreRunLoad_InvalidConfig(t *testing.T) {
	chdir(t, "testdata/invalid")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	assert.ErrorIs(t, PreRunLoad(cmd, nil), ErrInvalidConfig)
	assert.Nil(t, FromCommand(cmd))
}
