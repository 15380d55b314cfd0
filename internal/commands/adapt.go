// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/prompts"
	"github.com/dacolabs/avrobridge/internal/session"
)

type adaptOptions struct {
	name   string
	output string
}

func newAdaptCmd() *cobra.Command {
	opts := &adaptOptions{}

	cmd := &cobra.Command{
		Use:   "adapt <file>",
		Short: "Adapt a standard JSON Schema for Avro conversion",
		Long: `Rewrite a standard JSON Schema so that it converts cleanly to Avro:
names are sanitized, integers get an int mode and optional properties are
made nullable.`,
		Example: `  # Print the adapted schema
  avrobridge adapt customer.schema.json

  # Adapt into a file with an explicit entity name
  avrobridge adapt customer.schema.json --name Customer -o customer.json`,
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdapt(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Entity name (default is the schema title or file name)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func runAdapt(cmd *cobra.Command, path string, opts *adaptOptions) error {
	s, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return fmt.Errorf("%s is not a valid JSON Schema: %w", path, err)
	}

	name := opts.name
	if name == "" {
		name = schema.Title
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	res, err := s.Engine.Adapt(string(data), name)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), res.JSONSchema)
		return err
	}
	out, err := jschema.Marshal(json.RawMessage(res.JSONSchema), "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}
	if err := os.WriteFile(opts.output, out, 0o600); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}
	prompts.PrintResult(cmd.OutOrStdout(), []prompts.ResultField{
		{Label: "Name", Value: res.JSONSchemaName},
		{Label: "Output", Value: opts.output},
	}, "Adaptation completed")
	return nil
}
