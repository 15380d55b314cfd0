// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dacolabs/avrobridge/internal/avrofile"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/prompts"
	"github.com/dacolabs/avrobridge/internal/session"
)

func newReverseCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "reverse <file>",
		Short: "Convert an Avro schema file into modeling packages",
		Long: fmt.Sprintf(`Convert an Avro schema, a registry export or the schema embedded in an
Avro container file into modeling packages, one per record.

Supported extensions: %s`, strings.Join(avrofile.Extensions, ", ")),
		Example: `  # Print the packages of a schema
  avrobridge reverse order.avsc

  # Reverse a Confluent export into a file
  avrobridge reverse orders.confluent-avro -o packages.json`,
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReverse(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func runReverse(cmd *cobra.Command, path, output string) error {
	s, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}

	res, err := s.Engine.ReverseFromFile(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return err
	}
	data, err := jschema.Marshal(res, "  ")
	if err != nil {
		return fmt.Errorf("encoding packages: %w", err)
	}

	if output == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("writing packages: %w", err)
	}

	fields := []prompts.ResultField{
		{Label: "Packages", Value: strconv.Itoa(len(res.Packages))},
		{Label: "Output", Value: output},
	}
	if res.SchemaRegistryType != "" {
		fields = append(fields, prompts.ResultField{Label: "Schema registry", Value: res.SchemaRegistryType})
	}
	prompts.PrintResult(cmd.OutOrStdout(), fields, "Reverse engineering completed")
	return nil
}
