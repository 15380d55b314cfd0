// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dacolabs/avrobridge/internal/prompts"
	"github.com/dacolabs/avrobridge/internal/registry"
	"github.com/dacolabs/avrobridge/internal/session"
)

type validateOptions struct {
	format         string
	nonInteractive bool
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Validate the Avro schemas of a registry script",
		Long: fmt.Sprintf(`Validate the Avro schemas of a script rendered by generate.

Available script types: %s`, strings.Join(registry.Available(), ", ")),
		Example: `  # Pick the script type interactively
  avrobridge validate user.txt

  # Validate a Pulsar script
  avrobridge validate user.txt --format pulsarSchemaRegistry`,
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: session.PreRunLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Script type (default is the configured one)")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Use the configured script type instead of prompting")

	return cmd
}

func runValidate(cmd *cobra.Command, path string, opts *validateOptions) error {
	s, err := session.RequireFromCommand(cmd)
	if err != nil {
		return err
	}

	script, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return err
	}

	format := opts.format
	if format == "" && !opts.nonInteractive {
		format = s.Config.Options.ScriptType
		if err := prompts.RunScriptTypeForm(&format, registry.Available()); err != nil {
			return err
		}
	}
	if format != "" {
		if _, err := registry.Get(format); err != nil {
			return err
		}
	}

	messages := s.Engine.Validate(string(script), format)
	prompts.PrintMessages(cmd.OutOrStdout(), messages)

	failed := 0
	for _, m := range messages {
		if m.Type == registry.MessageError {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d validation error(s)", failed)
	}
	return nil
}
