// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dacolabs/avrobridge/internal/config"
	"github.com/dacolabs/avrobridge/internal/logger"
	"github.com/dacolabs/avrobridge/internal/prompts"
	"github.com/dacolabs/avrobridge/internal/registry"
	"github.com/dacolabs/avrobridge/internal/session"
)

type initOptions struct {
	scriptType     string
	minify         bool
	samples        bool
	nonInteractive bool
}

func newInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an avrobridge.yaml plugin configuration",
		Long: `Create a plugin configuration file with the default script options.
Custom properties can be added to the file afterwards.`,
		Example: `  # Interactive mode
  avrobridge init

  # Non-interactive
  avrobridge init --script-type azureSchemaRegistry --minify --non-interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scriptType, "script-type", "t", registry.Confluent, "Default script type")
	cmd.Flags().BoolVar(&opts.minify, "minify", false, "Minify scripts by default")
	cmd.Flags().BoolVar(&opts.samples, "samples", false, "Include sample data by default")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Run without prompts")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	path, _ := cmd.Flags().GetString(session.ConfigFlag)
	if path == "" {
		path = config.FileName
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.Default()
	cfg.Options = config.Options{
		ScriptType:     opts.scriptType,
		Minify:         opts.minify,
		IncludeSamples: opts.samples,
	}
	cfg.LogLevel, _ = cmd.Flags().GetString(session.LogLevelFlag)

	if !opts.nonInteractive {
		if cfg.LogLevel == "" {
			cfg.LogLevel = logger.Info
		}
		if err := prompts.RunInitForm(
			&cfg.Options.ScriptType,
			&cfg.LogLevel,
			&cfg.Options.Minify,
			&cfg.Options.IncludeSamples,
			registry.Available(),
		); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("config file couldn't be saved: %w", err)
	}

	prompts.PrintResult(cmd.OutOrStdout(), []prompts.ResultField{
		{Label: "Config", Value: path},
		{Label: "Script type", Value: cfg.Options.ScriptType},
		{Label: "Minify", Value: strconv.FormatBool(cfg.Options.Minify)},
	}, "Initialization completed")
	return nil
}
