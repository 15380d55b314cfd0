// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package commands contains all CLI command definitions.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/dacolabs/avrobridge/internal/session"
)

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "avrobridge",
		Short: "Convert modeling schemas to and from Apache Avro",
		Long: `Convert JSON-Schema-like modeling schemas to Apache Avro and back,
render them as schema registry scripts and validate such scripts.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(session.ConfigFlag, "", "Plugin config file (default ./avrobridge.yaml when present)")
	rootCmd.PersistentFlags().String(session.LogLevelFlag, "", "Log level (debug, info, warning, error)")

	rootCmd.AddCommand(
		newInitCmd(),
		newVersionCmd(),
		newGenerateCmd(),
		newReverseCmd(),
		newValidateCmd(),
		newAdaptCmd(),
	)

	return rootCmd
}
