// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package internal contains the main application logic for the CLI.
package internal

import (
	"context"

	"github.com/dacolabs/avrobridge/internal/commands"
	"github.com/dacolabs/avrobridge/internal/session"
)

// EnvConfig names the environment variable holding the default config file.
const EnvConfig = "AVROBRIDGE_CONFIG"

// Run is the main application logic, extracted for testability.
// It accepts OS dependencies as parameters (context, env lookup).
func Run(ctx context.Context, getenv func(string) string) error {
	rootCmd := commands.NewRootCmd()
	if path := getenv(EnvConfig); path != "" {
		if err := rootCmd.PersistentFlags().Set(session.ConfigFlag, path); err != nil {
			return err
		}
	}
	return rootCmd.ExecuteContext(ctx)
}
