// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import (
	"github.com/charmbracelet/huh"

	"github.com/dacolabs/avrobridge/internal/logger"
)

// RunInitForm runs the interactive form for the init command.
// It fills the provided pointers with user input.
func RunInitForm(scriptType, logLevel *string, minify, includeSamples *bool, scriptTypes []string) error {
	levels := make([]huh.Option[string], len(logger.Levels))
	for i, l := range logger.Levels {
		levels[i] = huh.NewOption(l, l)
	}
	return huh.NewForm(
		huh.NewGroup(
			ScriptTypeSelect(scriptType, scriptTypes),
			huh.NewSelect[string]().
				Title("Log level").
				Options(levels...).
				Value(logLevel),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Minify scripts?").
				Value(minify),
			huh.NewConfirm().
				Title("Include sample data?").
				Value(includeSamples),
		),
	).WithTheme(Theme()).Run()
}
