// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package prompts

import "github.com/charmbracelet/huh"

// ScriptTypeSelect returns a select field for choosing a script type.
func ScriptTypeSelect(value *string, scriptTypes []string) *huh.Select[string] {
	options := make([]huh.Option[string], len(scriptTypes))
	for i, t := range scriptTypes {
		options[i] = huh.NewOption(t, t)
	}
	return huh.NewSelect[string]().
		Title("Script type").
		Options(options...).
		Value(value)
}

// RunScriptTypeForm asks for a script type.
func RunScriptTypeForm(value *string, scriptTypes []string) error {
	return huh.NewForm(huh.NewGroup(ScriptTypeSelect(value, scriptTypes))).WithTheme(Theme()).Run()
}
