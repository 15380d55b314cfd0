// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package avro

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
	leadingDigit     = regexp.MustCompile(`^[0-9]`)
)

// SanitizeName makes raw a valid Avro name: characters outside [A-Za-z0-9_]
// become "_" and a leading digit is replaced with "_".
func SanitizeName(raw string) string {
	name := invalidNameChars.ReplaceAllString(raw, "_")
	return leadingDigit.ReplaceAllString(name, "_")
}

// SplitName splits a dot-qualified name into namespace and simple name.
func SplitName(full string) (namespace, name string) {
	i := strings.LastIndex(full, ".")
	if i < 0 {
		return "", full
	}
	return full[:i], full[i+1:]
}

// QualifiedName joins namespace and name, omitting an empty namespace.
func QualifiedName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// DefaultName is used for named types that carry no name of their own.
const DefaultName = "New_field"

// NameGenerator hands out New_field, New_field_1, New_field_2, ...
type NameGenerator struct {
	next int
}

// Next returns the next default name.
func (g *NameGenerator) Next() string {
	n := g.next
	g.next++
	if n == 0 {
		return DefaultName
	}
	return fmt.Sprintf("%s_%d", DefaultName, n)
}
