// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package jschema provides the ordered JSON model used for modeling schemas,
// with loading, decoding and traversal utilities.
package jschema

import "strings"

// CollectionRefPrefix marks a reference to another entity's schema.
const CollectionRefPrefix = "#collection/"

// IsFileRef returns true if ref is an external file reference.
// File refs do not start with "#".
func IsFileRef(ref string) bool {
	return ref != "" && !strings.HasPrefix(ref, "#")
}

// IsCollectionRef returns true if ref points at another entity's schema.
func IsCollectionRef(ref string) bool {
	return strings.HasPrefix(ref, CollectionRefPrefix)
}

// RefName returns the last path segment of a $ref.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
