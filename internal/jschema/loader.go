// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"io"
	"io/fs"
	"path"
)

// Loader loads schemas from a filesystem.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a Loader that reads from the given filesystem.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// LoadFile loads and parses a schema document.
// The format is determined from the file extension.
func (l *Loader) LoadFile(filePath string) (any, error) {
	f, err := l.fsys.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return Decode(data, filePath)
}

// LoadObject loads a schema document that must be a JSON object.
func (l *Loader) LoadObject(filePath string) (*Object, error) {
	v, err := l.LoadFile(filePath)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// ResolveRefs resolves all external file $refs in the schema tree in-place.
// It recursively loads referenced schemas and replaces the ref with the loaded content.
// Internal refs (starting with #) are left unchanged.
func (l *Loader) ResolveRefs(schema *Object, basePath string) error {
	for s := range Traverse(schema) {
		ref := s.String("$ref")
		if !IsFileRef(ref) {
			continue
		}
		refPath := path.Join(basePath, ref)
		loaded, err := l.LoadObject(refPath)
		if err != nil {
			return err
		}
		if err := l.ResolveRefs(loaded, path.Dir(refPath)); err != nil {
			return err
		}
		s.Delete("$ref")
		for k, v := range loaded.All() {
			if !s.Has(k) {
				s.Set(k, v)
			}
		}
	}
	return nil
}
