// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package jschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var errNotObject = errors.New("not a JSON object")

// DecodeJSON decodes a JSON document. Objects become *Object and numbers json.Number.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// DecodeObject decodes a JSON document that must be an object.
func DecodeObject(data []byte) (*Object, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// ParseObject decodes s as a JSON object, returning an empty object when s is not one.
func ParseObject(s string) *Object {
	obj, err := DecodeObject([]byte(s))
	if err != nil {
		return NewObject()
	}
	return obj
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return t, nil
	}
}

// DecodeYAML decodes a YAML document into the same value model as DecodeJSON.
func DecodeYAML(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		return NewObject(), nil
	}
	return fromYAML(&node)
}

func fromYAML(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return fromYAML(node.Content[0])
	case yaml.AliasNode:
		return fromYAML(node.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := fromYAML(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(node.Content[i].Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			val, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		switch n := v.(type) {
		case int:
			return json.Number(strconv.Itoa(n)), nil
		case uint64:
			return json.Number(strconv.FormatUint(n, 10)), nil
		case float64:
			if math.IsInf(n, 0) || math.IsNaN(n) {
				return node.Value, nil
			}
			return json.Number(strconv.FormatFloat(n, 'g', -1, 64)), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
}

// Decode decodes data as YAML or JSON depending on the file extension.
func Decode(data []byte, filePath string) (any, error) {
	switch {
	case strings.HasSuffix(filePath, ".yaml") || strings.HasSuffix(filePath, ".yml"):
		return DecodeYAML(data)
	case strings.HasSuffix(filePath, ".json"):
		return DecodeJSON(data)
	default:
		return nil, fmt.Errorf("format not supported")
	}
}

// Marshal encodes v without HTML escaping. An empty indent produces compact output.
func Marshal(v any, indent string) ([]byte, error) {
	data, err := encode(v)
	if err != nil {
		return nil, err
	}
	if indent == "" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustString encodes v compactly, falling back to fmt formatting on failure.
func MustString(v any) string {
	data, err := Marshal(v, "")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// Number returns v as a float64 when it is numeric.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// IsTruthy mirrors loose truthiness for metadata values: nil, false, "" and 0 are false.
func IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case *Object, []any:
		return true
	}
	if f, ok := Number(v); ok {
		return f != 0
	}
	return true
}
