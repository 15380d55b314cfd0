// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package avro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameStructure(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{
			name: "doc and defaults ignored",
			a:    `{"type":"record","name":"A","doc":"one","fields":[{"name":"x","type":"int","default":1}]}`,
			b:    `{"type":"record","name":"A","doc":"two","fields":[{"name":"x","type":"int"}]}`,
			want: true,
		},
		{
			name: "field types ignored, names compared",
			a:    `{"type":"record","name":"A","fields":[{"name":"x","type":"int"}]}`,
			b:    `{"type":"record","name":"A","fields":[{"name":"x","type":"string"}]}`,
			want: true,
		},
		{
			name: "different field names",
			a:    `{"type":"record","name":"A","fields":[{"name":"x","type":"int"}]}`,
			b:    `{"type":"record","name":"A","fields":[{"name":"y","type":"int"}]}`,
			want: false,
		},
		{
			name: "different names",
			a:    `{"type":"enum","name":"A","symbols":["X"]}`,
			b:    `{"type":"enum","name":"B","symbols":["X"]}`,
			want: false,
		},
		{
			name: "decimal parameters",
			a:    `{"type":"fixed","name":"D","size":8,"logicalType":"decimal","precision":10,"scale":2}`,
			b:    `{"type":"fixed","name":"D","size":8,"logicalType":"decimal","precision":10,"scale":3}`,
			want: false,
		},
		{
			name: "array items",
			a:    `{"type":"array","items":"int"}`,
			b:    `{"type":"array","items":"long"}`,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameStructure(parse(t, tt.a), parse(t, tt.b)))
			if tt.want {
				assert.Empty(t, StructureDiff(parse(t, tt.a), parse(t, tt.b)))
			}
		})
	}
}
