// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package reverse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/logger"
)

func TestDefinitions_All(t *testing.T) {
	tests := []struct {
		name       string
		namespaces []string
		wantFrom   string
		wantWarn   int
	}{
		{name: "single namespace", namespaces: []string{"shop"}, wantFrom: "shop"},
		{name: "same namespace twice", namespaces: []string{"shop", "shop"}, wantFrom: "shop"},
		{name: "clash across namespaces", namespaces: []string{"a", "b"}, wantFrom: "b", wantWarn: 1},
		{name: "clash with empty namespace", namespaces: []string{"", "b"}, wantFrom: "b", wantWarn: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			defs := NewDefinitions(logger.FromZap(zap.New(core)))
			for _, ns := range tt.namespaces {
				defs.Add(ns, jschema.ObjectOf("name", "Address", "type", "record", "from", ns))
			}

			all := defs.All()
			assert.Equal(t, []string{"Address"}, all.Keys())
			assert.Equal(t, tt.wantFrom, all.Object("Address").String("from"))

			clashes := logs.FilterMessage("definition name clash across namespaces")
			require.Equal(t, tt.wantWarn, clashes.Len())
			if tt.wantWarn > 0 {
				assert.Equal(t, "b", clashes.All()[0].ContextMap()["namespace"])
			}
		})
	}
}

func TestDefinitions_NilLogger(t *testing.T) {
	defs := NewDefinitions(nil)
	defs.Add("a", jschema.ObjectOf("name", "X"))
	defs.Add("b", jschema.ObjectOf("name", "X"))
	assert.NotPanics(t, func() { defs.All() })
}
