// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package reverse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/logger"
	"github.com/dacolabs/avrobridge/internal/translate/forward"
	"github.com/dacolabs/avrobridge/internal/translate/udt"
)

func decodeDoc(t *testing.T, doc string) any {
	t.Helper()
	v, err := jschema.DecodeJSON([]byte(doc))
	require.NoError(t, err)
	return v
}

func convertOne(t *testing.T, doc string, opts Options) *jschema.Object {
	t.Helper()
	docs, err := Convert(decodeDoc(t, doc), opts)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return docs[0].Schema
}

func prop(schema *jschema.Object, name string) *jschema.Object {
	return schema.Object("properties").Object(name)
}

func TestConvert_RecordWithNamedType(t *testing.T) {
	got := convertOne(t, `{
		"type": "record", "name": "User", "namespace": "shop", "doc": "A user",
		"fields": [
			{"name": "id", "type": "long"},
			{"name": "address", "type": {"type": "record", "name": "Address", "fields": [{"name": "city", "type": "string"}]}}
		]
	}`, Options{})

	assert.Equal(t,
		`{"type":"object","description":"A user","properties":{"id":{"type":"number","mode":"long","name":"id"},"address":{"name":"address","$ref":"#/definitions/Address"}},"required":["id","address"],"$schema":"http://json-schema.org/draft-04/schema#","definitions":{"Address":{"type":"record","name":"Address","properties":{"city":{"type":"string","name":"city"}},"required":["city"]}},"title":"User"}`,
		jschema.MustString(got))
}

func TestConvert_FieldAttributes(t *testing.T) {
	got := convertOne(t, `{
		"type": "record", "name": "R",
		"fields": [
			{"name": "amount", "doc": "money", "type": {"type": "bytes", "logicalType": "decimal", "precision": 10, "scale": 2}},
			{"name": "active", "type": "boolean", "default": true},
			{"name": "d", "type": {"type": "fixed", "name": "Dur", "size": 12, "logicalType": "duration"}},
			{"name": "s", "type": {"type": "string", "avro.java.string": "String"}},
			{"name": "status", "type": {"type": "enum", "name": "Status", "symbols": ["A", "B"]}, "default": "B"}
		]
	}`, Options{})

	amount := prop(got, "amount")
	assert.Equal(t, "money", amount.String("description"))
	assert.Equal(t, "bytes", amount.String("type"))
	assert.Equal(t, "decimal", amount.String("subtype"))
	assert.Equal(t, "10", jschema.MustString(amount.Value("precision")))

	active := prop(got, "active")
	assert.Equal(t, "true", active.Value("default"))

	dur := got.Object("definitions").Object("Dur")
	require.NotNil(t, dur)
	assert.Equal(t, "12", jschema.MustString(dur.Value("durationSize")))
	assert.False(t, dur.Has("size"))
	assert.Equal(t, "duration", dur.String("subtype"))

	s := prop(got, "s")
	assert.Equal(t, `[{"metaKey":"avro.java.string","metaValueString":"String"}]`, jschema.MustString(s.Value("metaProps")))
	assert.False(t, s.Has("avro.java.string"))

	status := got.Object("definitions").Object("Status")
	require.NotNil(t, status)
	assert.Equal(t, "B", status.Value("symbolDefault"))
	assert.Equal(t, "B", prop(got, "status").Value("default"))

	assert.Equal(t, []any{"amount", "d", "s"}, got.Array("required"))
}

func TestConvert_Unions(t *testing.T) {
	got := convertOne(t, `{
		"type": "record", "name": "R",
		"fields": [
			{"name": "nick", "type": ["null", "string"], "default": null},
			{"name": "v", "type": ["int", "string"]},
			{"name": "payload", "type": ["string", {"type": "array", "items": "int"}]}
		]
	}`, Options{})

	nick := prop(got, "nick")
	assert.Equal(t, "string", nick.String("type"))
	assert.True(t, nick.Bool("nullable"))
	assert.True(t, nick.Has("default"))

	v := prop(got, "v")
	assert.Equal(t, []any{"number", "string"}, v.Value("type"))
	assert.Equal(t, "int", v.String("mode"))

	payload := prop(got, "payload")
	assert.Equal(t, "choice", payload.String("type"))
	assert.Equal(t, "oneOf", payload.String("choice"))
	items := payload.Array("items")
	require.Len(t, items, 2)
	first := items[0].(*jschema.Object)
	assert.True(t, first.Bool("subschema"))
	assert.Equal(t, "string", first.Object("properties").Object("payload").String("type"))

	assert.Equal(t, []any{"v", "payload"}, got.Array("required"))
}

func TestConvert_MapAndArray(t *testing.T) {
	got := convertOne(t, `{
		"type": "record", "name": "R",
		"fields": [
			{"name": "m", "type": {"type": "map", "values": "long"}},
			{"name": "a", "type": {"type": "array", "items": ["null", "string"]}}
		]
	}`, Options{})

	m := prop(got, "m")
	assert.Equal(t, "map<long>", m.String("subtype"))
	assert.Equal(t, "long", m.Object("properties").Object("schema").String("mode"))
	assert.Equal(t, []any{"schema"}, m.Array("required"))

	a := prop(got, "a")
	items := a.Array("items")
	require.Len(t, items, 1)
	assert.Equal(t, []any{"null", "string"}, items[0].(*jschema.Object).Value("type"))
	assert.False(t, a.Has("properties"))
}

func TestConvert_References(t *testing.T) {
	got := convertOne(t, `{
		"type": "record", "name": "Order", "namespace": "shop",
		"references": [{"name": "crm.Customer", "subject": "crm-Customer", "version": 1}],
		"fields": [
			{"name": "customer", "type": "crm.Customer"},
			{"name": "thing", "type": "ext.Thing"},
			{"name": "parent", "type": ["null", {"type": "record", "name": "Ref", "fields": []}], "default": null},
			{"name": "again", "type": ["null", "Ref"], "default": null}
		]
	}`, Options{})

	assert.Equal(t, `{"name":"customer","$ref":"#collection/definitions/Customer"}`, jschema.MustString(prop(got, "customer")))
	assert.Equal(t, `{"name":"thing","$ref":"ext.Thing","hackoladeMeta":{"restrictExternalReferenceCreation":true},"type":"reference"}`,
		jschema.MustString(prop(got, "thing")))
	assert.Equal(t, `{"name":"again","$ref":"#/definitions/Ref","nullable":true,"default":null}`, jschema.MustString(prop(got, "again")))
	assert.Equal(t, []string{"Ref"}, got.Object("definitions").Keys())
	assert.False(t, got.Has("references"))
}

func TestConvert_TransitiveAndRecursiveDefinitions(t *testing.T) {
	got := convertOne(t, `{
		"type": "record", "name": "R",
		"fields": [
			{"name": "a", "type": {"type": "record", "name": "Inner", "fields": [{"name": "e", "type": {"type": "enum", "name": "E", "symbols": ["X"]}}]}},
			{"name": "next", "type": ["null", "Node"], "default": null},
			{"name": "node", "type": {"type": "record", "name": "Node", "fields": [{"name": "next", "type": ["null", "Node"], "default": null}]}}
		]
	}`, Options{})

	assert.Equal(t, []string{"E", "Inner", "Node"}, got.Object("definitions").Keys())
	node := got.Object("definitions").Object("Node")
	assert.Equal(t, "#/definitions/Node", prop(node, "next").String("$ref"))
}

func TestConvert_UnionDocuments(t *testing.T) {
	t.Run("inline alternatives become documents", func(t *testing.T) {
		docs, err := Convert(decodeDoc(t, `[
			{"type": "record", "name": "A", "fields": []},
			{"type": "record", "name": "B", "fields": [{"name": "a", "type": "A"}]}
		]`), Options{})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "A", docs[0].Schema.String("title"))
		assert.Equal(t, 0, docs[0].Schema.Object("definitions").Len())
		assert.Equal(t, "B", docs[1].Schema.String("title"))
		assert.Equal(t, "#/definitions/A", prop(docs[1].Schema, "a").String("$ref"))
	})

	t.Run("references become a synthesized record", func(t *testing.T) {
		docs, err := Convert(decodeDoc(t, `["crm.Customer", "crm.Order"]`), Options{Subject: "crm.Event-value"})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Event", docs[0].Schema.String("title"))
		assert.Equal(t, "crm", docs[0].Namespace())
		assert.Equal(t, "choice", prop(docs[0].Schema, "value").String("type"))
	})

	t.Run("mixed keeps inline alternatives", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		docs, err := Convert(decodeDoc(t, `[{"type": "record", "name": "A", "fields": []}, "B"]`),
			Options{Logger: logger.FromZap(zap.New(core))})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, 1, logs.FilterMessage("union alternative skipped").Len())
	})

	t.Run("no records", func(t *testing.T) {
		_, err := Convert(decodeDoc(t, `["null", "string"]`), Options{})
		assert.ErrorIs(t, err, ErrNoInlineRoot)
	})

	t.Run("numeric keys", func(t *testing.T) {
		docs, err := Convert(decodeDoc(t, `{"0": {"type": "record", "name": "A", "fields": []}, "1": {"type": "record", "name": "B", "fields": []}}`), Options{})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})
}

func TestConvert_CustomProperties(t *testing.T) {
	opts := Options{
		FieldKeywords: func(avroType string, _ *jschema.Object) []string {
			if avroType == "string" {
				return []string{"pii"}
			}
			return nil
		},
		EntityKeywords: func(*jschema.Object) []string { return []string{"owner"} },
	}
	got := convertOne(t, `{
		"type": "record", "name": "R", "owner": "team-a", "ignored": 1,
		"fields": [{"name": "email", "type": "string", "pii": true}, {"name": "n", "type": "int", "pii": true}]
	}`, opts)

	assert.Equal(t, "team-a", got.String("owner"))
	assert.False(t, got.Has("ignored"))
	assert.True(t, prop(got, "email").Bool("pii"))
	assert.False(t, prop(got, "n").Has("pii"))
}

func TestConvert_InvalidDocument(t *testing.T) {
	_, err := Convert(decodeDoc(t, `{"name": "NoType"}`), Options{})
	assert.Error(t, err)
}

func TestConvert_RoundTripsThroughForward(t *testing.T) {
	tests := []string{
		`{"type":"record","name":"User","fields":[{"name":"id","type":"long"},{"name":"nick","type":["null","string"],"default":null},{"name":"tags","type":{"type":"array","items":"string"},"default":[]}]}`,
		`{"type":"record","name":"User","fields":[{"name":"address","type":{"type":"record","name":"Address","fields":[{"name":"city","type":"string"}]}}]}`,
	}
	for _, doc := range tests {
		t.Run(doc, func(t *testing.T) {
			schema := convertOne(t, doc, Options{})

			reg := udt.New(nil)
			conv := forward.New(reg.Scope(), nil)
			require.NoError(t, conv.RegisterDefinitions(jschema.ObjectOf("properties", schema.Object("definitions"))))
			out, err := forward.New(reg.Scope(), nil).Root(schema, schema.String("title"))
			require.NoError(t, err)

			text, err := avro.Marshal(out, "")
			require.NoError(t, err)
			assert.Equal(t, doc, text)
		})
	}
}

func TestConvert_ForwardThenReverse(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		types    []string
		required []any
	}{
		{
			name:     "scalars",
			doc:      `{"properties":{"id":{"type":"number","mode":"long"},"n":{"type":"number","mode":"int","default":5},"ok":{"type":"boolean"},"nick":{"type":"string","nullable":true}},"required":["id","ok"]}`,
			types:    []string{"number", "number", "boolean", "string"},
			required: []any{"id", "ok"},
		},
		{
			name:     "collections",
			doc:      `{"properties":{"tags":{"type":"array","items":{"type":"string"}},"m":{"type":"map","properties":{"schema":{"type":"number","mode":"long"}}},"note":{"type":"string","nullable":true}},"required":["tags","m"]}`,
			types:    []string{"array", "map", "string"},
			required: []any{"tags", "m"},
		},
		{
			name:     "named types",
			doc:      `{"properties":{"addr":{"type":"record","name":"Address","properties":{"city":{"type":"string"},"zip":{"type":"string","nullable":true}},"required":["city"]},"st":{"type":"enum","name":"Status","symbols":["A","B"]},"h":{"type":"fixed","name":"Hash","size":16}},"required":["addr","st","h"]}`,
			types:    []string{"record", "enum", "fixed"},
			required: []any{"addr", "st", "h"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, ok := decodeDoc(t, tt.doc).(*jschema.Object)
			require.True(t, ok)
			wantKeys := in.Object("properties").Keys()

			out, err := forward.New(udt.New(nil).Scope(), nil).Root(in.Clone(), "User")
			require.NoError(t, err)
			text, err := avro.Marshal(out, "")
			require.NoError(t, err)

			got := convertOne(t, text, Options{})
			assert.Equal(t, "User", got.String("title"))
			assert.Equal(t, wantKeys, got.Object("properties").Keys())
			assert.Equal(t, tt.required, got.Array("required"))

			defs := got.Object("definitions")
			for i, key := range wantKeys {
				p := prop(got, key)
				typ := p.String("type")
				if ref := p.String("$ref"); ref != "" {
					name, found := strings.CutPrefix(ref, "#/definitions/")
					require.True(t, found, ref)
					typ = defs.Object(name).String("type")
				}
				assert.Equal(t, tt.types[i], typ, key)
			}
		})
	}

	t.Run("nested record keeps its own properties", func(t *testing.T) {
		in, ok := decodeDoc(t, tests[2].doc).(*jschema.Object)
		require.True(t, ok)
		out, err := forward.New(udt.New(nil).Scope(), nil).Root(in, "User")
		require.NoError(t, err)
		text, err := avro.Marshal(out, "")
		require.NoError(t, err)

		addr := convertOne(t, text, Options{}).Object("definitions").Object("Address")
		require.NotNil(t, addr)
		assert.Equal(t, []string{"city", "zip"}, addr.Object("properties").Keys())
		assert.Equal(t, []any{"city"}, addr.Array("required"))
		assert.True(t, addr.Object("properties").Object("zip").Bool("nullable"))
	})
}
