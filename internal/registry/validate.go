// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package registry

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/linkedin/goavro/v2"

	"github.com/dacolabs/avrobridge/internal/avro"
	"github.com/dacolabs/avrobridge/internal/jschema"
	"github.com/dacolabs/avrobridge/internal/logger"
)

// Message types.
const (
	MessageError   = "error"
	MessageSuccess = "success"
)

// Message is one validation result.
type Message struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Title   string `json:"title"`
	Context string `json:"context"`
}

var (
	postRequest         = regexp.MustCompile(`(?m)^POST (/.*)$\n(^\{[\s\S]*?^\})`)
	postRequestMinified = regexp.MustCompile(`(?m)^POST (/.*)\n(\{[\s\S]*?\}$)`)
	putRequest          = regexp.MustCompile(`(?m)^PUT (/.*)$\n(^\{[\s\S]*?^\})`)
	putRequestMinified  = regexp.MustCompile(`(?m)^PUT (/.*)\n(\{[\s\S]*?\}$)`)
	fieldInError        = regexp.MustCompile(`field "([^"]+)"`)
	validName           = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validator checks rendered scripts against the Avro grammar.
type Validator struct {
	log *logger.Logger
}

// NewValidator returns a validator. A nil logger discards parser failures.
func NewValidator(log *logger.Logger) *Validator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Validator{log: log}
}

type request struct {
	path string
	body string
}

// schemaScript is one schema pulled out of a script, or the message that
// replaces its validation.
type schemaScript struct {
	text    string
	message *Message
}

// Validate extracts every schema of script and validates it. For more than
// one schema only the errors are returned, or a single success message.
func (v *Validator) Validate(script, scriptType string) []Message {
	scripts := extract(script, scriptType)
	if len(scripts) == 0 {
		return []Message{errorMessage("", "no schema found in script")}
	}

	var results [][]Message
	for _, s := range scripts {
		if s.message != nil {
			results = append(results, []Message{*s.message})
			continue
		}
		c := &collector{log: v.log}
		results = append(results, c.validate(s.text))
	}
	if len(results) == 1 {
		return results[0]
	}

	var errs []Message
	for _, msgs := range results {
		for _, m := range msgs {
			if m.Type == MessageError {
				errs = append(errs, m)
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return []Message{{Type: MessageSuccess, Title: "Avro schemas are valid"}}
}

func extract(script, scriptType string) []schemaScript {
	switch scriptType {
	case Confluent:
		return fromRequests(requests(script, postRequest, postRequestMinified), func(r request, body *jschema.Object) schemaScript {
			return schemaScript{text: schemaText(body.Value("schema"))}
		})
	case Azure:
		return fromRequests(requests(script, putRequest, putRequestMinified), func(r request, body *jschema.Object) schemaScript {
			segments := strings.Split(strings.TrimPrefix(r.path, "/"), "/")
			if len(segments) < 2 || segments[0] == "" || !strings.HasPrefix(segments[1], "schemas") {
				msg := errorMessage(body.String("namespace"), "Schema Group is missing")
				return schemaScript{message: &msg}
			}
			return schemaScript{text: r.body}
		})
	case Pulsar:
		return fromRequests(requests(script, postRequest, postRequestMinified), pulsarScript)
	case Generic:
		body := jschema.ParseObject(script)
		return []schemaScript{{text: schemaText(body.Value("schema"))}}
	default:
		return []schemaScript{{text: script}}
	}
}

func pulsarScript(r request, body *jschema.Object) schemaScript {
	segments := strings.Split(strings.TrimPrefix(r.path, "/"), "/")
	if len(segments) != 4 || segments[3] != "schema" {
		msg := errorMessage("", "Pulsar request path is malformed")
		return schemaScript{message: &msg}
	}
	var missing []string
	if segments[1] == "" {
		missing = append(missing, "Pulsar namespace is missing")
	}
	if segments[2] == "" {
		missing = append(missing, "Pulsar topic is missing")
	}
	if len(missing) > 0 {
		msg := errorMessage("", strings.Join(missing, "; "))
		return schemaScript{message: &msg}
	}
	return schemaScript{text: schemaText(body.Value("data"))}
}

func requests(script string, patterns ...*regexp.Regexp) []request {
	for _, p := range patterns {
		matches := p.FindAllStringSubmatch(script, -1)
		if len(matches) == 0 {
			continue
		}
		out := make([]request, len(matches))
		for i, m := range matches {
			out[i] = request{path: m[1], body: m[2]}
		}
		return out
	}
	return nil
}

func fromRequests(reqs []request, fn func(request, *jschema.Object) schemaScript) []schemaScript {
	out := make([]schemaScript, 0, len(reqs))
	for _, r := range reqs {
		body, err := jschema.DecodeObject([]byte(r.body))
		if err != nil {
			msg := errorMessage("", fmt.Sprintf("invalid request body: %v", err))
			out = append(out, schemaScript{message: &msg})
			continue
		}
		out = append(out, fn(r, body))
	}
	return out
}

func schemaText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return jschema.MustString(s)
	}
}

func errorMessage(label, title string) Message {
	return Message{Type: MessageError, Label: label, Title: title}
}

// collector gathers the problems of one schema.
type collector struct {
	log      *logger.Logger
	messages []Message
}

func (c *collector) add(label, title string) {
	c.messages = append(c.messages, errorMessage(label, title))
}

func (c *collector) validate(text string) []Message {
	doc, err := jschema.DecodeJSON([]byte(text))
	if err != nil {
		c.fail("", err)
		return c.messages
	}
	entity := entityName(doc)

	schema, err := avro.Parse(doc)
	if err != nil {
		c.fail(entity, err)
		return c.messages
	}
	lint(schema, entity, c)
	if len(c.messages) == 0 {
		if _, err := goavro.NewCodec(text); err != nil {
			c.fail(entity, err)
		}
	}
	if len(c.messages) == 0 {
		return []Message{{Type: MessageSuccess, Title: "Avro schema is valid"}}
	}
	return c.messages
}

func (c *collector) fail(entity string, err error) {
	c.log.Error("Avro validation error", err, map[string]any{"entity": entity})
	label := entity
	if m := fieldInError.FindStringSubmatch(err.Error()); m != nil {
		label = m[1]
	}
	c.add(label, err.Error())
}

func entityName(doc any) string {
	obj, ok := doc.(*jschema.Object)
	if !ok {
		return ""
	}
	return obj.String("name")
}

// lint reports naming problems the codec would stop at one by one.
func lint(s avro.Schema, entity string, c *collector) {
	switch n := s.(type) {
	case avro.Union:
		var seen []string
		for _, alt := range n {
			if _, nested := alt.(avro.Union); nested {
				c.add(entity, "unions may not immediately contain other unions")
				continue
			}
			key := avro.TypeName(alt)
			if cx, ok := alt.(*avro.Complex); ok && avro.IsNamedType(cx.Type) {
				key = avro.QualifiedName(cx.Namespace, cx.Name)
			}
			if slices.Contains(seen, key) {
				c.add(entity, fmt.Sprintf("duplicate type %q in union", key))
			}
			seen = append(seen, key)
			lint(alt, entity, c)
		}
	case *avro.Complex:
		lintComplex(n, entity, c)
	}
}

func lintComplex(n *avro.Complex, entity string, c *collector) {
	if avro.IsNamedType(n.Type) || n.Type == "error" {
		checkName(n.Name, n.Namespace, c)
	}
	switch n.Type {
	case "record", "error":
		var names []string
		for _, f := range n.Fields {
			if !validName.MatchString(f.Name) {
				c.add(f.Name, fmt.Sprintf("invalid field name %q in %s", f.Name, n.Name))
			}
			if slices.Contains(names, f.Name) {
				c.add(f.Name, fmt.Sprintf("duplicate field name %q in %s", f.Name, n.Name))
			}
			names = append(names, f.Name)
			lint(f.Type, f.Name, c)
		}
	case "enum":
		symbols := n.Attrs.Array("symbols")
		var seen []any
		for _, sym := range symbols {
			name, _ := sym.(string)
			if !validName.MatchString(name) {
				c.add(n.Name, fmt.Sprintf("invalid enum symbol %v", sym))
			}
			if slices.Contains(seen, sym) {
				c.add(n.Name, fmt.Sprintf("duplicate enum symbol %v", sym))
			}
			seen = append(seen, sym)
		}
		if def, ok := n.Attrs.Get("default"); ok && !slices.Contains(symbols, def) {
			c.add(n.Name, fmt.Sprintf("enum default %v is not a symbol", def))
		}
	case "fixed":
		if size, ok := jschema.Number(n.Attrs.Value("size")); !ok || size < 0 || size != float64(int64(size)) {
			c.add(n.Name, "fixed size must be a non-negative integer")
		}
	case "array":
		if n.Items != nil {
			lint(n.Items, entity, c)
		}
	case "map":
		if n.Values != nil {
			lint(n.Values, entity, c)
		}
	}
}

func checkName(name, namespace string, c *collector) {
	ns, bare := avro.SplitName(name)
	if ns == "" {
		ns = namespace
	}
	if !validName.MatchString(bare) {
		c.add(name, fmt.Sprintf("invalid name %q", name))
	}
	if ns == "" {
		return
	}
	for _, seg := range strings.Split(ns, ".") {
		if !validName.MatchString(seg) {
			c.add(name, fmt.Sprintf("invalid namespace %q", ns))
			return
		}
	}
}
