// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package registry

import "strings"

// Subject naming strategies.
const (
	TopicNameStrategy       = "TopicNameStrategy"
	RecordNameStrategy      = "RecordNameStrategy"
	TopicRecordNameStrategy = "TopicRecordNameStrategy"
)

// SubjectName derives the Confluent subject of a schema. An explicit subject
// is used as is when no strategy is set.
func SubjectName(s Settings) string {
	if s.SchemaNameStrategy == "" && s.ConfluentSubjectName != "" {
		return s.ConfluentSubjectName
	}
	switch s.SchemaNameStrategy {
	case RecordNameStrategy:
		return joinNonEmpty(s.Namespace, s.Name, s.SchemaType)
	case TopicNameStrategy:
		topic := s.SchemaTopic
		if topic == "" {
			topic = s.Name
		}
		return joinNonEmpty(topic, s.SchemaType)
	case TopicRecordNameStrategy:
		return joinNonEmpty(s.SchemaTopic, s.Namespace, s.Name, s.SchemaType)
	default:
		return joinNonEmpty(s.Name, s.SchemaType)
	}
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "-")
}
