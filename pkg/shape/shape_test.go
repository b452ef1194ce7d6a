package shape

import (
	"errors"
	"strings"
	"testing"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestNormalizeCollapsesNullUnion(t *testing.T) {
	s := &Shape{
		OneOf: []*Shape{
			{Kind: KindString},
			{Kind: KindNull},
		},
	}
	got := s.Normalize()
	if len(got.OneOf) != 0 {
		t.Fatalf("expected union collapsed, got %d branches", len(got.OneOf))
	}
	if got.Kind != KindString || !got.Nullable {
		t.Fatalf("expected nullable string leaf, got kind=%s nullable=%v", got.Kind, got.Nullable)
	}
}

func TestNormalizeKeepsMultiBranchUnion(t *testing.T) {
	s := &Shape{
		OneOf: []*Shape{
			{Kind: KindString},
			{Kind: KindNumber},
			{Kind: KindNull},
		},
	}
	got := s.Normalize()
	if len(got.OneOf) != 2 {
		t.Fatalf("expected 2 non-null branches, got %d", len(got.OneOf))
	}
	if !got.Nullable {
		t.Fatalf("expected union marked nullable")
	}
}

func TestNormalizeRecursesIntoFields(t *testing.T) {
	s := &Shape{
		Kind: KindObject,
		Fields: map[string]*Shape{
			"note": {OneOf: []*Shape{{Kind: KindString}, {Kind: KindNull}}},
		},
	}
	got := s.Normalize()
	field := got.Fields["note"]
	if field.Kind != KindString || !field.Nullable {
		t.Fatalf("expected nested nullable string, got kind=%s nullable=%v", field.Kind, field.Nullable)
	}
}

func TestValidateRejectsUndeclaredRequiredField(t *testing.T) {
	s := &Shape{
		Kind:     KindObject,
		Fields:   map[string]*Shape{"a": {Kind: KindString}},
		Required: []string{"a", "missing"},
	}
	err := s.Validate()
	var translationErr *TranslationError
	if !errors.As(err, &translationErr) {
		t.Fatalf("expected TranslationError, got %v", err)
	}
}

func TestValidateRejectsBadItemBounds(t *testing.T) {
	s := &Shape{
		Kind:     KindArray,
		Items:    &Shape{Kind: KindNumber},
		MinItems: int64Ptr(5),
		MaxItems: int64Ptr(2),
	}
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for minItems > maxItems")
	}
}

func TestParseScalarType(t *testing.T) {
	s, err := Parse([]byte(`{"type": "string", "pattern": "^[a-z]+$"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Kind != KindString || s.Pattern != "^[a-z]+$" {
		t.Fatalf("unexpected shape: %+v", s)
	}
}

func TestParseTypeArrayWithNull(t *testing.T) {
	s, err := Parse([]byte(`{"type": ["string", "null"]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Kind != KindString || !s.Nullable {
		t.Fatalf("expected nullable string, got kind=%s nullable=%v", s.Kind, s.Nullable)
	}
}

func TestParseObjectDocument(t *testing.T) {
	doc := `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"scores": {"type": "array", "items": {"type": "number"}, "minItems": 1},
			"note": {"anyOf": [{"type": "string"}, {"type": "null"}]}
		},
		"required": ["name", "scores"]
	}`
	s, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Kind != KindObject || len(s.Fields) != 3 {
		t.Fatalf("unexpected shape: %+v", s)
	}
	scores := s.Fields["scores"]
	if scores.Kind != KindArray || scores.MinItems == nil || *scores.MinItems != 1 {
		t.Fatalf("unexpected scores shape: %+v", scores)
	}
	note := s.Fields["note"]
	if note.Kind != KindString || !note.Nullable {
		t.Fatalf("expected note normalized to nullable string, got %+v", note)
	}
	if len(s.Required) != 2 {
		t.Fatalf("unexpected required list: %v", s.Required)
	}
}

func TestParseRejectsUnknownType(t *testing.T) {
	_, err := Parse([]byte(`{"type": "tuple"}`))
	var translationErr *TranslationError
	if !errors.As(err, &translationErr) {
		t.Fatalf("expected TranslationError, got %v", err)
	}
}

func TestParseRejectsMissingType(t *testing.T) {
	if _, err := Parse([]byte(`{"description": "no type"}`)); err == nil {
		t.Fatalf("expected error for missing type")
	}
}

func structuredTestShape() *Shape {
	return &Shape{
		Kind: KindObject,
		Fields: map[string]*Shape{
			"note": {OneOf: []*Shape{{Kind: KindString}, {Kind: KindNull}}},
			"scores": {
				Kind:     KindArray,
				Items:    &Shape{Kind: KindNumber},
				MinItems: int64Ptr(1),
			},
		},
		Required: []string{"scores"},
	}
}

func TestToGeminiStructuredShape(t *testing.T) {
	schema, err := ToGemini(structuredTestShape())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	note := schema.Properties["note"]
	if note == nil || note.Nullable == nil || !*note.Nullable {
		t.Fatalf("expected note translated as nullable, got %+v", note)
	}
	scores := schema.Properties["scores"]
	if scores == nil || scores.MinItems == nil || *scores.MinItems != 1 {
		t.Fatalf("expected scores minItems preserved, got %+v", scores)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "scores" {
		t.Fatalf("unexpected required: %v", schema.Required)
	}
	if len(schema.PropertyOrdering) != 2 || schema.PropertyOrdering[0] != "note" {
		t.Fatalf("expected sorted property ordering, got %v", schema.PropertyOrdering)
	}
}

func TestToGeminiRejectsRealUnion(t *testing.T) {
	s := &Shape{OneOf: []*Shape{{Kind: KindString}, {Kind: KindNumber}}}
	_, err := ToGemini(s)
	var translationErr *TranslationError
	if !errors.As(err, &translationErr) {
		t.Fatalf("expected TranslationError for multi-branch union, got %v", err)
	}
}

func TestToGeminiNilShape(t *testing.T) {
	schema, err := ToGemini(nil)
	if err != nil || schema != nil {
		t.Fatalf("expected nil schema without error, got %v, %v", schema, err)
	}
}

func TestToJSONSchemaStructuredShape(t *testing.T) {
	doc, err := ToJSONSchema(structuredTestShape())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if doc["type"] != "object" {
		t.Fatalf("expected object type, got %v", doc["type"])
	}
	if doc["additionalProperties"] != false {
		t.Fatalf("expected additionalProperties false")
	}

	props := doc["properties"].(map[string]any)
	note := props["note"].(map[string]any)
	types, ok := note["type"].([]string)
	if !ok || len(types) != 2 || types[0] != "string" || types[1] != "null" {
		t.Fatalf("expected nullable type array on note, got %v", note["type"])
	}
	scores := props["scores"].(map[string]any)
	if scores["minItems"] != int64(1) {
		t.Fatalf("expected minItems preserved, got %v", scores["minItems"])
	}
}

func TestDirectiveRendersSchemaBlock(t *testing.T) {
	directive, err := Directive(&Shape{Kind: KindObject, Fields: map[string]*Shape{
		"answer": {Kind: KindString},
	}, Required: []string{"answer"}})
	if err != nil {
		t.Fatalf("directive: %v", err)
	}
	if !strings.Contains(directive, "JSON Schema") {
		t.Fatalf("expected instruction preamble, got %q", directive)
	}
	if !strings.Contains(directive, `"answer"`) {
		t.Fatalf("expected schema body in directive, got %q", directive)
	}
}

func TestDirectiveNilShape(t *testing.T) {
	directive, err := Directive(nil)
	if err != nil || directive != "" {
		t.Fatalf("expected empty directive for nil shape, got %q, %v", directive, err)
	}
}

type reviewFinding struct {
	File    string   `json:"file"`
	Line    int      `json:"line"`
	Notes   []string `json:"notes,omitempty"`
	Summary string   `json:"summary"`
}

func TestFromType(t *testing.T) {
	s, err := FromType[reviewFinding]()
	if err != nil {
		t.Fatalf("from type: %v", err)
	}
	if s.Kind != KindObject {
		t.Fatalf("expected object shape, got %s", s.Kind)
	}
	if s.Fields["file"] == nil || s.Fields["file"].Kind != KindString {
		t.Fatalf("expected string field file, got %+v", s.Fields["file"])
	}
	if s.Fields["line"] == nil || s.Fields["line"].Kind != KindInteger {
		t.Fatalf("expected integer field line, got %+v", s.Fields["line"])
	}
	if s.Fields["notes"] == nil || s.Fields["notes"].Kind != KindArray {
		t.Fatalf("expected array field notes, got %+v", s.Fields["notes"])
	}

	required := make(map[string]bool)
	for _, name := range s.Required {
		required[name] = true
	}
	if !required["file"] || !required["summary"] {
		t.Fatalf("expected file and summary required, got %v", s.Required)
	}
	if required["notes"] {
		t.Fatalf("omitempty field should not be required, got %v", s.Required)
	}
}
