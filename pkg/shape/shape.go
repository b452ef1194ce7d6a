// Package shape describes the structured output a caller expects from a
// model tier, independent of any provider's schema dialect.
package shape

import (
	"fmt"
	"sort"
)

// Kind identifies the type of a shape node.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
)

// Shape is a provider-neutral description of an expected output value.
// Exactly one of the kind-specific field groups is meaningful per node.
type Shape struct {
	Kind        Kind
	Description string

	// Object
	Fields   map[string]*Shape
	Required []string

	// Array
	Items    *Shape
	MinItems *int64
	MaxItems *int64

	// String
	Pattern string

	// Union branches. Normalize collapses {X, null} to X with Nullable set.
	OneOf []*Shape

	Nullable bool
}

// TranslationError marks a shape that cannot be expressed in a tier's
// native schema dialect. It is a caller configuration error, never a
// tier-exhaustion condition.
type TranslationError struct {
	Path string
	Err  error
}

func (e *TranslationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("shape translation at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("shape translation: %v", e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

func translationErrf(path, format string, args ...any) error {
	return &TranslationError{Path: path, Err: fmt.Errorf(format, args...)}
}

// Normalize rewrites the shape into its canonical form: a union holding a
// null branch and exactly one other branch collapses to that branch marked
// nullable. Applied recursively; the receiver is not modified.
func (s *Shape) Normalize() *Shape {
	if s == nil {
		return nil
	}
	out := *s

	if len(s.OneOf) > 0 {
		var branches []*Shape
		sawNull := false
		for _, b := range s.OneOf {
			if b != nil && b.Kind == KindNull {
				sawNull = true
				continue
			}
			branches = append(branches, b.Normalize())
		}
		if sawNull && len(branches) == 1 {
			collapsed := *branches[0]
			collapsed.Nullable = true
			if collapsed.Description == "" {
				collapsed.Description = s.Description
			}
			return &collapsed
		}
		out.OneOf = branches
		if sawNull {
			out.Nullable = true
		}
		return &out
	}

	if s.Fields != nil {
		fields := make(map[string]*Shape, len(s.Fields))
		for name, f := range s.Fields {
			fields[name] = f.Normalize()
		}
		out.Fields = fields
	}
	if s.Items != nil {
		out.Items = s.Items.Normalize()
	}
	return &out
}

// Validate checks that the shape is internally consistent before
// translation is attempted.
func (s *Shape) Validate() error {
	return s.validate("$")
}

func (s *Shape) validate(path string) error {
	if s == nil {
		return translationErrf(path, "nil shape")
	}
	if len(s.OneOf) > 0 {
		for i, b := range s.OneOf {
			if err := b.validate(fmt.Sprintf("%s.oneOf[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	switch s.Kind {
	case KindObject:
		for _, name := range s.Required {
			if _, ok := s.Fields[name]; !ok {
				return translationErrf(path, "required field %q not declared", name)
			}
		}
		for name, f := range s.Fields {
			if err := f.validate(path + "." + name); err != nil {
				return err
			}
		}
	case KindArray:
		if s.Items == nil {
			return translationErrf(path, "array shape missing items")
		}
		if s.MinItems != nil && s.MaxItems != nil && *s.MinItems > *s.MaxItems {
			return translationErrf(path, "minItems %d exceeds maxItems %d", *s.MinItems, *s.MaxItems)
		}
		return s.Items.validate(path + "[]")
	case KindString, KindNumber, KindInteger, KindBoolean, KindNull:
	case "":
		return translationErrf(path, "shape kind missing")
	default:
		return translationErrf(path, "unsupported shape kind %q", s.Kind)
	}
	return nil
}

// sortedFieldNames returns the object field names in stable order so
// translated schemas do not churn between calls.
func sortedFieldNames(fields map[string]*Shape) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
