package shape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// ToJSONSchema translates a shape into a plain JSON Schema map, the dialect
// OpenAI-compatible providers accept as a response_format schema.
func ToJSONSchema(s *Shape) (map[string]any, error) {
	if s == nil {
		return nil, nil
	}
	normalized := s.Normalize()
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	return toJSONSchemaNode(normalized, "$")
}

func toJSONSchemaNode(s *Shape, path string) (map[string]any, error) {
	if len(s.OneOf) > 0 {
		var branches []any
		for i, b := range s.OneOf {
			node, err := toJSONSchemaNode(b, fmt.Sprintf("%s.oneOf[%d]", path, i))
			if err != nil {
				return nil, err
			}
			branches = append(branches, node)
		}
		out := map[string]any{"anyOf": branches}
		if s.Description != "" {
			out["description"] = s.Description
		}
		return out, nil
	}

	out := map[string]any{}
	if s.Nullable {
		out["type"] = []string{string(s.Kind), "null"}
	} else {
		out["type"] = string(s.Kind)
	}
	if s.Description != "" {
		out["description"] = s.Description
	}

	switch s.Kind {
	case KindObject:
		props := map[string]any{}
		for _, name := range sortedFieldNames(s.Fields) {
			node, err := toJSONSchemaNode(s.Fields[name], path+"."+name)
			if err != nil {
				return nil, err
			}
			props[name] = node
		}
		out["properties"] = props
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
		out["additionalProperties"] = false
	case KindArray:
		item, err := toJSONSchemaNode(s.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		out["items"] = item
		if s.MinItems != nil {
			out["minItems"] = *s.MinItems
		}
		if s.MaxItems != nil {
			out["maxItems"] = *s.MaxItems
		}
	case KindString:
		if s.Pattern != "" {
			out["pattern"] = s.Pattern
		}
	case KindNumber, KindInteger, KindBoolean:
	default:
		return nil, translationErrf(path, "kind %q has no json schema equivalent", s.Kind)
	}

	return out, nil
}

// Directive renders the instruction block appended to prompts for providers
// without native structured-output enforcement.
func Directive(s *Shape) (string, error) {
	doc, err := ToJSONSchema(s)
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", nil
	}
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode shape directive: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("Respond with a single JSON value matching this JSON Schema. ")
	sb.WriteString("Output only the JSON, no prose or code fences.\n\n")
	sb.Write(encoded)
	return sb.String(), nil
}

// FromType derives a shape from a Go type via JSON Schema reflection.
// Struct tags drive field names and required-ness the same way they drive
// encoding/json.
func FromType[T any]() (*Shape, error) {
	reflector := &jsonschema.Reflector{DoNotReference: true}
	var zero T
	schema := reflector.Reflect(&zero)
	schema = resolveRef(schema, schema)
	if schema == nil {
		return nil, fmt.Errorf("reflect shape: empty schema")
	}
	s, err := fromReflected(schema, schema, "$")
	if err != nil {
		return nil, err
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func fromReflected(schema, root *jsonschema.Schema, path string) (*Shape, error) {
	schema = resolveRef(schema, root)
	if schema == nil {
		return nil, translationErrf(path, "unresolvable schema reference")
	}

	s := &Shape{Description: schema.Description}

	if len(schema.OneOf) > 0 || len(schema.AnyOf) > 0 {
		branches := schema.OneOf
		if len(branches) == 0 {
			branches = schema.AnyOf
		}
		for i, b := range branches {
			branch, err := fromReflected(b, root, fmt.Sprintf("%s.oneOf[%d]", path, i))
			if err != nil {
				return nil, err
			}
			s.OneOf = append(s.OneOf, branch)
		}
		return s, nil
	}

	kind, _, err := kindFromName(schema.Type, path)
	if err != nil {
		return nil, err
	}
	s.Kind = kind

	switch kind {
	case KindObject:
		if schema.Properties != nil {
			s.Fields = make(map[string]*Shape)
			for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
				field, err := fromReflected(pair.Value, root, path+"."+pair.Key)
				if err != nil {
					return nil, err
				}
				s.Fields[pair.Key] = field
			}
		}
		s.Required = append(s.Required, schema.Required...)
	case KindArray:
		if schema.Items == nil {
			return nil, translationErrf(path, "array schema missing items")
		}
		item, err := fromReflected(schema.Items, root, path+"[]")
		if err != nil {
			return nil, err
		}
		s.Items = item
		if schema.MinItems != nil {
			v := int64(*schema.MinItems)
			s.MinItems = &v
		}
		if schema.MaxItems != nil {
			v := int64(*schema.MaxItems)
			s.MaxItems = &v
		}
	case KindString:
		s.Pattern = schema.Pattern
	}

	return s, nil
}

// resolveRef follows a $ref into the schema's definitions, which reflection
// emits for named types even with referencing disabled at the top level.
func resolveRef(schema, root *jsonschema.Schema) *jsonschema.Schema {
	if schema == nil || schema.Ref == "" {
		return schema
	}
	name := schema.Ref[strings.LastIndex(schema.Ref, "/")+1:]
	if root != nil && root.Definitions != nil {
		if def, ok := root.Definitions[name]; ok {
			return def
		}
	}
	return nil
}
