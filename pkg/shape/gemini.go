package shape

import (
	"google.golang.org/genai"
)

// ToGemini translates a shape into the Gemini structured-output schema
// dialect. The shape is normalized first so {X, null} unions arrive as a
// nullable X rather than a two-branch union, which Gemini cannot express.
func ToGemini(s *Shape) (*genai.Schema, error) {
	if s == nil {
		return nil, nil
	}
	normalized := s.Normalize()
	if err := normalized.Validate(); err != nil {
		return nil, err
	}
	return toGeminiNode(normalized, "$")
}

func toGeminiNode(s *Shape, path string) (*genai.Schema, error) {
	if len(s.OneOf) > 0 {
		return nil, translationErrf(path, "union of %d non-null branches has no gemini equivalent", len(s.OneOf))
	}

	out := &genai.Schema{
		Description: s.Description,
		Pattern:     s.Pattern,
	}
	if s.Nullable {
		nullable := true
		out.Nullable = &nullable
	}

	switch s.Kind {
	case KindObject:
		out.Type = genai.TypeObject
		if len(s.Fields) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(s.Fields))
			for _, name := range sortedFieldNames(s.Fields) {
				field, err := toGeminiNode(s.Fields[name], path+"."+name)
				if err != nil {
					return nil, err
				}
				out.Properties[name] = field
			}
			out.PropertyOrdering = sortedFieldNames(s.Fields)
		}
		out.Required = append(out.Required, s.Required...)
	case KindArray:
		out.Type = genai.TypeArray
		item, err := toGeminiNode(s.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		out.Items = item
		out.MinItems = s.MinItems
		out.MaxItems = s.MaxItems
	case KindString:
		out.Type = genai.TypeString
	case KindNumber:
		out.Type = genai.TypeNumber
	case KindInteger:
		out.Type = genai.TypeInteger
	case KindBoolean:
		out.Type = genai.TypeBoolean
	default:
		return nil, translationErrf(path, "kind %q has no gemini equivalent", s.Kind)
	}

	return out, nil
}
