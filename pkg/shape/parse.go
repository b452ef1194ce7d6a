package shape

import (
	"encoding/json"
	"fmt"
)

// Parse reads a JSON Schema style document into a Shape. The subset
// understood covers what tiers can enforce: type (string or array form),
// properties/required, items with minItems/maxItems, pattern, and
// anyOf/oneOf unions. The result is normalized.
func Parse(data []byte) (*Shape, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse shape document: %w", err)
	}
	s, err := parseNode(raw, "$")
	if err != nil {
		return nil, err
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseNode(raw map[string]any, path string) (*Shape, error) {
	s := &Shape{}
	if desc, ok := raw["description"].(string); ok {
		s.Description = desc
	}

	if branches, ok := unionBranches(raw); ok {
		for i, b := range branches {
			node, ok := b.(map[string]any)
			if !ok {
				return nil, translationErrf(path, "union branch %d is not an object", i)
			}
			branch, err := parseNode(node, fmt.Sprintf("%s.oneOf[%d]", path, i))
			if err != nil {
				return nil, err
			}
			s.OneOf = append(s.OneOf, branch)
		}
		return s, nil
	}

	kind, nullable, err := parseType(raw["type"], path)
	if err != nil {
		return nil, err
	}
	s.Kind = kind
	s.Nullable = nullable

	switch kind {
	case KindObject:
		if props, ok := raw["properties"].(map[string]any); ok {
			s.Fields = make(map[string]*Shape, len(props))
			for name, value := range props {
				node, ok := value.(map[string]any)
				if !ok {
					return nil, translationErrf(path+"."+name, "property is not an object")
				}
				field, err := parseNode(node, path+"."+name)
				if err != nil {
					return nil, err
				}
				s.Fields[name] = field
			}
		}
		if req, ok := raw["required"].([]any); ok {
			for _, r := range req {
				name, ok := r.(string)
				if !ok {
					return nil, translationErrf(path, "required entry is not a string")
				}
				s.Required = append(s.Required, name)
			}
		}
	case KindArray:
		items, ok := raw["items"].(map[string]any)
		if !ok {
			return nil, translationErrf(path, "array schema missing items")
		}
		item, err := parseNode(items, path+"[]")
		if err != nil {
			return nil, err
		}
		s.Items = item
		if v, ok := numberField(raw, "minItems"); ok {
			s.MinItems = &v
		}
		if v, ok := numberField(raw, "maxItems"); ok {
			s.MaxItems = &v
		}
	case KindString:
		if pattern, ok := raw["pattern"].(string); ok {
			s.Pattern = pattern
		}
	}

	return s, nil
}

// unionBranches returns the anyOf or oneOf branch list, if present.
func unionBranches(raw map[string]any) ([]any, bool) {
	if branches, ok := raw["anyOf"].([]any); ok && len(branches) > 0 {
		return branches, true
	}
	if branches, ok := raw["oneOf"].([]any); ok && len(branches) > 0 {
		return branches, true
	}
	return nil, false
}

// parseType handles both the scalar form ("string") and the array form
// (["string", "null"]), where a null entry marks the shape nullable.
func parseType(v any, path string) (Kind, bool, error) {
	switch t := v.(type) {
	case string:
		return kindFromName(t, path)
	case []any:
		var kind Kind
		nullable := false
		for _, entry := range t {
			name, ok := entry.(string)
			if !ok {
				return "", false, translationErrf(path, "type entry is not a string")
			}
			if name == "null" {
				nullable = true
				continue
			}
			if kind != "" {
				return "", false, translationErrf(path, "type lists multiple non-null entries")
			}
			k, _, err := kindFromName(name, path)
			if err != nil {
				return "", false, err
			}
			kind = k
		}
		if kind == "" {
			return "", false, translationErrf(path, "type lists only null")
		}
		return kind, nullable, nil
	case nil:
		return "", false, translationErrf(path, "schema missing type")
	default:
		return "", false, translationErrf(path, "unsupported type declaration %T", v)
	}
}

func kindFromName(name, path string) (Kind, bool, error) {
	switch Kind(name) {
	case KindObject, KindArray, KindString, KindNumber, KindInteger, KindBoolean, KindNull:
		return Kind(name), false, nil
	default:
		return "", false, translationErrf(path, "unsupported type %q", name)
	}
}

func numberField(raw map[string]any, key string) (int64, bool) {
	f, ok := raw[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
