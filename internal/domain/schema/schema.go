// Package schema holds the JSON-Schema-like value type used to constrain and
// validate structured model output. Schemas are plain nested maps so a layout
// catalog supplied by the client round-trips without losing constraints;
// every transform returns a new value and leaves the receiver untouched.
package schema

import "encoding/json"

// Schema is a JSON-Schema-like document: type, properties, required,
// minLength/maxLength, minItems/maxItems, items, description.
type Schema map[string]any

// Reserved field names for asset and narration sub-fields inside slide content.
const (
	FieldImagePrompt = "__image_prompt__"
	FieldIconQuery   = "__icon_query__"
	FieldImageURL    = "__image_url__"
	FieldIconURL     = "__icon_url__"
	FieldSpeakerNote = "__speaker_note__"
)

// Speaker note length bounds, in characters.
const (
	SpeakerNoteMinLength = 100
	SpeakerNoteMaxLength = 250
)

// MarshalJSON lets a Schema be handed directly to response-format plumbing
// that expects a json.Marshaler.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	return Schema(cloneMap(map[string]any(s)))
}

// Properties returns the property map, or nil when absent.
func (s Schema) Properties() map[string]any {
	props, _ := s["properties"].(map[string]any)
	return props
}

// Required returns the required field names, or nil when absent.
func (s Schema) Required() []string {
	raw, ok := s["required"].([]any)
	if !ok {
		if typed, ok := s["required"].([]string); ok {
			return append([]string(nil), typed...)
		}
		return nil
	}
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// RemoveFields returns a schema with the named properties stripped from
// properties and required, recursing into nested object properties and
// array item schemas. All other constraints are preserved as-is.
func (s Schema) RemoveFields(names ...string) Schema {
	if s == nil || len(names) == 0 {
		return s.Clone()
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := s.Clone()
	removeFieldsInPlace(map[string]any(out), drop)
	return out
}

// AddField returns a schema with an extra property merged in, optionally
// marking it required.
func (s Schema) AddField(name string, def map[string]any, required bool) Schema {
	out := s.Clone()
	props, ok := out["properties"].(map[string]any)
	if !ok {
		props = map[string]any{}
		out["properties"] = props
	}
	props[name] = cloneValue(def)

	if required {
		current := out.Required()
		for _, existing := range current {
			if existing == name {
				return out
			}
		}
		out["required"] = toAnySlice(append(current, name))
	}
	return out
}

// SpeakerNoteDef is the injected speaker-note field definition.
func SpeakerNoteDef() map[string]any {
	return map[string]any{
		"type":        "string",
		"minLength":   SpeakerNoteMinLength,
		"maxLength":   SpeakerNoteMaxLength,
		"description": "Speaker note narrating this slide",
	}
}

// IsImageDef reports whether a property definition describes an image field
// (an object carrying an __image_prompt__ sub-field).
func IsImageDef(def map[string]any) bool {
	return objectHasProperty(def, FieldImagePrompt)
}

// IsIconDef reports whether a property definition describes an icon field.
func IsIconDef(def map[string]any) bool {
	return objectHasProperty(def, FieldIconQuery)
}

func objectHasProperty(def map[string]any, name string) bool {
	props, ok := def["properties"].(map[string]any)
	if !ok {
		return false
	}
	_, found := props[name]
	return found
}

func removeFieldsInPlace(node map[string]any, drop map[string]bool) {
	if props, ok := node["properties"].(map[string]any); ok {
		for name, def := range props {
			if drop[name] {
				delete(props, name)
				continue
			}
			if child, ok := def.(map[string]any); ok {
				removeFieldsInPlace(child, drop)
			}
		}
	}

	if required := node["required"]; required != nil {
		kept := make([]any, 0)
		switch typed := required.(type) {
		case []any:
			for _, v := range typed {
				if name, ok := v.(string); ok && drop[name] {
					continue
				}
				kept = append(kept, v)
			}
		case []string:
			for _, name := range typed {
				if drop[name] {
					continue
				}
				kept = append(kept, name)
			}
		default:
			kept = nil
		}
		if kept != nil {
			node["required"] = kept
		}
	}

	if items, ok := node["items"].(map[string]any); ok {
		removeFieldsInPlace(items, drop)
	}
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case Schema:
		return cloneMap(map[string]any(typed))
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return toAnySlice(typed)
	default:
		return v
	}
}

func toAnySlice(names []string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}
