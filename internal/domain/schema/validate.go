package schema

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Validate checks a decoded JSON value against the schema: required fields,
// primitive types, string length bounds (counted in runes), and array item
// count bounds, recursing into nested objects and array items.
func (s Schema) Validate(value map[string]any) error {
	return validateObject(s, value, "$")
}

func validateObject(def map[string]any, value map[string]any, path string) error {
	for _, name := range Schema(def).Required() {
		if _, ok := value[name]; !ok {
			return fmt.Errorf("%s: missing required field %q", path, name)
		}
	}

	props, _ := def["properties"].(map[string]any)
	for name, raw := range value {
		propDef, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		if err := validateValue(propDef, raw, path+"."+name); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(def map[string]any, value any, path string) error {
	typ, _ := def["type"].(string)
	switch typ {
	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: expected string", path)
		}
		length := utf8.RuneCountInString(str)
		if min, ok := intConstraint(def, "minLength"); ok && length < min {
			return fmt.Errorf("%s: length %d below minLength %d", path, length, min)
		}
		if max, ok := intConstraint(def, "maxLength"); ok && length > max {
			return fmt.Errorf("%s: length %d exceeds maxLength %d", path, length, max)
		}
	case "integer":
		num, ok := value.(float64)
		if !ok {
			if _, isInt := value.(int); isInt {
				return nil
			}
			return fmt.Errorf("%s: expected integer", path)
		}
		if num != math.Trunc(num) {
			return fmt.Errorf("%s: expected integer, got %v", path, num)
		}
	case "number":
		switch value.(type) {
		case float64, int:
		default:
			return fmt.Errorf("%s: expected number", path)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%s: expected boolean", path)
		}
	case "array":
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array", path)
		}
		if min, ok := intConstraint(def, "minItems"); ok && len(items) < min {
			return fmt.Errorf("%s: %d items below minItems %d", path, len(items), min)
		}
		if max, ok := intConstraint(def, "maxItems"); ok && len(items) > max {
			return fmt.Errorf("%s: %d items exceeds maxItems %d", path, len(items), max)
		}
		itemDef, ok := def["items"].(map[string]any)
		if !ok {
			return nil
		}
		for i, item := range items {
			if err := validateValue(itemDef, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object", path)
		}
		return validateObject(def, obj, path)
	}
	return nil
}

func intConstraint(def map[string]any, key string) (int, bool) {
	switch v := def[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
