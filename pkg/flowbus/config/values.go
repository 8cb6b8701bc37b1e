package config

import (
	"fmt"
	"strings"
)

// Values wraps a decoded configuration document. Keys are dotted paths
// through nested maps: "bus.journal_path" reads data["bus"]["journal_path"].
type Values struct {
	data map[string]any
}

// New creates Values from the given map. A nil map yields empty Values.
func New(data map[string]any) Values {
	if data == nil {
		data = make(map[string]any)
	}
	return Values{data: data}
}

// Raw returns the underlying map. It must not be modified.
func (v Values) Raw() map[string]any {
	return v.data
}

// Has returns true if path resolves to a value.
func (v Values) Has(path string) bool {
	_, ok := v.get(path)
	return ok
}

// get walks the dotted path. A full-key match wins over a nested one, so
// flat documents with dotted keys still resolve.
func (v Values) get(path string) (any, bool) {
	if val, ok := v.data[path]; ok {
		return val, true
	}

	node := v.data
	parts := strings.Split(path, ".")
	for i, part := range parts {
		val, ok := node[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return val, true
		}
		next, ok := val.(map[string]any)
		if !ok {
			return nil, false
		}
		node = next
	}
	return nil, false
}

// String returns the string at path, or defaultVal.
func (v Values) String(path, defaultVal string) string {
	s, ok, err := v.LookupString(path)
	if !ok || err != nil {
		return defaultVal
	}
	return s
}

// LookupString returns the string at path. ok is false when the path is
// missing; err is set when the value is not a string.
func (v Values) LookupString(path string) (s string, ok bool, err error) {
	raw, ok := v.get(path)
	if !ok {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, typeError(path, "string", raw)
	}
	return s, true, nil
}

// Bool returns the bool at path, or defaultVal.
func (v Values) Bool(path string, defaultVal bool) bool {
	b, ok, err := v.LookupBool(path)
	if !ok || err != nil {
		return defaultVal
	}
	return b
}

// LookupBool returns the bool at path.
func (v Values) LookupBool(path string) (b bool, ok bool, err error) {
	raw, ok := v.get(path)
	if !ok {
		return false, false, nil
	}
	b, isBool := raw.(bool)
	if !isBool {
		return false, true, typeError(path, "bool", raw)
	}
	return b, true, nil
}

// Int returns the integer at path, or defaultVal.
func (v Values) Int(path string, defaultVal int) int {
	n, ok, err := v.LookupInt(path)
	if !ok || err != nil {
		return defaultVal
	}
	return n
}

// LookupInt returns the integer at path.
//
// Accepts int, int64, and float64 without a fractional part (JSON numbers).
func (v Values) LookupInt(path string) (n int, ok bool, err error) {
	raw, ok := v.get(path)
	if !ok {
		return 0, false, nil
	}
	switch val := raw.(type) {
	case int:
		return val, true, nil
	case int64:
		return int(val), true, nil
	case float64:
		if val == float64(int(val)) {
			return int(val), true, nil
		}
	}
	return 0, true, typeError(path, "integer", raw)
}

// StringSlice returns the string list at path, or defaultVal.
func (v Values) StringSlice(path string, defaultVal []string) []string {
	s, ok, err := v.LookupStringSlice(path)
	if !ok || err != nil {
		return defaultVal
	}
	return s
}

// LookupStringSlice returns the string list at path. A single string is
// treated as a one-element list.
func (v Values) LookupStringSlice(path string) (s []string, ok bool, err error) {
	raw, ok := v.get(path)
	if !ok {
		return nil, false, nil
	}
	switch val := raw.(type) {
	case string:
		return []string{val}, true, nil
	case []string:
		return val, true, nil
	case []any:
		out := make([]string, 0, len(val))
		for i, item := range val {
			str, isString := item.(string)
			if !isString {
				return nil, true, typeError(fmt.Sprintf("%s[%d]", path, i), "string", item)
			}
			out = append(out, str)
		}
		return out, true, nil
	}
	return nil, true, typeError(path, "list of strings", raw)
}

func typeError(path, want string, got any) error {
	return fmt.Errorf("config %s: want %s, got %T", path, want, got)
}
