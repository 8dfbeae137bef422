package adapter

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/mapstructure"
)

// Section is the configuration of a single service as read from the
// configuration source. Values are scalars or nested maps.
type Section map[string]any

// Clone returns a deep copy of the section. Values that cannot be copied
// structurally are shared with s.
func (s Section) Clone() Section {
	if s == nil {
		return Section{}
	}
	out, err := copystructure.Copy(map[string]any(s))
	if err != nil {
		cp := make(Section, len(s))
		for k, v := range s {
			cp[k] = v
		}
		return cp
	}
	return Section(out.(map[string]any))
}

// Merge combines defaults with overrides. Every key present in overrides
// replaces the value from defaults; nested maps are replaced as a whole.
// Neither input is modified.
func Merge(defaults, overrides Section) Section {
	out := defaults.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Keys returns the section keys in sorted order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present with a non-empty value.
func (s Section) Has(key string) bool {
	v, ok := s[key]
	if !ok {
		return false
	}
	return !IsEmpty(v)
}

// IsEmpty reports whether v counts as an unset configuration value.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// String returns the value of key formatted as a string, or "" when absent.
func (s Section) String(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Int returns the value of key coerced to an int. Absent or unparsable values
// yield 0.
func (s Section) Int(key string) int {
	v, ok := s[key]
	if !ok {
		return 0
	}
	return ToInt(v)
}

// Bool returns the value of key coerced to a bool.
func (s Section) Bool(key string) bool {
	v, ok := s[key]
	if !ok {
		return false
	}
	return ToBool(v)
}

// Map returns the nested map stored under key, or nil.
func (s Section) Map(key string) map[string]any {
	switch m := s[key].(type) {
	case map[string]any:
		return m
	case Section:
		return m
	}
	return nil
}

// ToBool coerces configuration values such as "1", "true", 1 or true.
func ToBool(v any) bool {
	var b bool
	if err := mapstructure.WeakDecode(v, &b); err != nil {
		return false
	}
	return b
}

// ToInt coerces configuration values such as "7000", 7000.0 or 7000.
func ToInt(v any) int {
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0
		}
		return n
	}
	var n int
	if err := mapstructure.WeakDecode(v, &n); err != nil {
		return 0
	}
	return n
}
