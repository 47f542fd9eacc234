package config

import (
	"strings"
	"time"
)

// Config wraps a decoded YAML/JSON document for typed value extraction.
// Keys are dotted paths into nested maps ("advanced.flags"). All accessors
// return the default when the path is missing or the value has another type.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

func (c Config) lookup(path string) (any, bool) {
	var cur any = c.data
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// asMap accepts both map[string]any (JSON, YAML v3) and map[any]any.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

// String returns the string value at path, or defaultVal.
func (c Config) String(path, defaultVal string) string {
	v, ok := c.lookup(path)
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// Duration returns the duration at path, or defaultVal.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int, int64, float64: interpreted as seconds
func (c Config) Duration(path string, defaultVal time.Duration) time.Duration {
	v, ok := c.lookup(path)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case float64:
		return time.Duration(val * float64(time.Second))
	case int:
		return time.Duration(val) * time.Second
	case int64:
		return time.Duration(val) * time.Second
	}
	return defaultVal
}

// Bool returns the boolean at path, or defaultVal.
func (c Config) Bool(path string, defaultVal bool) bool {
	v, ok := c.lookup(path)
	if !ok {
		return defaultVal
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer at path, or defaultVal. A float64 is accepted
// only when it has no fractional part.
func (c Config) Int(path string, defaultVal int) int {
	v, ok := c.lookup(path)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if val == float64(int(val)) {
			return int(val)
		}
	}
	return defaultVal
}

// StringSlice returns the string list at path, or defaultVal. A single
// string is split on '|' and ',' so that flag sets can be written inline
// ("DecimalAsDefault|OverflowProtection").
func (c Config) StringSlice(path string, defaultVal []string) []string {
	v, ok := c.lookup(path)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case []string:
		return val
	case string:
		fields := strings.FieldsFunc(val, func(r rune) bool { return r == '|' || r == ',' })
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return fields
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			result = append(result, s)
		}
		return result
	}
	return defaultVal
}

// Map returns the nested map at path, or nil.
func (c Config) Map(path string) map[string]any {
	v, ok := c.lookup(path)
	if !ok {
		return nil
	}
	m, _ := asMap(v)
	return m
}

// Sub returns the nested section at path as a Config. A missing section
// yields an empty Config.
func (c Config) Sub(path string) Config {
	return New(c.Map(path))
}

// Has returns true if path exists in the config.
func (c Config) Has(path string) bool {
	_, ok := c.lookup(path)
	return ok
}

// Raw returns the underlying map.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.data
}
