package analysis

import "sort"

// Options is the recognized-option bag passed to Analyze. Each analyzer
// documents its own recognized keys and defaults; unknown keys
// are silently ignored, and an analyzer validates only the keys it cares
// about.
type Options map[string]any

// IntOr returns the int value of key, or def if absent or not an int-like
// type. Accepts int and float64 (the latter so options constructed from
// decoded JSON round-trip cleanly).
func (o Options) IntOr(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return def
	}
}

// BoolOr returns the bool value of key, or def if absent or not a bool.
func (o Options) BoolOr(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// StringOr returns the string value of key, or def if absent or not a string.
func (o Options) StringOr(key string, def string) string {
	v, ok := o[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// Has reports whether key was supplied at all (used to distinguish "absent,
// use default" from "explicitly supplied").
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// optionsKey builds a stable cache key from an option bag by projecting
// only the keys an analyzer recognizes, in a fixed order. This avoids map
// iteration-order nondeterminism from leaking into the cache key while
// still letting unknown keys be ignored.
func optionsKey(o Options, recognized []string) string {
	key := make([]byte, 0, 64)
	for _, k := range recognized {
		key = append(key, k...)
		key = append(key, '=')
		key = appendValue(key, o[k])
		key = append(key, ';')
	}
	return string(key)
}

func appendValue(buf []byte, v any) []byte {
	switch t := v.(type) {
	case nil:
		return append(buf, "<nil>"...)
	case string:
		return append(buf, t...)
	case bool:
		if t {
			return append(buf, "true"...)
		}
		return append(buf, "false"...)
	case int:
		return appendInt(buf, int64(t))
	case int64:
		return appendInt(buf, t)
	case float64:
		return appendInt(buf, int64(t))
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf = append(buf, '{')
		for _, k := range keys {
			buf = append(buf, k...)
			buf = append(buf, ':')
			buf = appendValue(buf, t[k])
			buf = append(buf, ',')
		}
		return append(buf, '}')
	default:
		return append(buf, "?"...)
	}
}

func appendInt(buf []byte, v int64) []byte {
	if v == 0 {
		return append(buf, '0')
	}
	neg := v < 0
	if neg {
		v = -v
		buf = append(buf, '-')
	}
	start := len(buf)
	for v > 0 {
		buf = append(buf, byte('0'+v%10))
		v /= 10
	}
	// reverse digits appended after start
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}
