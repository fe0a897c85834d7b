package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Store values arrive from JSON (float64 or json.Number), YAML (int) or
// hand-written files (strings), so every read goes through these helpers.

// asString returns v when it is a string.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asMap returns v when it is a string-keyed mapping.
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

// asList returns v when it is a list.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// AsPort coerces a port value to an int. Fractional, negative and
// non-numeric values are rejected.
func AsPort(v any) (int, bool) {
	switch p := v.(type) {
	case int:
		return p, p >= 0
	case int64:
		return int(p), p >= 0
	case uint64:
		return int(p), true
	case float64:
		if p < 0 || p != math.Trunc(p) {
			return 0, false
		}
		return int(p), true
	case json.Number:
		n, err := strconv.Atoi(p.String())
		return n, err == nil && n >= 0
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(p))
		return n, err == nil && n >= 0
	}
	return 0, false
}

// isEmpty reports whether a looked-up value should be treated as unset.
func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}

// cloneMap returns a shallow copy of m.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
