// Package lookup provides best-effort field access into JSON payloads whose
// schema is not documented. Every accessor takes an ordered list of candidate
// paths and the first one that resolves to a non-null value wins.
//
// Paths are dot separated ("homeTeam.name"). A numeric segment indexes into
// an array ("events.0.id"). The candidate key lists used by the adapters are
// guesses about third-party payloads and will break when upstream changes.
package lookup

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value walks path through nested maps and slices.
// It returns false when any segment is missing or the final value is null.
func Value(data interface{}, path string) (interface{}, bool) {
	if path == "" {
		return data, data != nil
	}

	current := data
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}
	return current, true
}

// First returns the first candidate path that resolves
func First(data interface{}, paths ...string) (interface{}, bool) {
	for _, path := range paths {
		if v, ok := Value(data, path); ok {
			return v, true
		}
	}
	return nil, false
}

// String returns the first resolvable path rendered as a string, or def.
// Numbers are formatted without a trailing ".0"; empty strings are skipped.
func String(data interface{}, def string, paths ...string) string {
	for _, path := range paths {
		v, ok := Value(data, path)
		if !ok {
			continue
		}
		if s, ok := toString(v); ok && s != "" {
			return s
		}
	}
	return def
}

// Int returns the first path that converts to an integer, or def
func Int(data interface{}, def int, paths ...string) int {
	for _, path := range paths {
		v, ok := Value(data, path)
		if !ok {
			continue
		}
		switch val := v.(type) {
		case float64:
			return int(val)
		case json.Number:
			if i, err := val.Int64(); err == nil {
				return int(i)
			}
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				return i
			}
		}
	}
	return def
}

// Slice returns the first path that holds an array
func Slice(data interface{}, paths ...string) []interface{} {
	for _, path := range paths {
		v, ok := Value(data, path)
		if !ok {
			continue
		}
		if s, ok := v.([]interface{}); ok {
			return s
		}
	}
	return nil
}

// Map returns the first path that holds an object
func Map(data interface{}, paths ...string) map[string]interface{} {
	for _, path := range paths {
		v, ok := Value(data, path)
		if !ok {
			continue
		}
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

// Raw returns the first resolvable path as is, keeping its JSON type.
// Stat cells use this so numbers and strings both survive.
func Raw(data interface{}, paths ...string) interface{} {
	v, _ := First(data, paths...)
	return v
}

func toString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	}
	return "", false
}
