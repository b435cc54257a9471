package normalize

import (
	"encoding/json"
	"time"
)

// Field accessors tolerant of the type variety JSON decoding produces.
// Numbers may arrive as float64, json.Number or native ints depending on
// the decoder; timestamps may be RFC 3339 strings or time.Time values.

func getString(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func getInt(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

func getFloat(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// getTime reads a timestamp, reporting ok=false when the field is
// absent or unparseable. The result is always in UTC.
func getTime(fields map[string]any, key string) (time.Time, bool) {
	switch v := fields[key].(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC(), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func getTimePtr(fields map[string]any, key string) *time.Time {
	if t, ok := getTime(fields, key); ok {
		return &t
	}
	return nil
}

func getStringSlice(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return v
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
