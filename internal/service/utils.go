package service

import (
	"strings"
)

// sanitizeText drops invalid UTF-8 and NUL characters. Postgres rejects both
// in text columns, and jsonb rejects the \u0000 escape.
func sanitizeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	if strings.IndexByte(s, 0) < 0 {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// sanitizeValue applies sanitizeText to every string and map key inside a
// decoded JSON value.
func sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return sanitizeText(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[sanitizeText(k)] = sanitizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitizeValue(val)
		}
		return out
	default:
		return v
	}
}

func sanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return sanitizeValue(m).(map[string]any)
}
