package logger

import "strings"

// Masked replaces the value of blacklisted fields.
const Masked = "***"

type redactor struct {
	keys map[string]struct{}
}

func newRedactor(blacklist []string) *redactor {
	r := &redactor{keys: make(map[string]struct{}, len(blacklist))}
	for _, k := range blacklist {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			r.keys[k] = struct{}{}
		}
	}
	return r
}

// value returns v, or Masked when key is blacklisted. Nested maps are walked.
func (r *redactor) value(key string, v interface{}) interface{} {
	if r == nil || len(r.keys) == 0 {
		return v
	}
	if _, hit := r.keys[strings.ToLower(key)]; hit {
		return Masked
	}
	if m, ok := v.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m))
		for k, nested := range m {
			out[k] = r.value(k, nested)
		}
		return out
	}
	return v
}
