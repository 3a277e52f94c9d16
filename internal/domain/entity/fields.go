package entity

import (
	"encoding/json"
	"strconv"
	"time"
)

// Fields reads loosely typed document data. Every accessor returns the zero
// value for absent or mistyped fields so callers never branch on wire shape.
type Fields map[string]interface{}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizeTime converts any timestamp representation found in stored
// documents into a UTC time.Time.
func NormalizeTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}
		}
		return t.UTC()
	case *time.Time:
		if t == nil {
			return time.Time{}
		}
		return NormalizeTime(*t)
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC()
			}
		}
		return time.Time{}
	case map[string]interface{}:
		secs, ok := t["seconds"]
		if !ok {
			secs = t["_seconds"]
		}
		nanos, ok := t["nanoseconds"]
		if !ok {
			nanos = t["_nanoseconds"]
		}
		if secs == nil {
			return time.Time{}
		}
		return time.Unix(int64(toFloat(secs)), int64(toFloat(nanos))).UTC()
	case int, int32, int64, float32, float64, json.Number:
		// Unix milliseconds, as produced by Date.getTime().
		ms := toFloat(t)
		if ms == 0 {
			return time.Time{}
		}
		return time.UnixMilli(int64(ms)).UTC()
	}
	return time.Time{}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f Fields) Float(key string) float64 {
	return toFloat(f[key])
}

func (f Fields) Int(key string) int {
	return int(toFloat(f[key]))
}

func (f Fields) Bool(key string) bool {
	b, _ := f[key].(bool)
	return b
}

func (f Fields) Time(key string) time.Time {
	return NormalizeTime(f[key])
}

func (f Fields) Map(key string) Fields {
	switch m := f[key].(type) {
	case map[string]interface{}:
		return Fields(m)
	case Fields:
		return m
	}
	return nil
}

func (f Fields) Slice(key string) []interface{} {
	switch s := f[key].(type) {
	case []interface{}:
		return s
	case []map[string]interface{}:
		out := make([]interface{}, len(s))
		for i, m := range s {
			out[i] = m
		}
		return out
	case []string:
		out := make([]interface{}, len(s))
		for i, v := range s {
			out[i] = v
		}
		return out
	}
	return nil
}

func (f Fields) Strings(key string) []string {
	raw := f.Slice(key)
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Maps returns the elements of an array field that are objects.
func (f Fields) Maps(key string) []Fields {
	raw := f.Slice(key)
	if raw == nil {
		return nil
	}
	out := make([]Fields, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, Fields(m))
		}
	}
	return out
}

// BoolMap reads a map of boolean toggles such as notificationSettings.
func (f Fields) BoolMap(key string) map[string]bool {
	m := f.Map(key)
	if m == nil {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		if b, ok := v.(bool); ok {
			out[k] = b
		}
	}
	return out
}

func stringsToAny(in []string) []interface{} {
	if in == nil {
		return nil
	}
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// putIf sets key only when value is not its zero value. Entities are written
// whole with docstore.Replace, so an omitted key is a cleared field.
func putIf(m map[string]interface{}, key string, value interface{}) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return
		}
	case time.Time:
		if v.IsZero() {
			return
		}
	case []interface{}:
		if v == nil {
			return
		}
	case map[string]interface{}:
		if v == nil {
			return
		}
	case nil:
		return
	}
	m[key] = value
}
