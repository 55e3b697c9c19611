package store

import (
	"fmt"
	"strconv"
	"time"
)

// Fallback display values for records missing identity fields.
const (
	FallbackName  = "นักเรียนไม่ระบุชื่อ"
	FallbackField = "-"
)

// NormalizeTime coerces the timestamp representations seen across backends
// into one comparable time. Accepted shapes: RFC3339 strings, epoch numbers
// (seconds or milliseconds), and {seconds, nanoseconds} maps from the old
// document-store SDK. Returns the zero time when nothing parses.
func NormalizeTime(v any) time.Time {
	switch t := v.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if n, err := strconv.ParseFloat(t, 64); err == nil {
			return epochToTime(n)
		}
		return time.Time{}
	case float64:
		return epochToTime(t)
	case int64:
		return epochToTime(float64(t))
	case int:
		return epochToTime(float64(t))
	case map[string]any:
		sec := numberField(t, "seconds")
		if sec == 0 {
			sec = numberField(t, "_seconds")
		}
		if sec == 0 {
			return time.Time{}
		}
		nanos := numberField(t, "nanoseconds")
		if nanos == 0 {
			nanos = numberField(t, "_nanoseconds")
		}
		return time.Unix(int64(sec), int64(nanos)).UTC()
	default:
		return time.Time{}
	}
}

// epochToTime treats values above 1e12 as milliseconds, otherwise seconds.
func epochToTime(n float64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	return time.Unix(int64(n), 0).UTC()
}

func numberField(fields map[string]any, key string) float64 {
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}

// StringField reads a string-ish field with a fallback for missing values.
func StringField(fields map[string]any, key, fallback string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return fallback
	}
	s := fmt.Sprint(v)
	if s == "" {
		return fallback
	}
	return s
}

// FirstStringField returns the first non-empty value among the named keys.
func FirstStringField(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// NumberField reads a numeric field, tolerating string digits.
func NumberField(fields map[string]any, key string) float64 {
	return numberField(fields, key)
}

// TimeField normalizes the first parseable timestamp among the named keys.
func TimeField(fields map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		if t := NormalizeTime(fields[key]); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}
