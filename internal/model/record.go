package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one category-native inventory row, keyed by column name.
// Column names differ between tables, so values are read through the
// alias lists of a CategorySchema.
type Record map[string]interface{}

// Text returns the first alias with a non-blank textual value
func (r Record) Text(columns []string) (string, bool) {
	for _, c := range columns {
		v, ok := r[c]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(stringify(v))
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// Number returns the first alias holding a numeric value
func (r Record) Number(columns []string) (float64, bool) {
	for _, c := range columns {
		v, ok := r[c]
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f, true
		}
	}
	return 0, false
}

// Bool returns the first alias holding a boolean value
func (r Record) Bool(columns []string) (bool, bool) {
	for _, c := range columns {
		v, ok := r[c]
		if !ok || v == nil {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			if parsed, err := strconv.ParseBool(b); err == nil {
				return parsed, true
			}
		}
	}
	return false, false
}

// Time returns the first alias holding a timestamp or date
func (r Record) Time(columns []string) (time.Time, bool) {
	for _, c := range columns {
		v, ok := r[c]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case time.Time:
			return t, true
		case string:
			for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", dateLayout} {
				if parsed, err := time.Parse(layout, t); err == nil {
					return parsed, true
				}
			}
		}
	}
	return time.Time{}, false
}

// Normalize converts driver byte slices into strings so records serialize
// as readable JSON
func (r Record) Normalize() Record {
	for k, v := range r {
		if b, ok := v.([]byte); ok {
			r[k] = string(b)
		}
	}
	return r
}

func stringify(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f, err == nil
	}
	return 0, false
}
