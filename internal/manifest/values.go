package manifest

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// object is a decoded manifest table.
type object = map[string]any

func child(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case object:
		return "table"
	}
	if _, ok := asNumber(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func asObject(path string, v any) (object, error) {
	obj, ok := v.(object)
	if !ok {
		return nil, errorfAt(path, ErrInvalidType, "expected table, got %s", typeName(v))
	}
	return obj, nil
}

func asList(path string, v any) ([]any, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errorfAt(path, ErrInvalidType, "expected list, got %s", typeName(v))
	}
	return list, nil
}

func asString(path string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errorfAt(path, ErrInvalidType, "expected string, got %s", typeName(v))
	}
	return s, nil
}

// asNumber accepts the numeric types produced by the JSON, TOML and YAML
// decoders.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// tagValue converts a tag value to its string form. Integral numbers are
// written without a fraction so `track = 3` becomes "3".
func tagValue(path string, v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if n, ok := v.(json.Number); ok {
		return n.String(), nil
	}
	if f, ok := asNumber(v); ok {
		if f == math.Trunc(f) {
			return strconv.FormatInt(int64(f), 10), nil
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", errorfAt(path, ErrInvalidType, "expected string or number, got %s", typeName(v))
}

// checkKeys rejects keys outside allowed.
func checkKeys(path string, obj object, allowed ...string) error {
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		if !slices.Contains(allowed, key) {
			return errorfAt(child(path, key), ErrUnknownField, "not one of %s", strings.Join(allowed, ", "))
		}
	}
	return nil
}

var timestampPattern = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{1,2})(?:\.(\d{1,9}))?$`)

// parseTimestamp accepts "H:MM:SS(.f)", "M:SS(.f)", a number of seconds, or
// a TOML local time.
func parseTimestamp(path string, v any) (*time.Duration, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		d, err := ParseTimestamp(t)
		if err != nil {
			return nil, errorAt(path, err)
		}
		return &d, nil
	case toml.LocalTime:
		d := time.Duration(t.Hour)*time.Hour +
			time.Duration(t.Minute)*time.Minute +
			time.Duration(t.Second)*time.Second +
			time.Duration(t.Nanosecond)
		return &d, nil
	}

	seconds, ok := asNumber(v)
	if !ok {
		return nil, errorfAt(path, ErrInvalidType, "expected timestamp, got %s", typeName(v))
	}
	nanos := seconds * float64(time.Second)
	// float64(math.MaxInt64) rounds up to 2^63, the first value that overflows.
	if seconds < 0 || math.IsNaN(seconds) || nanos >= float64(math.MaxInt64) {
		return nil, errorfAt(path, ErrInvalidTimestamp, "%v", v)
	}
	d := time.Duration(nanos)
	return &d, nil
}

// ParseTimestamp parses "H:MM:SS(.f)" or "M:SS(.f)" into a duration.
// Minutes and seconds must be below 60.
func ParseTimestamp(s string) (time.Duration, error) {
	m := timestampPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidTimestamp, s)
	}

	var hours int
	if m[1] != "" {
		h, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w %q", ErrInvalidTimestamp, s)
		}
		hours = h
	}
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	if minutes >= 60 || seconds >= 60 {
		return 0, fmt.Errorf("%w %q: minutes and seconds must be below 60", ErrInvalidTimestamp, s)
	}

	var nanos int
	if m[4] != "" {
		frac := m[4] + strings.Repeat("0", 9-len(m[4]))
		nanos, _ = strconv.Atoi(frac)
	}

	rest := time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(nanos)
	if int64(hours) > (math.MaxInt64-int64(rest))/int64(time.Hour) {
		return 0, fmt.Errorf("%w %q: out of range", ErrInvalidTimestamp, s)
	}
	return time.Duration(hours)*time.Hour + rest, nil
}
