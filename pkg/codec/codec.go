package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the fixed-width UTC layout stored in TEXT timestamp columns.
// Every value has the same width, so string comparison is chronological.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// EncodeStrings serializes an ordered list for a TEXT column.
func EncodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	buf, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode strings: %w", err)
	}
	return string(buf), nil
}

// DecodeStrings reverses EncodeStrings. NULL or empty input yields an empty list.
func DecodeStrings(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}, fmt.Errorf("decode strings: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// EncodeStringMap serializes a string map for a TEXT column.
func EncodeStringMap(values map[string]string) (string, error) {
	if values == nil {
		values = map[string]string{}
	}
	buf, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode map: %w", err)
	}
	return string(buf), nil
}

// DecodeStringMap reverses EncodeStringMap. NULL or empty input yields an empty map.
func DecodeStringMap(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]string{}, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]string{}, fmt.Errorf("decode map: %w", err)
	}
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

// EncodeBool maps a flag onto the 0/1 integer column.
func EncodeBool(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// DecodeBool treats any non-zero value as true.
func DecodeBool(v int64) bool {
	return v != 0
}

// EncodeTime renders t in TimeLayout after converting to UTC.
func EncodeTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

var timeFallbacks = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02",
}

// DecodeTime parses a stored timestamp. Values written by other tools in
// RFC3339 or sqlite's datetime() format are accepted as well.
func DecodeTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(TimeLayout, raw); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range timeFallbacks {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("decode time: unrecognized value %q", raw)
}
