package schema

import (
	"errors"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseDate accepts RFC3339 timestamps, local date-times as emitted by
// datetime-local inputs, and plain dates.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, errors.New("schema: empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("schema: unrecognised date " + trimmed)
}

// NumberValue normalises native Go numeric values to float64. Booleans and
// strings are rejected.
func NumberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// normalizeDefault converts a declared default into the typed representation
// the validator produces for the field kind.
func normalizeDefault(f Field) (any, error) {
	switch f.Kind {
	case KindString:
		if s, ok := f.Default.(string); ok {
			return s, nil
		}
	case KindNumber:
		if n, ok := NumberValue(f.Default); ok {
			return n, nil
		}
	case KindBoolean:
		if b, ok := f.Default.(bool); ok {
			return b, nil
		}
	case KindEnum:
		if s, ok := f.Default.(string); ok && f.HasOption(s) {
			return s, nil
		}
	case KindDate:
		switch v := f.Default.(type) {
		case time.Time:
			return v, nil
		case string:
			return ParseDate(v)
		}
	}
	return nil, errors.New("default does not match kind " + string(f.Kind))
}

// ExportValues returns a copy of typed values suitable for serialisation:
// dates become calendar days in DateLayout, everything else is kept.
func ExportValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		if d, ok := value.(time.Time); ok {
			out[key] = d.Format(DateLayout)
			continue
		}
		out[key] = value
	}
	return out
}
