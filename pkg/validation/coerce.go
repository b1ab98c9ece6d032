package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-autoform/pkg/schema"
)

// absent reports whether raw counts as "no value" for the field. Blank
// strings only count as absent for non-string kinds so an empty text input
// still reaches the string rules.
func absent(field schema.Field, raw any, present bool) bool {
	if !present || raw == nil {
		return true
	}
	if field.Kind == schema.KindString {
		return false
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

// convert turns raw into the typed representation of the field kind.
func convert(field schema.Field, raw any) (any, bool) {
	switch field.Kind {
	case schema.KindString:
		return convertString(field, raw)
	case schema.KindNumber:
		return convertNumber(field, raw)
	case schema.KindBoolean:
		return convertBool(field, raw)
	case schema.KindDate:
		return convertDate(field, raw)
	case schema.KindEnum:
		s, ok := convertString(field, raw)
		if !ok {
			return nil, false
		}
		str := s.(string)
		return str, field.HasOption(str)
	default:
		return nil, false
	}
}

func convertString(field schema.Field, raw any) (any, bool) {
	if s, ok := raw.(string); ok {
		return s, true
	}
	if !field.Coerce {
		return nil, false
	}
	switch v := raw.(type) {
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		return v.Format(time.RFC3339), true
	}
	if n, ok := schema.NumberValue(raw); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return nil, false
}

func convertNumber(field schema.Field, raw any) (any, bool) {
	if n, ok := schema.NumberValue(raw); ok {
		return n, finite(n)
	}
	if !field.Coerce {
		return nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(n) {
		return nil, false
	}
	return n, true
}

func convertBool(field schema.Field, raw any) (any, bool) {
	if b, ok := raw.(bool); ok {
		return b, true
	}
	if !field.Coerce {
		return nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "1", "yes":
		return true, true
	case "false", "off", "0", "no":
		return false, true
	default:
		return nil, false
	}
}

func convertDate(field schema.Field, raw any) (any, bool) {
	if t, ok := raw.(time.Time); ok {
		return t, !t.IsZero()
	}
	if !field.Coerce {
		return nil, false
	}
	if s, ok := raw.(string); ok {
		t, err := schema.ParseDate(s)
		if err != nil {
			return nil, false
		}
		return t, true
	}
	if n, ok := schema.NumberValue(raw); ok && finite(n) {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return nil, false
}

func finite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

func invalidTypeMessage(field schema.Field, raw any) string {
	if field.InvalidTypeMessage != "" {
		return field.InvalidTypeMessage
	}
	if field.Kind == schema.KindEnum {
		quoted := make([]string, len(field.Options))
		for idx, option := range field.Options {
			quoted[idx] = "'" + option + "'"
		}
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", strings.Join(quoted, " | "), raw)
	}
	return fmt.Sprintf("Expected %s, received %s", field.Kind, describe(raw))
}

func describe(raw any) string {
	switch raw.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time:
		return "date"
	}
	if _, ok := schema.NumberValue(raw); ok {
		return "number"
	}
	return fmt.Sprintf("%T", raw)
}
