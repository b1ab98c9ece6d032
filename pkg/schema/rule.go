package schema

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"
)

// Canonical rule names. Custom refinements use any other name.
const (
	RuleMin       = "min"
	RuleMax       = "max"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
	RuleEmail     = "email"
	RuleURL       = "url"
	RuleMinDate   = "minDate"
	RuleMaxDate   = "maxDate"
	RuleEquals    = "equals"
)

// DateLayout is the layout used to encode date parameters.
const DateLayout = "2006-01-02"

// Check reports whether a coerced value satisfies a rule. Values are already
// converted to the field kind: string, float64, bool or time.Time.
type Check func(value any) bool

// Rule is a named validation predicate. Params carries the canonical,
// string-encoded threshold ("value") or expression ("pattern") so renderers
// can surface constraints as input attributes.
type Rule struct {
	Name    string            `json:"rule"`
	Message string            `json:"message"`
	Params  map[string]string `json:"params,omitempty"`
	Check   Check             `json:"-"`
	// Kinds restricts the rule to the listed field kinds. Empty means any.
	Kinds []Kind `json:"-"`
}

// Applies reports whether the rule may be attached to a field of kind k.
func (r Rule) Applies(k Kind) bool {
	if len(r.Kinds) == 0 {
		return true
	}
	for _, kind := range r.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Param returns a rule parameter.
func (r Rule) Param(key string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[key]
}

// Min requires a number greater than or equal to min.
func Min(min float64, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("Number must be greater than or equal to %s", formatFloat(min))
	}
	return Rule{
		Name:    RuleMin,
		Message: message,
		Params:  map[string]string{"value": formatFloat(min)},
		Kinds:   []Kind{KindNumber},
		Check: func(value any) bool {
			n, ok := value.(float64)
			return ok && n >= min
		},
	}
}

// Max requires a number less than or equal to max.
func Max(max float64, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("Number must be less than or equal to %s", formatFloat(max))
	}
	return Rule{
		Name:    RuleMax,
		Message: message,
		Params:  map[string]string{"value": formatFloat(max)},
		Kinds:   []Kind{KindNumber},
		Check: func(value any) bool {
			n, ok := value.(float64)
			return ok && n <= max
		},
	}
}

// MinLength requires at least n characters.
func MinLength(n int, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("String must contain at least %d character(s)", n)
	}
	return Rule{
		Name:    RuleMinLength,
		Message: message,
		Params:  map[string]string{"value": strconv.Itoa(n)},
		Kinds:   []Kind{KindString},
		Check: func(value any) bool {
			s, ok := value.(string)
			return ok && utf8.RuneCountInString(s) >= n
		},
	}
}

// MaxLength allows at most n characters.
func MaxLength(n int, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("String must contain at most %d character(s)", n)
	}
	return Rule{
		Name:    RuleMaxLength,
		Message: message,
		Params:  map[string]string{"value": strconv.Itoa(n)},
		Kinds:   []Kind{KindString},
		Check: func(value any) bool {
			s, ok := value.(string)
			return ok && utf8.RuneCountInString(s) <= n
		},
	}
}

// Pattern requires the string to match re.
func Pattern(re *regexp.Regexp, message string) Rule {
	if message == "" {
		message = "Invalid"
	}
	return Rule{
		Name:    RulePattern,
		Message: message,
		Params:  map[string]string{"pattern": re.String()},
		Kinds:   []Kind{KindString},
		Check: func(value any) bool {
			s, ok := value.(string)
			return ok && re.MatchString(s)
		},
	}
}

// Email requires a single RFC 5322 address without display name.
func Email(message string) Rule {
	if message == "" {
		message = "Invalid email"
	}
	return Rule{
		Name:    RuleEmail,
		Message: message,
		Kinds:   []Kind{KindString},
		Check: func(value any) bool {
			s, ok := value.(string)
			if !ok {
				return false
			}
			addr, err := mail.ParseAddress(s)
			return err == nil && addr.Address == s
		},
	}
}

// URL requires an absolute URL.
func URL(message string) Rule {
	if message == "" {
		message = "Invalid url"
	}
	return Rule{
		Name:    RuleURL,
		Message: message,
		Kinds:   []Kind{KindString},
		Check: func(value any) bool {
			s, ok := value.(string)
			if !ok {
				return false
			}
			u, err := url.ParseRequestURI(s)
			return err == nil && u.Scheme != "" && u.Host != ""
		},
	}
}

// MinDate requires a date on or after min.
func MinDate(min time.Time, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("Date must be greater than or equal to %s", min.Format(DateLayout))
	}
	return Rule{
		Name:    RuleMinDate,
		Message: message,
		Params:  map[string]string{"value": min.Format(DateLayout)},
		Kinds:   []Kind{KindDate},
		Check: func(value any) bool {
			t, ok := value.(time.Time)
			return ok && !t.Before(min)
		},
	}
}

// MaxDate requires a date on or before max.
func MaxDate(max time.Time, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("Date must be smaller than or equal to %s", max.Format(DateLayout))
	}
	return Rule{
		Name:    RuleMaxDate,
		Message: message,
		Params:  map[string]string{"value": max.Format(DateLayout)},
		Kinds:   []Kind{KindDate},
		Check: func(value any) bool {
			t, ok := value.(time.Time)
			return ok && !t.After(max)
		},
	}
}

// Equals requires the coerced value to equal want. It is the declarative form
// of a refinement such as "must be true".
func Equals(want any, message string) Rule {
	if message == "" {
		message = "Invalid input"
	}
	return Rule{
		Name:    RuleEquals,
		Message: message,
		Params:  map[string]string{"value": fmt.Sprint(want)},
		Check: func(value any) bool {
			if w, ok := want.(time.Time); ok {
				v, ok := value.(time.Time)
				return ok && v.Equal(w)
			}
			return reflect.DeepEqual(value, want)
		},
	}
}

// Refine wraps an arbitrary predicate under a caller-chosen name.
func Refine(name, message string, fn Check) Rule {
	if message == "" {
		message = "Invalid input"
	}
	return Rule{
		Name:    name,
		Message: message,
		Check:   fn,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
