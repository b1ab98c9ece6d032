package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-autoform/pkg/schema"
)

// Built-in control variants.
const (
	VariantText     = "text"
	VariantPassword = "password"
	VariantNumber   = "number"
	VariantTextarea = "textarea"
	VariantCheckbox = "checkbox"
	VariantSwitch   = "switch"
	VariantDate     = "date"
	VariantSelect   = "select"
	VariantRadio    = "radio"
	// VariantFallback is used when no matcher claims a field.
	VariantFallback = "fallback"
)

var builtinVariants = []string{
	VariantText,
	VariantPassword,
	VariantNumber,
	VariantTextarea,
	VariantCheckbox,
	VariantSwitch,
	VariantDate,
	VariantSelect,
	VariantRadio,
	VariantFallback,
}

// Matcher decides whether a variant should present the supplied field.
type Matcher func(field schema.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry derives the default control variant of a field from registered
// matchers. Higher priority wins; ties fall back to registration order. It
// also tracks which variant names may be used as configuration overrides.
type Registry struct {
	mu       sync.RWMutex
	rules    []rule
	variants map[string]struct{}
}

// NewRegistry constructs a registry with the kind-based matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{variants: make(map[string]struct{}, len(builtinVariants))}
	for _, name := range builtinVariants {
		reg.variants[name] = struct{}{}
	}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher for the named variant. The variant becomes a valid
// override target even if the matcher never fires.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.variants == nil {
		r.variants = make(map[string]struct{})
	}
	r.variants[trimmed] = struct{}{}
	if matcher == nil {
		return
	}
	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Known reports whether name is a built-in or registered variant.
func (r *Registry) Known(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.variants[strings.TrimSpace(name)]
	return ok
}

// Variants lists the known variant names alphabetically.
func (r *Registry) Variants() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Resolve returns the highest priority variant whose matcher accepts field.
func (r *Registry) Resolve(field schema.Field) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

func kindIs(kind schema.Kind) Matcher {
	return func(field schema.Field) bool {
		return field.Kind == kind
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(VariantCheckbox, 90, kindIs(schema.KindBoolean))
	r.Register(VariantSelect, 80, kindIs(schema.KindEnum))
	r.Register(VariantDate, 70, kindIs(schema.KindDate))
	r.Register(VariantNumber, 60, kindIs(schema.KindNumber))
	r.Register(VariantText, 10, kindIs(schema.KindString))
}
