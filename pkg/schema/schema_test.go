package schema_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autoform/pkg/schema"
)

func TestNew_PreservesDeclarationOrder(t *testing.T) {
	s, err := schema.New(
		schema.Field{Name: "username", Kind: schema.KindString},
		schema.Field{Name: "password", Kind: schema.KindString},
		schema.Field{Name: "color", Kind: schema.KindEnum, Options: []string{"red", "green"}},
	)
	if err != nil {
		t.Fatalf("new schema: %v", err)
	}

	want := []string{"username", "password", "color"}
	if diff := cmp.Diff(want, s.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !s.Has("color") || s.Has("missing") {
		t.Fatalf("lookup mismatch")
	}
}

func TestNew_RejectsMalformedDescriptors(t *testing.T) {
	cases := []struct {
		name   string
		fields []schema.Field
	}{
		{
			name: "duplicate name",
			fields: []schema.Field{
				{Name: "a", Kind: schema.KindString},
				{Name: "a", Kind: schema.KindNumber},
			},
		},
		{
			name:   "empty name",
			fields: []schema.Field{{Name: "  ", Kind: schema.KindString}},
		},
		{
			name:   "unknown kind",
			fields: []schema.Field{{Name: "a", Kind: "color"}},
		},
		{
			name:   "enum without options",
			fields: []schema.Field{{Name: "a", Kind: schema.KindEnum}},
		},
		{
			name: "rule for another kind",
			fields: []schema.Field{{
				Name:  "a",
				Kind:  schema.KindString,
				Rules: []schema.Rule{schema.Min(1, "")},
			}},
		},
		{
			name: "default of wrong type",
			fields: []schema.Field{
				schema.Field{Name: "a", Kind: schema.KindNumber}.WithDefault("one"),
			},
		},
		{
			name: "rule without check",
			fields: []schema.Field{{
				Name:  "a",
				Kind:  schema.KindString,
				Rules: []schema.Rule{{Name: "custom"}},
			}},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.New(tc.fields...)
			if !errors.Is(err, schema.ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestNew_NormalisesDefaults(t *testing.T) {
	s := schema.MustNew(
		schema.Field{Name: "n", Kind: schema.KindNumber}.WithDefault(1),
		schema.Field{Name: "d", Kind: schema.KindDate}.WithDefault("2024-02-29"),
	)

	n, _ := s.Field("n")
	if got, ok := n.Default.(float64); !ok || got != 1 {
		t.Fatalf("number default not normalised: %#v", n.Default)
	}
	d, _ := s.Field("d")
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if got, ok := d.Default.(time.Time); !ok || !got.Equal(want) {
		t.Fatalf("date default not parsed: %#v", d.Default)
	}
}

func TestRules_ExposeCanonicalParams(t *testing.T) {
	rule := schema.MinLength(8, "")
	if rule.Param("value") != "8" {
		t.Fatalf("minLength param mismatch: %#v", rule.Params)
	}
	if rule.Message != "String must contain at least 8 character(s)" {
		t.Fatalf("default message mismatch: %q", rule.Message)
	}
	if !rule.Check("12345678") || rule.Check("1234567") {
		t.Fatalf("minLength check boundaries wrong")
	}

	max := schema.Max(10.5, "")
	if max.Param("value") != "10.5" {
		t.Fatalf("max param mismatch: %#v", max.Params)
	}
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2024-01-02", "2024-01-02T10:30", "2024-01-02T10:30:00Z"} {
		if _, err := schema.ParseDate(raw); err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
	}
	if _, err := schema.ParseDate("yesterday"); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}

func TestExportValues(t *testing.T) {
	got := schema.ExportValues(map[string]any{
		"birthday": time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		"count":    float64(3),
	})
	want := map[string]any{"birthday": "1990-04-12", "count": float64(3)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestEquals_DatesCompareInstants(t *testing.T) {
	want, err := schema.ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("parse want: %v", err)
	}
	rule := schema.Equals(want, "")

	offset, err := time.Parse(time.RFC3339, "2024-01-01T00:00:00+00:00")
	if err != nil {
		t.Fatalf("parse offset: %v", err)
	}
	if !rule.Check(offset) {
		t.Fatalf("expected same instant in a fixed zone to match")
	}
	if !rule.Check(time.Date(2024, 1, 1, 2, 0, 0, 0, time.FixedZone("CEST", 2*60*60))) {
		t.Fatalf("expected same instant in another zone to match")
	}
	if rule.Check(want.Add(time.Hour)) {
		t.Fatalf("expected a different instant to fail")
	}
	if rule.Check("2024-01-01") {
		t.Fatalf("expected a string to fail a date equals rule")
	}
}
