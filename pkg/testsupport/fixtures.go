package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autoform/pkg/fieldconfig"
	"github.com/goliatone/go-autoform/pkg/schema"
)

// Page chrome of the sign-up example.
const (
	SignupTitle       = "AutoForm Example"
	SignupDescription = "Automatically generate a form from a Zod schema."
	SignupSubmitLabel = "Send now"
)

// SignupSchema builds the eight-field sign-up schema used across package
// tests. It mirrors examples/signup/schema.yaml.
func SignupSchema() *schema.Schema {
	return schema.MustNew(
		schema.Field{
			Name:            "username",
			Kind:            schema.KindString,
			Required:        true,
			RequiredMessage: "Username is required.",
			Rules: []schema.Rule{
				schema.MinLength(2, "Username must be at least 2 characters."),
			},
		},
		schema.Field{
			Name:            "password",
			Kind:            schema.KindString,
			Required:        true,
			Description:     "Your secure password",
			RequiredMessage: "Password is required.",
			Rules: []schema.Rule{
				schema.MinLength(8, "Password must be at least 8 characters."),
			},
		},
		schema.Field{
			Name:               "favouriteNumber",
			Kind:               schema.KindNumber,
			Coerce:             true,
			InvalidTypeMessage: "Favourite number must be a number.",
			Rules: []schema.Rule{
				schema.Min(1, "Favourite number must be at least 1."),
				schema.Max(10, "Favourite number must be at most 10."),
			},
		}.WithDefault(1),
		schema.Field{
			Name:        "acceptTerms",
			Kind:        schema.KindBoolean,
			Required:    true,
			Description: "Accept terms and conditions.",
			Rules: []schema.Rule{
				schema.Equals(true, "You must accept the terms and conditions."),
			},
		},
		schema.Field{
			Name: "sendMeMails",
			Kind: schema.KindBoolean,
		},
		schema.Field{
			Name:   "birthday",
			Kind:   schema.KindDate,
			Coerce: true,
		},
		schema.Field{
			Name:     "color",
			Kind:     schema.KindEnum,
			Required: true,
			Options:  []string{"red", "green", "blue"},
		},
		schema.Field{
			Name: "bio",
			Kind: schema.KindString,
			Rules: []schema.Rule{
				schema.MinLength(10, "Bio must be at least 10 characters."),
				schema.MaxLength(160, "Bio must not be longer than 30 characters."),
			},
		},
	)
}

// SignupDocument wraps SignupSchema with the example page chrome.
func SignupDocument() schema.Document {
	return schema.Document{
		Title:       SignupTitle,
		Description: SignupDescription,
		SubmitLabel: SignupSubmitLabel,
		Schema:      SignupSchema(),
	}
}

// SignupConfig returns the presentation hints of the sign-up example. It
// mirrors examples/signup/fieldconfig.yaml.
func SignupConfig() fieldconfig.Config {
	required := true
	return fieldconfig.New(map[string]fieldconfig.FieldConfig{
		"password": {
			InputProps: fieldconfig.InputProps{
				Type:        "password",
				Placeholder: "••••••••",
			},
		},
		"favouriteNumber": {
			Description: "Your favourite number between 1 and 10.",
			InputProps:  fieldconfig.InputProps{Type: "number"},
		},
		"acceptTerms": {
			Description: `I agree to the <a href="#" class="text-primary underline">terms and conditions</a>.`,
			InputProps:  fieldconfig.InputProps{Required: &required},
		},
		"birthday": {
			Description: "We need your birthday to send you a gift.",
		},
		"sendMeMails": {
			FieldType: "switch",
		},
		"bio": {
			FieldType: "textarea",
		},
	})
}

// SignupValues returns a raw value set that passes SignupSchema, shaped like
// a posted HTML form (strings everywhere a browser would send one).
func SignupValues() map[string]any {
	return map[string]any{
		"username":        "jane",
		"password":        "correct-horse",
		"favouriteNumber": "7",
		"acceptTerms":     true,
		"sendMeMails":     false,
		"birthday":        "1990-04-12",
		"color":           "green",
		"bio":             "Writes Go on weekends.",
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// Diff returns a cmp diff between want and got; empty means equal.
func Diff(want, got any, opts ...cmp.Option) string {
	return cmp.Diff(want, got, opts...)
}

// CaptureOutput executes a render function that writes to an io.Writer,
// returning both the returned string and the writer contents.
func CaptureOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, buf.String()
}
