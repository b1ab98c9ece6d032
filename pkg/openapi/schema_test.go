package openapi_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autoform/pkg/openapi"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/testsupport"
	"github.com/goliatone/go-autoform/pkg/validation"
)

const contactDocument = `
openapi: 3.0.3
info:
  title: Contact API
  version: 1.0.0
paths: {}
components:
  schemas:
    Contact:
      title: Contact us
      description: We reply within two days.
      x-submit-label: Send message
      type: object
      required: [name, email, topic]
      properties:
        newsletter:
          type: boolean
          default: false
        name:
          type: string
          title: Full name
          minLength: 2
          maxLength: 40
          x-order: 1
          x-required-message: Tell us your name.
        email:
          type: string
          format: email
          x-order: 2
        topic:
          type: string
          enum: [sales, support]
          x-order: 3
        seats:
          type: integer
          minimum: 1
          maximum: 50
          default: 5
          x-order: 4
        callback:
          type: string
          format: date
        website:
          type: string
          format: uri
    Tags:
      type: object
      properties:
        labels:
          type: array
          items:
            type: string
`

func loadContact(t *testing.T) schema.Document {
	t.Helper()
	doc, err := openapi.SchemaFromOpenAPI(testsupport.Context(), []byte(contactDocument), "Contact")
	if err != nil {
		t.Fatalf("schema from openapi: %v", err)
	}
	return doc
}

func TestSchemaFromOpenAPI_OrderAndCopy(t *testing.T) {
	doc := loadContact(t)

	wantNames := []string{"name", "email", "topic", "seats", "callback", "newsletter", "website"}
	if diff := cmp.Diff(wantNames, doc.Schema.Names()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if doc.Title != "Contact us" || doc.Description != "We reply within two days." || doc.SubmitLabel != "Send message" {
		t.Fatalf("unexpected document copy: %+v", doc)
	}
}

func TestSchemaFromOpenAPI_FieldKinds(t *testing.T) {
	doc := loadContact(t)

	type summary struct {
		Kind     schema.Kind
		Required bool
		Rules    []string
	}
	got := map[string]summary{}
	for _, field := range doc.Schema.Fields() {
		var rules []string
		for _, rule := range field.Rules {
			rules = append(rules, rule.Name)
		}
		got[field.Name] = summary{Kind: field.Kind, Required: field.Required, Rules: rules}
	}

	want := map[string]summary{
		"name":       {Kind: schema.KindString, Required: true, Rules: []string{schema.RuleMinLength, schema.RuleMaxLength}},
		"email":      {Kind: schema.KindString, Required: true, Rules: []string{schema.RuleEmail}},
		"topic":      {Kind: schema.KindEnum, Required: true},
		"seats":      {Kind: schema.KindNumber, Rules: []string{"integer", schema.RuleMin, schema.RuleMax}},
		"callback":   {Kind: schema.KindDate},
		"newsletter": {Kind: schema.KindBoolean},
		"website":    {Kind: schema.KindString, Rules: []string{schema.RuleURL}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	name, _ := doc.Schema.Field("name")
	if name.Label != "Full name" || name.RequiredMessage != "Tell us your name." {
		t.Fatalf("unexpected name field: %+v", name)
	}
	seats, _ := doc.Schema.Field("seats")
	if !seats.HasDefault || seats.Default != float64(5) {
		t.Fatalf("expected seats default 5, got %#v", seats.Default)
	}
}

func TestSchemaFromOpenAPI_ValidatesPostedStrings(t *testing.T) {
	doc := loadContact(t)

	result := validation.Validate(doc.Schema, map[string]any{
		"name":       "Ada",
		"email":      "ada@example.com",
		"topic":      "support",
		"seats":      "3",
		"newsletter": "true",
		"callback":   "2024-05-01",
	})
	if !result.Valid() {
		t.Fatalf("expected valid result, got %v", result.Errors)
	}
	if result.Values["seats"] != float64(3) || result.Values["newsletter"] != true {
		t.Fatalf("unexpected typed values: %#v", result.Values)
	}

	result = validation.Validate(doc.Schema, map[string]any{
		"email": "not-an-email",
		"topic": "billing",
		"seats": "2.5",
	})
	if got := result.Errors["name"].Message; got != "Tell us your name." {
		t.Fatalf("unexpected name message %q", got)
	}
	if !result.Errors.Has("email", validation.CodeConstraint) {
		t.Fatalf("expected email constraint failure, got %v", result.Errors)
	}
	if result.Errors["seats"].Rule != "integer" {
		t.Fatalf("expected integer rule failure, got %+v", result.Errors["seats"])
	}
	if _, ok := result.Errors["topic"]; !ok {
		t.Fatalf("expected topic failure for unknown option")
	}
}

func TestSchemaFromOpenAPI_Errors(t *testing.T) {
	ctx := testsupport.Context()

	if _, err := openapi.SchemaFromOpenAPI(ctx, []byte(contactDocument), "Missing"); !errors.Is(err, openapi.ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}
	if _, err := openapi.SchemaFromOpenAPI(ctx, []byte(contactDocument), "Tags"); err == nil {
		t.Fatalf("expected error for array property")
	}
	if _, err := openapi.SchemaFromOpenAPI(ctx, nil, "Contact"); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestComponents(t *testing.T) {
	names, err := openapi.Components(testsupport.Context(), []byte(contactDocument))
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	if diff := cmp.Diff([]string{"Contact", "Tags"}, names); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
}
