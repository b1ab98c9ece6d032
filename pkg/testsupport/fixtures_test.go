package testsupport_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-autoform/examples/signup"
	"github.com/goliatone/go-autoform/pkg/fieldconfig"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/testsupport"
)

func TestSignupSchemaMatchesDeclarativeDocument(t *testing.T) {
	doc, err := schema.LoadFS(signup.Files, signup.SchemaFile)
	if err != nil {
		t.Fatalf("load schema document: %v", err)
	}

	want := testsupport.SignupDocument()
	if doc.Title != want.Title || doc.Description != want.Description || doc.SubmitLabel != want.SubmitLabel {
		t.Fatalf("page copy mismatch: got %q/%q/%q", doc.Title, doc.Description, doc.SubmitLabel)
	}

	ignoreChecks := cmpopts.IgnoreFields(schema.Rule{}, "Check", "Kinds")
	if diff := cmp.Diff(want.Schema.Fields(), doc.Schema.Fields(), ignoreChecks); diff != "" {
		t.Fatalf("schema.yaml drifted from fixture (-fixture +yaml):\n%s", diff)
	}
}

func TestSignupConfigMatchesDeclarativeDocument(t *testing.T) {
	cfg, err := fieldconfig.LoadFS(signup.Files, signup.FieldConfigFile)
	if err != nil {
		t.Fatalf("load field config: %v", err)
	}

	want := testsupport.SignupConfig()
	if diff := cmp.Diff(want.Keys(), cfg.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-fixture +yaml):\n%s", diff)
	}
	for _, key := range want.Keys() {
		expected, _ := want.Field(key)
		got, _ := cfg.Field(key)
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Fatalf("%s mismatch (-fixture +yaml):\n%s", key, diff)
		}
	}

	if _, err := cfg.Check(testsupport.SignupSchema(), fieldconfig.UnknownReject); err != nil {
		t.Fatalf("fixture config must only reference schema fields: %v", err)
	}
}
