package choices

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/widgets"
)

func countryOptions() []widgets.SelectOption {
	return []widgets.SelectOption{
		{Value: "ar", Label: "Argentina"},
		{Value: "au", Label: "Australia"},
		{Value: "at", Label: "Austria"},
		{Value: "us", Label: "United States"},
		{Value: "gb", Label: "United Kingdom"},
	}
}

func testPage() render.Page {
	return render.Page{
		ID: "signup",
		Controls: []widgets.Control{
			{Name: "username", Variant: widgets.VariantText},
			{Name: "country", Variant: widgets.VariantSelect, Options: countryOptions()},
			{Name: "color", Variant: widgets.VariantRadio, Options: []widgets.SelectOption{
				{Value: "red", Label: "red"}, {Value: "green", Label: "green"},
			}},
		},
	}
}

func values(options []widgets.SelectOption) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		out = append(out, option.Value)
	}
	return out
}

func TestSearch_PrefixFirstKeepsOrder(t *testing.T) {
	got := values(Search(countryOptions(), "a", 0, NewOptions()))
	want := []string{"ar", "au", "at", "us"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	got = values(Search(countryOptions(), "united", 0, NewOptions()))
	if diff := cmp.Diff([]string{"us", "gb"}, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	got = values(Search(countryOptions(), "ted", 0, NewOptions()))
	if diff := cmp.Diff([]string{"us", "gb"}, got); diff != "" {
		t.Fatalf("substring search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_MatchesValues(t *testing.T) {
	got := values(Search(countryOptions(), "GB", 0, NewOptions()))
	if diff := cmp.Diff([]string{"gb"}, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_EmptyQueryAndLimits(t *testing.T) {
	if got := Search(countryOptions(), "", 2, NewOptions()); len(got) != 2 {
		t.Fatalf("expected 2 options for empty query, got %d", len(got))
	}
	if got := Search(countryOptions(), "  ", 0, NewOptions(WithEmptySearchMode(EmptySearchNone))); got != nil {
		t.Fatalf("expected no options, got %#v", got)
	}
	if got := Search(countryOptions(), "a", -1, NewOptions()); got != nil {
		t.Fatalf("expected nil for negative limit, got %#v", got)
	}
	if got := Search(countryOptions(), "a", 10, NewOptions(WithMaxLimit(3))); len(got) != 3 {
		t.Fatalf("expected limit clamped to 3, got %d", len(got))
	}
}

type payload struct {
	Field string                 `json:"field"`
	Data  []widgets.SelectOption `json:"data"`
	Error string                 `json:"error"`
}

func get(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, payload) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body payload
	if method != http.MethodHead && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body
}

func TestHandler_Search(t *testing.T) {
	h := NewHandler(testPage())

	rec, body := get(t, h, http.MethodGet, "/choices?field=country&q=aus&limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
	if body.Field != "country" {
		t.Fatalf("expected field country, got %q", body.Field)
	}
	if diff := cmp.Diff([]string{"au", "at"}, values(body.Data)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	_, body = get(t, h, http.MethodGet, "/choices?field=color")
	if diff := cmp.Diff([]string{"red", "green"}, values(body.Data)); diff != "" {
		t.Fatalf("radio options mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_NoMatchesIsEmptyArray(t *testing.T) {
	rec, _ := get(t, NewHandler(testPage()), http.MethodGet, "/choices?field=country&q=zz")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"field":"country","data":[]}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestHandler_Errors(t *testing.T) {
	h := NewHandler(testPage())

	rec, body := get(t, h, http.MethodGet, "/choices")
	if rec.Code != http.StatusBadRequest || body.Error == "" {
		t.Fatalf("expected 400 with error, got %d %q", rec.Code, body.Error)
	}

	rec, _ = get(t, h, http.MethodGet, "/choices?field=username")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-choice field, got %d", rec.Code)
	}

	rec, _ = get(t, h, http.MethodPost, "/choices?field=country")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}

	rec, _ = get(t, h, http.MethodHead, "/choices?field=country")
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200 for HEAD, got %d with %d bytes", rec.Code, rec.Body.Len())
	}
}

func TestRegisterRoutes(t *testing.T) {
	mux := http.NewServeMux()
	pattern, err := RegisterRoutes(mux, "/signup/", testPage())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pattern != "/signup/choices" {
		t.Fatalf("unexpected pattern %q", pattern)
	}

	rec, body := get(t, mux, http.MethodGet, "/signup/choices?field=color&q=gr")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if diff := cmp.Diff([]string{"green"}, values(body.Data)); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	if _, err := RegisterRoutes(nil, "/", testPage()); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}

func TestMountPath(t *testing.T) {
	cases := []struct {
		base, route, want string
	}{
		{base: "", route: "choices", want: "/choices"},
		{base: "/", route: "/options", want: "/options"},
		{base: "forms/signup", route: "/choices", want: "/forms/signup/choices"},
	}
	for _, tc := range cases {
		if got := MountPath(tc.base, tc.route); got != tc.want {
			t.Fatalf("MountPath(%q, %q) = %q, want %q", tc.base, tc.route, got, tc.want)
		}
	}
}
