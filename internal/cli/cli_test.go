package cli

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-autoform/pkg/renderers/tui"
)

const (
	signupSchema = "../../examples/signup/schema.yaml"
	signupConfig = "../../examples/signup/fieldconfig.yaml"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestRoot_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "validate", "-s", signupSchema)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "load", assert.AnError)))
}

func TestValidate_SchemaOnly(t *testing.T) {
	out, err := execute(t, "validate", "-s", signupSchema, "-c", signupConfig)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ schema and configuration valid (8 fields)")
}

func TestValidate_UnknownConfigKey(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "fieldconfig.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("fields:\n  nickname:\n    label: Nick\n"), 0o644))

	out, err := execute(t, "validate", "-s", signupSchema, "-c", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "nickname")

	out, err = execute(t, "validate", "-s", signupSchema, "-c", cfg, "--unknown-keys", "ignore")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ schema and configuration valid")
}

func TestValidate_SetValues(t *testing.T) {
	out, err := execute(t, "validate", "-s", signupSchema,
		"--set", "username=jane",
		"--set", "password=correct-horse",
		"--set", "acceptTerms=true",
		"--set", "color=green",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ values valid")
	assert.Contains(t, out, "username=jane")
	assert.Contains(t, out, "acceptTerms=true")
	assert.Contains(t, out, "color=green")
}

func TestValidate_InvalidValues(t *testing.T) {
	out, err := execute(t, "validate", "-s", signupSchema,
		"--set", "username=j",
		"--set", "favouriteNumber=11",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "username: Username must be at least 2 characters.")
	assert.Contains(t, out, "favouriteNumber: Favourite number must be at most 10.")
	assert.Contains(t, out, "password: Password is required.")
}

func TestValidate_NullValuesDocument(t *testing.T) {
	values := filepath.Join(t.TempDir(), "values.json")
	require.NoError(t, os.WriteFile(values, []byte("null"), 0o644))

	out, err := execute(t, "validate", "-s", signupSchema, "--values", values)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.NotContains(t, out, "schema and configuration valid")
	assert.Contains(t, out, "username: Username is required.")
}

func TestValidate_ValuesFileJSON(t *testing.T) {
	dir := t.TempDir()
	values := filepath.Join(dir, "values.json")
	require.NoError(t, os.WriteFile(values, []byte(`{
		"username": "jane",
		"password": "correct-horse",
		"acceptTerms": true,
		"color": "blue",
		"birthday": "1990-04-12"
	}`), 0o644))

	out, err := execute(t, "--format", "json", "validate", "-s", signupSchema, "--values", values)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	got, ok := data["values"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "jane", got["username"])
	assert.Equal(t, "blue", got["color"])
	assert.Equal(t, "1990-04-12", got["birthday"])
	assert.Equal(t, float64(1), got["favouriteNumber"])
}

func TestValidate_InvalidValuesJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", "-s", signupSchema, "--set", "username=jane")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidValues, resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "password")
	assert.NotContains(t, details, "username")
}

func TestValidate_BadSetPair(t *testing.T) {
	_, err := execute(t, "validate", "-s", signupSchema, "--set", "username")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRender_Stdout(t *testing.T) {
	out, err := execute(t, "render", "-s", signupSchema, "-c", signupConfig, "--action", "/signup")
	require.NoError(t, err)
	assert.Contains(t, out, `action="/signup"`)
	assert.Contains(t, out, `name="username"`)
	assert.Contains(t, out, "Send now")
}

func TestRender_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signup.html")
	out, err := execute(t, "render", "-s", signupSchema, "-c", signupConfig, "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Form written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<textarea id=`)
	assert.Contains(t, string(data), `type="password"`)
}

func TestRender_Preset(t *testing.T) {
	preset := filepath.Join(t.TempDir(), "preset.json")
	require.NoError(t, os.WriteFile(preset, []byte(`{"submitLabel": "Create account"}`), 0o644))

	out, err := execute(t, "render", "-s", signupSchema, "--preset", preset)
	require.NoError(t, err)
	assert.Contains(t, out, "Create account")
	assert.NotContains(t, out, "Send now")
}

func TestRender_MissingSchema(t *testing.T) {
	_, err := execute(t, "render", "-s", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

// scriptedDriver answers prompts from queues, in control order.
type scriptedDriver struct {
	inputs    []string
	passwords []string
	confirms  []bool
	selects   []int
	textareas []string
	infos     []string
}

func (d *scriptedDriver) Input(_ context.Context, _ tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", nil
	}
	answer := d.inputs[0]
	d.inputs = d.inputs[1:]
	return answer, nil
}

func (d *scriptedDriver) Password(_ context.Context, _ tui.InputConfig) (string, error) {
	if len(d.passwords) == 0 {
		return "", nil
	}
	answer := d.passwords[0]
	d.passwords = d.passwords[1:]
	return answer, nil
}

func (d *scriptedDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return cfg.Default, nil
	}
	answer := d.confirms[0]
	d.confirms = d.confirms[1:]
	return answer, nil
}

func (d *scriptedDriver) Select(_ context.Context, _ tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, nil
	}
	answer := d.selects[0]
	d.selects = d.selects[1:]
	return answer, nil
}

func (d *scriptedDriver) TextArea(_ context.Context, _ tui.TextAreaConfig) (string, error) {
	if len(d.textareas) == 0 {
		return "", nil
	}
	answer := d.textareas[0]
	d.textareas = d.textareas[1:]
	return answer, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func signupAnswers() *scriptedDriver {
	return &scriptedDriver{
		inputs:    []string{"jane", "7", "1990-04-12"},
		passwords: []string{"correct-horse"},
		confirms:  []bool{true, false},
		selects:   []int{1},
		textareas: []string{"Writes Go on weekends."},
	}
}

func runPromptCommand(t *testing.T, driver tui.PromptDriver, args ...string) (string, error) {
	t.Helper()
	root := &RootOptions{Format: "text", promptDriver: driver}
	cmd := NewPromptCommand(root)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestPrompt_CollectsValues(t *testing.T) {
	out, err := runPromptCommand(t, signupAnswers(), "-s", signupSchema, "-c", signupConfig)
	require.NoError(t, err)

	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &values), out)
	assert.Equal(t, "jane", values["username"])
	assert.Equal(t, "correct-horse", values["password"])
	assert.Equal(t, float64(7), values["favouriteNumber"])
	assert.Equal(t, true, values["acceptTerms"])
	assert.Equal(t, "1990-04-12", values["birthday"])
	assert.Equal(t, "green", values["color"])
	assert.Equal(t, "Writes Go on weekends.", values["bio"])
}

func TestPrompt_LogsValuesAfterEachAnswer(t *testing.T) {
	var logs bytes.Buffer
	root := &RootOptions{
		Format:       "text",
		promptDriver: signupAnswers(),
		logger:       slog.New(slog.NewTextHandler(&logs, nil)),
	}
	cmd := NewPromptCommand(root)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-s", signupSchema, "-c", signupConfig})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	var changes []string
	for _, line := range lines {
		if strings.Contains(line, "msg=Values") {
			changes = append(changes, line)
		}
	}
	require.Len(t, changes, 8, logs.String())
	assert.Contains(t, changes[0], "field=username")
	assert.Contains(t, changes[0], "values.username=jane")
	assert.NotContains(t, changes[0], "values.color")
	assert.Contains(t, changes[7], "field=bio")
	assert.Contains(t, changes[7], "values.color=green")
}

func TestPrompt_RetriesInvalidAnswers(t *testing.T) {
	driver := signupAnswers()
	driver.inputs = []string{"j", "jane", "7", "1990-04-12"}

	out, err := runPromptCommand(t, driver, "-s", signupSchema, "-c", signupConfig, "--output-format", "pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "username=jane")
	assert.Contains(t, strings.Join(driver.infos, "\n"), "Username must be at least 2 characters.")
}

func TestPrompt_MaxAttempts(t *testing.T) {
	driver := signupAnswers()
	driver.inputs = []string{"j", "k"}

	_, err := runPromptCommand(t, driver, "-s", signupSchema, "-c", signupConfig, "--max-attempts", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, tui.ErrTooManyAttempts)
}

func TestPrompt_InvalidOutputFormat(t *testing.T) {
	_, err := runPromptCommand(t, signupAnswers(), "-s", signupSchema, "--output-format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPrompt_StoresSubmissionAndLists(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "submissions.db")

	_, err := runPromptCommand(t, signupAnswers(),
		"-s", signupSchema, "-c", signupConfig, "--form-id", "signup", "--store", dsn)
	require.NoError(t, err)

	out, err := execute(t, "--format", "json", "submissions", "--store", dsn, "--form", "signup")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	require.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	list, ok := data["submissions"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, "signup", entry["form_id"])
	assert.NotEmpty(t, entry["id"])
	values := entry["values"].(map[string]any)
	assert.Equal(t, "jane", values["username"])
	assert.Equal(t, "1990-04-12", values["birthday"])

	out, err = execute(t, "submissions", "--store", dsn, "--form", "other")
	require.NoError(t, err)
	assert.Contains(t, out, "0 submission(s)")
}

func TestServe_Handler(t *testing.T) {
	opts := &ServeOptions{
		Source: SourceOptions{
			Schema:      signupSchema,
			Config:      signupConfig,
			FormID:      "signup",
			UnknownKeys: "reject",
			HTTPTimeout: time.Second,
		},
		Path: "/signup",
	}
	handler, err := newServeHandler(context.Background(), &RootOptions{}, opts)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/signup"`)
	assert.Contains(t, rec.Body.String(), `<input type="hidden" name="_form" value="signup">`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup/choices?field=color&q=bl", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"field":"color","data":[{"value":"blue","label":"blue"}]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
