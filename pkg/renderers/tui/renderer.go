// Package tui collects form values interactively in a terminal. Each control
// becomes one prompt; answers are validated as they are entered and invalid
// answers are re-asked with the field's error message.
package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-autoform/pkg/form"
	"github.com/goliatone/go-autoform/pkg/render"
	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/validation"
	"github.com/goliatone/go-autoform/pkg/widgets"
)

const skipOption = "(skip)"

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
	observers         []form.Observer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "✗ "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver()
	}
	if _, ok := ParseOutputFormat(string(r.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every control in order and returns the collected values
// serialized in the configured output format. When the page carries a schema
// the output holds typed values that passed validation.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if page.Title != "" {
		header := page.Title
		if page.Description != "" {
			header += "\n" + page.Description
		}
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+header); err != nil {
			return nil, err
		}
	}

	state := NewState(opts.Values, opts.Errors)
	for _, message := range opts.FormErrors {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	for _, control := range page.Controls {
		var (
			field    schema.Field
			hasField bool
		)
		if page.Schema != nil {
			field, hasField = page.Schema.Field(control.Name)
		}
		if err := r.promptControl(ctx, control, field, hasField, state); err != nil {
			return nil, fmt.Errorf("tui: field %q: %w", control.Name, err)
		}
		r.emit(form.ChangeEvent{FormID: page.ID, Field: control.Name, Values: state.Values()})
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(page.FieldNames(), values)
}

func (r *Renderer) promptControl(ctx context.Context, control widgets.Control, field schema.Field, hasField bool, state *State) error {
	for _, message := range state.ErrorsFor(control.Name) {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
	}

	for attempt := 1; ; attempt++ {
		raw, present, err := r.ask(ctx, control, field, state)
		if err != nil {
			return err
		}

		if !hasField {
			if present {
				state.Set(control.Name, raw)
			} else {
				state.Delete(control.Name)
			}
			return nil
		}

		value, keep, issue := validation.ValidateField(field, raw, present)
		if issue == nil {
			if keep {
				state.Set(control.Name, value)
			} else {
				state.Delete(control.Name)
			}
			return nil
		}
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+issue.Message); err != nil {
			return err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, issue.Message)
		}
	}
}

func (r *Renderer) emit(event form.ChangeEvent) {
	for _, observer := range r.observers {
		observer.Changed(event)
	}
}

// ask issues one prompt and converts the answer into a raw value the way a
// browser would submit it. present is false for blank answers.
func (r *Renderer) ask(ctx context.Context, control widgets.Control, field schema.Field, state *State) (any, bool, error) {
	message := control.Label
	if message == "" {
		message = control.Name
	}
	help := plainText(control.Description)
	current := r.currentValue(control, state)

	switch control.Variant {
	case widgets.VariantCheckbox, widgets.VariantSwitch:
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Default: truthy(current),
			Help:    help,
		})
		return answer, true, err

	case widgets.VariantSelect, widgets.VariantRadio:
		return r.askChoice(ctx, control, message, help, current)

	case widgets.VariantTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: current,
			Help:    help,
		})
		if err != nil {
			return nil, false, err
		}
		return answer, strings.TrimSpace(answer) != "", nil

	case widgets.VariantPassword:
		answer, err := r.driver.Password(ctx, InputConfig{Message: message, Help: help})
		if err != nil {
			return nil, false, err
		}
		return answer, answer != "", nil
	}

	answer, err := r.driver.Input(ctx, InputConfig{
		Message: message,
		Default: current,
		Help:    help,
	})
	if err != nil {
		return nil, false, err
	}
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return nil, false, nil
	}
	return typedAnswer(field, trimmed), true, nil
}

func (r *Renderer) askChoice(ctx context.Context, control widgets.Control, message, help, current string) (any, bool, error) {
	labels := make([]string, 0, len(control.Options)+1)
	values := make([]string, 0, len(control.Options)+1)
	if !control.Required {
		labels = append(labels, skipOption)
		values = append(values, "")
	}
	defaultIdx := -1
	for _, option := range control.Options {
		if option.Value == current {
			defaultIdx = len(labels)
		}
		labels = append(labels, option.Label)
		values = append(values, option.Value)
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      labels,
		DefaultIndex: defaultIdx,
		Help:         help,
	})
	if err != nil {
		return nil, false, err
	}
	if idx < 0 || idx >= len(values) || values[idx] == "" {
		return nil, false, nil
	}
	return values[idx], true, nil
}

// currentValue is the prompt default: a prefilled or previously entered
// value, else the control default. Passwords never echo.
func (r *Renderer) currentValue(control widgets.Control, state *State) string {
	if control.Variant == widgets.VariantPassword {
		return ""
	}
	if v, ok := state.Get(control.Name); ok {
		return displayValue(v)
	}
	if control.HasDefault {
		return displayValue(control.Default)
	}
	return ""
}

// typedAnswer converts terminal text for number and date fields so they
// validate without requiring coercion. Unparseable text is passed through and
// reported by validation.
func typedAnswer(field schema.Field, answer string) any {
	switch field.Kind {
	case schema.KindNumber:
		if n, err := strconv.ParseFloat(answer, 64); err == nil {
			return n
		}
	case schema.KindDate:
		if d, err := schema.ParseDate(answer); err == nil {
			return d
		}
	}
	return answer
}

func displayValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(schema.DateLayout)
	}
	if n, ok := schema.NumberValue(value); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// plainText strips markup from sanitised descriptions for terminal help and
// decodes the entities the sanitiser escaped.
func plainText(markup string) string {
	if markup == "" {
		return ""
	}
	text := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(markup))
	return strings.Join(strings.Fields(text), " ")
}
