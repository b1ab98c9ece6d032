// Package form models one mounted form instance: the Form Value Set that
// user edits mutate, the observers notified on every change, and the submit
// handlers that receive validated values.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-autoform/pkg/schema"
	"github.com/goliatone/go-autoform/pkg/validation"
	"github.com/goliatone/go-autoform/pkg/widgets"
)

var (
	// ErrUnknownField is returned when a value targets a field the schema
	// does not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrUnmounted is returned by every operation after Unmount.
	ErrUnmounted = errors.New("form: form is unmounted")
)

// ChangeEvent is emitted after every mutation of the value set. Values is a
// copy the observer may keep.
type ChangeEvent struct {
	FormID string
	Field  string
	Values map[string]any
}

// Observer receives change events synchronously, in registration order.
type Observer interface {
	Changed(ChangeEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ChangeEvent)

// Changed implements Observer.
func (fn ObserverFunc) Changed(event ChangeEvent) {
	fn(event)
}

// Submission is handed to submit handlers once validation passed.
type Submission struct {
	ID          string
	FormID      string
	Values      map[string]any
	SubmittedAt time.Time
}

// SubmitHandler stores or forwards a valid submission.
type SubmitHandler interface {
	HandleSubmission(ctx context.Context, submission Submission) error
}

// SubmitHandlerFunc adapts a function to SubmitHandler.
type SubmitHandlerFunc func(ctx context.Context, submission Submission) error

// HandleSubmission implements SubmitHandler.
func (fn SubmitHandlerFunc) HandleSubmission(ctx context.Context, submission Submission) error {
	return fn(ctx, submission)
}

// Option customises a Form.
type Option func(*Form)

// WithObservers registers change observers.
func WithObservers(observers ...Observer) Option {
	return func(f *Form) {
		for _, observer := range observers {
			if observer != nil {
				f.observers = append(f.observers, observer)
			}
		}
	}
}

// WithSubmitHandlers registers submit handlers.
func WithSubmitHandlers(handlers ...SubmitHandler) Option {
	return func(f *Form) {
		for _, handler := range handlers {
			if handler != nil {
				f.handlers = append(f.handlers, handler)
			}
		}
	}
}

// WithInitialValues seeds the value set without emitting change events.
func WithInitialValues(values map[string]any) Option {
	return func(f *Form) {
		for key, value := range values {
			if f.schema.Has(key) {
				f.values[key] = value
			}
		}
	}
}

// WithID overrides the generated instance identifier.
func WithID(id string) Option {
	return func(f *Form) {
		if id != "" {
			f.id = id
		}
	}
}

// WithClock overrides the time source used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets the logger used for submit diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Form is one mounted form instance. It is safe for concurrent use; observers
// and handlers run outside the internal lock.
type Form struct {
	id       string
	schema   *schema.Schema
	controls []widgets.Control

	mu      sync.Mutex
	values  map[string]any
	mounted bool

	observers []Observer
	handlers  []SubmitHandler
	now       func() time.Time
	logger    *slog.Logger
}

// New mounts a form instance for s. controls are the merged presentation of
// the schema and are carried for renderers.
func New(s *schema.Schema, controls []widgets.Control, opts ...Option) *Form {
	f := &Form{
		id:       uuid.NewString(),
		schema:   s,
		controls: append([]widgets.Control(nil), controls...),
		values:   make(map[string]any),
		mounted:  true,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// ID returns the instance identifier.
func (f *Form) ID() string {
	return f.id
}

// Schema returns the schema the form validates against.
func (f *Form) Schema() *schema.Schema {
	return f.schema
}

// Controls returns the merged controls in schema order.
func (f *Form) Controls() []widgets.Control {
	return append([]widgets.Control(nil), f.controls...)
}

// Set stores value for name and notifies observers.
func (f *Form) Set(name string, value any) error {
	if !f.schema.Has(name) {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return ErrUnmounted
	}
	f.values[name] = value
	snapshot := copyValues(f.values)
	f.mu.Unlock()

	f.emit(ChangeEvent{FormID: f.id, Field: name, Values: snapshot})
	return nil
}

// SetAll applies several values at once, emitting a single change event with
// an empty Field. Unknown keys reject the whole batch.
func (f *Form) SetAll(values map[string]any) error {
	for name := range values {
		if !f.schema.Has(name) {
			return fmt.Errorf("%w %q", ErrUnknownField, name)
		}
	}
	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return ErrUnmounted
	}
	for name, value := range values {
		f.values[name] = value
	}
	snapshot := copyValues(f.values)
	f.mu.Unlock()

	f.emit(ChangeEvent{FormID: f.id, Values: snapshot})
	return nil
}

// Clear removes the value for name so the field reads as absent.
func (f *Form) Clear(name string) error {
	if !f.schema.Has(name) {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	f.mu.Lock()
	if !f.mounted {
		f.mu.Unlock()
		return ErrUnmounted
	}
	delete(f.values, name)
	snapshot := copyValues(f.values)
	f.mu.Unlock()

	f.emit(ChangeEvent{FormID: f.id, Field: name, Values: snapshot})
	return nil
}

// Values returns a copy of the current, possibly partial, value set.
func (f *Form) Values() (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.mounted {
		return nil, ErrUnmounted
	}
	return copyValues(f.values), nil
}

// Validate runs the schema against the current value set.
func (f *Form) Validate() (validation.Result, error) {
	values, err := f.Values()
	if err != nil {
		return validation.Result{}, err
	}
	return validation.Validate(f.schema, values), nil
}

// Submit validates the value set and, when valid, hands the typed values to
// every submit handler in order. It returns the validation result and the
// first handler error; later handlers are skipped after a failure.
func (f *Form) Submit(ctx context.Context) (validation.Result, error) {
	result, err := f.Validate()
	if err != nil {
		return result, err
	}
	if !result.Valid() {
		f.logger.Debug("form submission rejected", "form", f.id, "errors", len(result.Errors))
		return result, nil
	}

	submission := Submission{
		ID:          uuid.NewString(),
		FormID:      f.id,
		SubmittedAt: f.now().UTC(),
	}
	for _, handler := range f.handlers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		// Each handler gets its own copy so mutations stay local.
		submission.Values = copyValues(result.Values)
		if err := handler.HandleSubmission(ctx, submission); err != nil {
			f.logger.Error("submit handler failed", "form", f.id, "submission", submission.ID, "error", err)
			return result, fmt.Errorf("form: submit %s: %w", submission.ID, err)
		}
	}
	f.logger.Debug("form submitted", "form", f.id, "submission", submission.ID)
	return result, nil
}

// Unmount discards the value set. The instance cannot be used afterwards.
func (f *Form) Unmount() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mounted = false
	f.values = nil
}

// Mounted reports whether Unmount has not been called yet.
func (f *Form) Mounted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mounted
}

func (f *Form) emit(event ChangeEvent) {
	for _, observer := range f.observers {
		observer.Changed(event)
	}
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
