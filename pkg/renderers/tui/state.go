package tui

// State tracks answered values and server-provided errors keyed by field
// name.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	values := make(map[string]any, len(prefill))
	for k, v := range prefill {
		values[k] = v
	}
	errors := make(map[string][]string, len(errs))
	for k, v := range errs {
		errors[k] = append([]string(nil), v...)
	}
	return &State{values: values, errors: errors}
}

// Values returns a copy of the collected values.
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// ErrorsFor returns the errors recorded for name.
func (s *State) ErrorsFor(name string) []string {
	if s == nil {
		return nil
	}
	return s.errors[name]
}

// Get returns the current value for name.
func (s *State) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Set records value for name and clears its errors.
func (s *State) Set(name string, value any) {
	s.values[name] = value
	delete(s.errors, name)
}

// Delete forgets the value for name.
func (s *State) Delete(name string) {
	delete(s.values, name)
	delete(s.errors, name)
}
