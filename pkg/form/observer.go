package form

import (
	"log/slog"
	"sort"
)

// LogObserver logs every change event under the "Values" message.
func LogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return ObserverFunc(func(event ChangeEvent) {
		keys := make([]string, 0, len(event.Values))
		for key := range event.Values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		attrs := make([]any, 0, len(keys))
		for _, key := range keys {
			attrs = append(attrs, slog.Any(key, event.Values[key]))
		}
		logger.Info("Values",
			slog.String("form", event.FormID),
			slog.String("field", event.Field),
			slog.Group("values", attrs...),
		)
	})
}

// Recorder keeps every change event it sees. Useful for tests and previews.
type Recorder struct {
	Events []ChangeEvent
}

// Changed implements Observer.
func (r *Recorder) Changed(event ChangeEvent) {
	r.Events = append(r.Events, event)
}

// Last returns the most recent event.
func (r *Recorder) Last() (ChangeEvent, bool) {
	if len(r.Events) == 0 {
		return ChangeEvent{}, false
	}
	return r.Events[len(r.Events)-1], true
}
