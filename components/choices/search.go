package choices

import (
	"sort"
	"strings"

	"github.com/goliatone/go-autoform/pkg/widgets"
)

// Search filters options whose label or value contains query, case
// insensitively. Prefix matches come first; otherwise declaration order is
// kept.
func Search(options []widgets.SelectOption, query string, limit int, opts Options) []widgets.SelectOption {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		if opts.EmptySearchMode != EmptySearchAll {
			return nil
		}
		if len(options) > limit {
			options = options[:limit]
		}
		return append([]widgets.SelectOption{}, options...)
	}

	matches := make([]match, 0, len(options))
	for _, option := range options {
		label := strings.ToLower(option.Label)
		value := strings.ToLower(option.Value)
		if !strings.Contains(label, query) && !strings.Contains(value, query) {
			continue
		}
		matches = append(matches, match{
			option:   option,
			isPrefix: strings.HasPrefix(label, query) || strings.HasPrefix(value, query),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]widgets.SelectOption, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.option)
	}
	return out
}

type match struct {
	option   widgets.SelectOption
	isPrefix bool
}
