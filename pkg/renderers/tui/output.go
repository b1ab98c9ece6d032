package tui

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-autoform/pkg/schema"
)

func (r *Renderer) serialize(order []string, values map[string]any) ([]byte, error) {
	values = schema.ExportValues(values)
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for key, value := range values {
			form.Set(key, fmt.Sprint(value))
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(order, values)), nil
	default:
		return json.Marshal(values)
	}
}

// prettyPrint lists fields in control order, then any extras sorted by name.
func prettyPrint(order []string, values map[string]any) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(values))
	for _, name := range order {
		value, ok := values[name]
		if !ok {
			continue
		}
		seen[name] = struct{}{}
		fmt.Fprintf(&b, "%s=%v\n", name, value)
	}

	var extras []string
	for name := range values {
		if _, ok := seen[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		fmt.Fprintf(&b, "%s=%v\n", name, values[name])
	}
	return b.String()
}
