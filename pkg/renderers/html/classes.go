package html

// Semantic CSS classes emitted by the built-in templates. Themes target these.
const (
	ClassCard    = "af-card"
	ClassForm    = "af-form"
	ClassField   = "af-field"
	ClassLabel   = "af-label"
	ClassError   = "af-error"
	ClassErrors  = "af-errors"
	ClassActions = "af-actions"
)

// controlID namespaces a field name for use as an element id.
func controlID(name string) string {
	if name == "" {
		return ""
	}
	return "af-" + name
}
