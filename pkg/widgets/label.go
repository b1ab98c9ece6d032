package widgets

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Humanize turns a field name into a label: "favouriteNumber" and
// "favourite_number" both become "Favourite Number".
func Humanize(name string) string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(strings.TrimSpace(name))
	for idx, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && idx > 0 && startsWord(runes, idx):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.English, cases.NoLower).String(strings.Join(words, " "))
}

// startsWord splits "userID" as "user ID" and "HTTPServer" as "HTTP Server".
func startsWord(runes []rune, idx int) bool {
	prev := runes[idx-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	if unicode.IsUpper(prev) && idx+1 < len(runes) && unicode.IsLower(runes[idx+1]) {
		return true
	}
	return false
}
