// Package choices serves the options of a form's choice controls (select and
// radio) as JSON, with prefix-first search and a clamped result limit, so a
// client can drive an autocomplete without embedding every option in the page.
//
// The handler answers GET and HEAD:
//
//	GET /signup/choices?field=color&q=gr&limit=5
//	{"field":"color","data":[{"value":"green","label":"green"}]}
package choices
