// Package schema describes the fields a form collects. A Schema is an ordered
// list of Field descriptors; each field declares its value Kind, whether it is
// required, an optional default and an explicit list of validation Rules that
// run in registration order. Schemas are usually built in Go with New or
// loaded from a declarative YAML/JSON document with Parse/LoadFile/LoadFS.
//
// Rules expose canonical names (min/max, minLength/maxLength, pattern, email,
// url, minDate/maxDate, equals) with string parameters so renderers can map
// bounds onto input attributes while the Check function stays the single
// source of truth for validation.
package schema
