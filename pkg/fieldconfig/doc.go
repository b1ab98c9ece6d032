// Package fieldconfig holds the presentation hints layered on top of a
// schema: control variant overrides, labels, descriptions and input-level
// attributes. Configuration is presentation only; it never changes how a
// value validates. Keys must name schema fields; Check applies the chosen
// UnknownKeyPolicy to keys that do not.
package fieldconfig
