// Package template defines the engine-agnostic seam renderers use to execute
// templates. The pongo subpackage provides the default implementation.
package template
