// Package openapi builds form schemas from OpenAPI 3 component schemas.
// Documents are fetched through a Loader (file, fs.FS or HTTP) and parsed
// with kin-openapi; each property of the chosen component becomes one field.
package openapi
