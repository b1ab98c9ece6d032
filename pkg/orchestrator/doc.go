// Package orchestrator wires the document loader, the schema/configuration
// merge, page transformers and the renderer registry behind a single Generate
// call.
package orchestrator
