// Package manifest converts between the workload form model and Kubernetes
// manifest text.
//
// Synthesize builds a typed YAML document tree for one of the supported
// kinds and serializes it with a single emitter, so equal models always
// render byte-identical text:
//
//	text, err := manifest.Synthesize(workload.KindDeployment, model)
//
// Parse is the inverse. It accepts YAML or JSON, tolerates missing and
// unknown sections, and reports broken input as MANIFEST_SYNTAX with the
// offending line:
//
//	kind, model, err := manifest.Parse(text)
//
// Overlay edits an existing manifest instead of rebuilding it. Only the
// fields where the model differs from the manifest are rewritten, so
// server-populated metadata, fields outside the form model, and comments
// survive an edit:
//
//	next, err := manifest.Overlay(liveText, model)
//	diff, err := manifest.Compare(liveText, next)
//
// Compare renders a unified diff plus side-by-side rows for review.
package manifest
