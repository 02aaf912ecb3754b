// Package errors provides structured, coded errors for hostbridge.
//
// Every failure the bridge surfaces to a host application carries a code
// (e.g. "E010") that maps to a short message, a longer explanation and a
// category. Package-level sentinel errors (native.ErrUnknownType,
// registry.ErrMissingParent, ...) are wrapped so that errors.Is keeps
// working across package boundaries.
//
// # Error Categories
//
//   - input: malformed arguments passed to the public API
//   - config: backend wiring mistakes (unknown element types, bad type maps)
//   - lifecycle: reconciler ordering violations (missing parent, double mount)
//   - runtime: failures raised while rendering or exporting snapshots
//
// # Usage
//
//	err := errors.New("E010").
//	    WithNode("root.0.1", "pancake").
//	    WithSuggestion(`Add "pancake" to the root type map`).
//	    Wrap(native.ErrUnknownType)
//
//	errors.Printer{Color: true}.Fprint(os.Stderr, err)
package errors
