// Package errors provides structured, coded errors for loadable.
//
// Every error carries a stable code (e.g. "L001") that maps to a registered
// template with a category, a short message and a longer explanation.
// Errors compare equal under errors.Is when their codes match, so exported
// sentinels can be built from the registry and still match errors created
// later with extra detail attached.
//
// # Error Categories
//
//   - config: invalid Loadable construction (missing loading view, render)
//   - runtime: load failures surfaced from loaders
//   - hydration: server/client preload handoff problems
//
// # Usage
//
//	err := errors.New("L001").
//	    WithDetail("loadable \"dashboard\" has no Loading view").
//	    Wrap(cause)
package errors
