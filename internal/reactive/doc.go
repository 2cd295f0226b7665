// Package reactive implements the reactivity primitives component state is
// built from: reactive objects, refs, computed cells and effects.
//
// Every reactive Object is exposed to JavaScript as a goja dynamic object.
// Reads performed while an Effect runs are recorded as dependencies; writes
// re-run the dependent effects synchronously, in the order they first
// subscribed. Expressions found in markup are evaluated against a Stack of
// objects (innermost first) through Runtime.Eval.
//
// A Runtime wraps a single goja VM and must only be used from the goroutine
// that owns it.
package reactive
