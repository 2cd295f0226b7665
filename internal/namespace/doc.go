// Package namespace resolves unknown tag names to component sources.
//
// A Namespace owns every tag whose prefix (the part before the first
// separator) equals its own. Three kinds exist: Remote fetches
// "<uri><transform(name)>", Versioned fetches
// "<uri><package>@<version>/<transform(name)>", and Bundled serves from an
// in-memory map before falling back to Remote behavior. Tags with no
// matching prefix go to the default namespace when one is configured.
//
// The Loader fetches a tag and, for auto-importing namespaces, every unknown
// custom tag its template references, concurrently and with in-flight
// de-duplication. Registration then happens on the caller's goroutine in
// depth-first completion order, so dependencies are registered before the
// components that use them.
package namespace
