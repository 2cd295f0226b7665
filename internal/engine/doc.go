// Package engine bootstraps the component runtime for one document.
//
// An Engine owns the document, the reactive runtime, the scope resolver, the
// directive binder, the instance factory and the initialization scheduler.
// It attaches to a registry as a host, so every registered definition binds
// to the document, and optionally uses a namespace loader to fetch unknown
// tags before mounting.
//
// Nothing here is safe for concurrent use: drive an Engine from one
// goroutine. The loader is the only part that works concurrently, and only
// while fetching.
package engine
