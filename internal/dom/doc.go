// Package dom is the in-memory document tree the composition runtime works on.
//
// It models just enough of a browser document for component composition:
// element, text and comment nodes, inert template content, isolated rendering
// boundaries (shadow roots) attached to host elements, and a custom element
// table. The table is a small dispatch of lifecycle callbacks
// (construct/connected/disconnected) that the Document invokes as elements are
// created, inserted and removed, which is how the rest of the runtime hooks
// into tree mutations without knowing the tree's representation.
//
// Markup is parsed and rendered with golang.org/x/net/html.
//
// A Document and every node in it are owned by a single goroutine. Nothing in
// this package is safe for concurrent use.
package dom
