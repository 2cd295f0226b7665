// Package scope resolves the reactive evaluation context of nodes.
//
// Every node evaluates against the Stack attached to it or to its nearest
// ancestor (crossing isolated boundaries to their hosts). Content that a
// component instance authored carries an ownership mark; Rescope uses the
// mark to re-attach such content to the context its author implies, so that
// moving content into another component's rendered tree does not change
// what its expressions see.
package scope
