// Package ownership is the side table that records which component instance
// authored a node, independently of where the node currently sits in the
// tree.
//
// Marks are keyed by node identifier rather than stored on the nodes
// themselves, so the tree representation stays free of composition state.
// A mark, once set, is kept until it is explicitly overridden, forgotten, or
// its owner is forgotten as a whole.
package ownership
