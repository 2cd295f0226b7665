// Package slot projects caller content into a template's insertion points.
//
// Before content moves, every caller node is marked with the instance that
// received it, so the scope resolver can keep evaluating it against the
// context it was written in. Marking stops at nested custom elements: their
// own light children are marked when that element initializes.
package slot
