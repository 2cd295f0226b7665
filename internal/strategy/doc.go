// Package strategy builds the live content of a component instance.
//
// Each registry.Mode has a Strategy: Isolated renders inside a boundary on
// the host, Inline renders directly into the host, and Unwrap replaces the
// host with the template's single top-level element. All three share one
// contract, driven in this order by the component package:
//
//	Init -> (slot distribution) -> Mount -> AppendContent -> Cleanup
package strategy
