// internal/nodeid/doc.go

/*
Package nodeid provides a structured, comparable representation of a node's
position inside a document tree, based on the canonical format `path`.

The format is a dot-separated sequence of segments, one per ancestor level,
e.g., `html[0].body[1].ui-card[0].#shadow.div[2]`. Each segment names the
element and its index among its parent's children. The `#shadow` segment marks
the crossing from a host element into its isolated rendering boundary.

Addresses are the positional index the scheduler sorts by: Compare orders two
addresses in document order, so an ancestor always precedes its descendants
and an earlier sibling precedes a later one.
*/
package nodeid
