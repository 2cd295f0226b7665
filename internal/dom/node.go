package dom

import (
	"strings"

	"github.com/specialistvlad/compositor/internal/nodeid"
)

// NodeType distinguishes between the kinds of nodes in a Document.
type NodeType int

const (
	// ElementNode is a tagged element with attributes and children.
	ElementNode NodeType = iota + 1
	// TextNode holds character data.
	TextNode
	// CommentNode holds a comment.
	CommentNode
	// FragmentNode is a parentless container; inserting it moves its children.
	FragmentNode
	// DocumentNode is the root of a Document.
	DocumentNode
	// ShadowRootNode is the root of an isolated boundary attached to a host.
	ShadowRootNode
)

// NodeID identifies a node for the lifetime of its Document.
type NodeID uint64

// Attr is a single attribute. Attribute order is preserved.
type Attr struct {
	Key string
	Val string
}

// Node is a single vertex of the document tree.
type Node struct {
	id   NodeID
	typ  NodeType
	tag  string
	data string
	doc  *Document

	attrs    []Attr
	parent   *Node
	children []*Node

	// content is the inert fragment of a <template> element.
	content *Node
	// templateOwner is set on a content fragment and points back at its template.
	templateOwner *Node
	// shadow is the isolated boundary attached to this element, if any.
	shadow *Node
	// host is set on a shadow root and points at the element it is attached to.
	host *Node

	upgraded bool
}

// ID returns the node's document-unique identifier.
func (n *Node) ID() NodeID { return n.id }

// Type returns the node's type.
func (n *Node) Type() NodeType { return n.typ }

// Tag returns the lower-case tag name of an element, or "" for other nodes.
func (n *Node) Tag() string { return n.tag }

// Data returns the character data of a text or comment node.
func (n *Node) Data() string { return n.data }

// SetData replaces the character data of a text or comment node.
func (n *Node) SetData(s string) { n.data = s }

// Document returns the document that owns the node.
func (n *Node) Document() *Document { return n.doc }

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Content returns the inert content fragment of a <template> element.
func (n *Node) Content() *Node { return n.content }

// TemplateOwner returns the template a content fragment belongs to.
func (n *Node) TemplateOwner() *Node { return n.templateOwner }

// Shadow returns the isolated boundary attached to the element, or nil.
func (n *Node) Shadow() *Node { return n.shadow }

// Host returns the host element of a shadow root, or nil.
func (n *Node) Host() *Node { return n.host }

// IsElement reports whether the node is an element.
func (n *Node) IsElement() bool { return n != nil && n.typ == ElementNode }

// Is reports whether the node is an element with the given tag.
func (n *Node) Is(tag string) bool { return n.IsElement() && n.tag == tag }

// Children returns a copy of the node's child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// ElementChildren returns the element children of the node.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.typ == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstElementChild returns the first element child, or nil.
func (n *Node) FirstElementChild() *Node {
	for _, c := range n.children {
		if c.typ == ElementNode {
			return c
		}
	}
	return nil
}

// Index returns the node's position in its parent's child list, or -1.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// GetAttribute returns the value of the named attribute.
func (n *Node) GetAttribute(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attribute returns the value of the named attribute, or "".
func (n *Node) Attribute(key string) string {
	v, _ := n.GetAttribute(key)
	return v
}

// HasAttribute reports whether the named attribute is present.
func (n *Node) HasAttribute(key string) bool {
	_, ok := n.GetAttribute(key)
	return ok
}

// SetAttribute sets or replaces the named attribute.
func (n *Node) SetAttribute(key, val string) {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs[i].Val = val
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Val: val})
}

// RemoveAttribute removes the named attribute if present.
func (n *Node) RemoveAttribute(key string) {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Attributes returns a copy of the node's attributes in document order.
func (n *Node) Attributes() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// HasClass reports whether the class attribute contains name.
func (n *Node) HasClass(name string) bool {
	for _, c := range strings.Fields(n.Attribute("class")) {
		if c == name {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.typ == TextNode || n.typ == CommentNode {
		return n.data
	}
	var sb strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.children {
			switch c.typ {
			case TextNode:
				sb.WriteString(c.data)
			case ElementNode, FragmentNode:
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}

// Root returns the topmost ancestor without crossing isolated boundaries.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// ComposedParent returns the parent, crossing from a shadow root to its host.
func (n *Node) ComposedParent() *Node {
	if n.parent != nil {
		return n.parent
	}
	if n.typ == ShadowRootNode {
		return n.host
	}
	return nil
}

// IsConnected reports whether the node is part of its document's live tree,
// crossing isolated boundaries on the way up.
func (n *Node) IsConnected() bool {
	cur := n
	for {
		next := cur.ComposedParent()
		if next == nil {
			return cur.typ == DocumentNode && cur == n.doc.root
		}
		cur = next
	}
}

// IsInert reports whether the node lives inside a template's content.
func (n *Node) IsInert() bool {
	cur := n
	for {
		if cur.templateOwner != nil {
			return true
		}
		next := cur.ComposedParent()
		if next == nil {
			return false
		}
		cur = next
	}
}

// Contains reports whether other is n or a light-tree descendant of n.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Address returns the node's position as a comparable document path. Nodes
// outside the live tree get a path relative to their detached root.
func (n *Node) Address() *nodeid.Address {
	var rev []nodeid.PathSegment
	cur := n
	for {
		switch {
		case cur.typ == ShadowRootNode && cur.host != nil:
			rev = append(rev, nodeid.NewShadowSegment())
			cur = cur.host
			continue
		case cur.parent == nil:
		default:
			rev = append(rev, nodeid.NewPathSegment(segmentName(cur), cur.Index()))
			cur = cur.parent
			continue
		}
		break
	}

	addr := &nodeid.Address{Path: make([]nodeid.PathSegment, len(rev))}
	for i, seg := range rev {
		addr.Path[len(rev)-1-i] = seg
	}
	return addr
}

// NodeAt returns the node at addr inside d's live tree, or nil when the
// path leads nowhere or names a different node than the one found.
func (d *Document) NodeAt(addr *nodeid.Address) *Node {
	if addr == nil {
		return nil
	}
	cur := d.root
	for _, seg := range addr.Path {
		if seg.IsShadow() {
			if cur = cur.shadow; cur == nil {
				return nil
			}
			continue
		}
		if seg.Index >= len(cur.children) {
			return nil
		}
		cur = cur.children[seg.Index]
		if segmentName(cur) != seg.Name {
			return nil
		}
	}
	return cur
}

func segmentName(n *Node) string {
	switch n.typ {
	case ElementNode:
		return n.tag
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	default:
		return "#node"
	}
}

// Walk visits n and its light-tree descendants in document order. Returning
// false from visit skips the visited node's children. Walk does not enter
// shadow roots or template content.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(visit)
	}
}

// ComposedWalk is Walk that also enters shadow roots, before the host's
// light children.
func (n *Node) ComposedWalk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	if n.shadow != nil {
		n.shadow.ComposedWalk(visit)
	}
	for _, c := range n.Children() {
		c.ComposedWalk(visit)
	}
}

// QueryAll returns the light-tree descendants of n (excluding n) that match.
func (n *Node) QueryAll(match func(*Node) bool) []*Node {
	var out []*Node
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			if match(d) {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// ElementsByTag returns the light-tree descendant elements with the given tag.
func (n *Node) ElementsByTag(tag string) []*Node {
	return n.QueryAll(func(d *Node) bool { return d.Is(tag) })
}
