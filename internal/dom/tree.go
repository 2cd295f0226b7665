package dom

import "fmt"

// AttachShadow gives the element an isolated boundary and returns its root.
// Calling it twice returns the existing root.
func (n *Node) AttachShadow() *Node {
	if n.shadow != nil {
		return n.shadow
	}
	root := n.doc.newNode(ShadowRootNode, "", "")
	root.host = n
	n.shadow = root
	return root
}

// AppendChild inserts child as the last child of n.
func (n *Node) AppendChild(child *Node) error {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child into n before ref. A nil ref appends. Inserting
// a fragment moves its children instead. A child that already has a parent is
// removed from it first, firing disconnect notifications.
func (n *Node) InsertBefore(child, ref *Node) error {
	if err := n.checkInsert(child, ref); err != nil {
		return err
	}

	var moving []*Node
	if child.typ == FragmentNode {
		moving = child.Children()
		for _, c := range moving {
			child.doc.unlink(c)
		}
	} else {
		if child.parent != nil {
			child.parent.removeChild(child)
		}
		moving = []*Node{child}
	}

	at := -1
	if ref != nil {
		at = ref.Index()
	}
	for _, c := range moving {
		n.doc.link(n, c, at)
		if at >= 0 {
			at++
		}
	}

	if n.IsConnected() {
		for _, c := range moving {
			n.doc.notifyConnected(c)
		}
	}
	return nil
}

func (n *Node) checkInsert(child, ref *Node) error {
	switch {
	case child == nil:
		return fmt.Errorf("%w: nil child", ErrHierarchy)
	case child.doc != n.doc:
		return fmt.Errorf("%w: node belongs to another document", ErrHierarchy)
	case child.typ == DocumentNode || child.typ == ShadowRootNode:
		return fmt.Errorf("%w: cannot insert a root node", ErrHierarchy)
	case n.typ == TextNode || n.typ == CommentNode:
		return fmt.Errorf("%w: %s cannot have children", ErrHierarchy, segmentName(n))
	case ref != nil && ref.parent != n:
		return fmt.Errorf("%w: reference node is not a child", ErrHierarchy)
	}
	for cur := n; cur != nil; cur = cur.ComposedParent() {
		if cur == child {
			return fmt.Errorf("%w: cannot insert a node into itself", ErrHierarchy)
		}
	}
	return nil
}

// RemoveChild detaches child from n.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || child.parent != n {
		return fmt.Errorf("%w: not a child", ErrHierarchy)
	}
	n.removeChild(child)
	return nil
}

// Remove detaches n from its parent. It is a no-op for parentless nodes.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.removeChild(n)
	}
}

func (n *Node) removeChild(child *Node) {
	wasConnected := child.IsConnected()
	var subtree []*Node
	if wasConnected {
		subtree = n.doc.collectSubtree(child)
	}
	n.doc.unlink(child)
	if wasConnected {
		n.doc.notifyDisconnected(subtree)
	}
}

// ReplaceWith puts replacement where n is. The old node is removed first,
// then the replacement is inserted.
func (n *Node) ReplaceWith(replacement *Node) error {
	parent := n.parent
	if parent == nil {
		return fmt.Errorf("%w: node has no parent", ErrHierarchy)
	}
	if replacement == n {
		return nil
	}
	if replacement.parent == parent && replacement.Index() == n.Index()+1 {
		n.Remove()
		return nil
	}

	// Anchor past n so the insertion point survives n's removal.
	var next *Node
	if i := n.Index(); i+1 < len(parent.children) {
		next = parent.children[i+1]
		if next == replacement {
			next = nil
		}
	}
	if err := parent.checkInsert(replacement, nil); err != nil {
		return err
	}
	n.Remove()
	return parent.InsertBefore(replacement, next)
}

// RemoveChildren detaches every child of n, in order.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.removeChild(n.children[0])
	}
}

// SetTextContent replaces all children of n with a single text node.
func (n *Node) SetTextContent(s string) {
	if n.typ == TextNode || n.typ == CommentNode {
		n.data = s
		return
	}
	n.RemoveChildren()
	if s != "" {
		_ = n.AppendChild(n.doc.CreateText(s))
	}
}

// CloneNode copies n. Deep clones copy descendants and template content.
// Isolated boundaries and custom element state are never copied.
func (n *Node) CloneNode(deep bool) *Node {
	c := n.doc.newNode(n.typ, n.tag, n.data)
	c.attrs = n.Attributes()
	if n.content != nil {
		c.content = n.doc.newFragmentFor(c)
		if deep {
			for _, k := range n.content.children {
				n.doc.link(c.content, k.CloneNode(true), -1)
			}
		}
	}
	if deep {
		for _, k := range n.children {
			n.doc.link(c, k.CloneNode(true), -1)
		}
	}
	return c
}

func (d *Document) link(parent, child *Node, at int) {
	child.parent = parent
	if at < 0 || at >= len(parent.children) {
		parent.children = append(parent.children, child)
		return
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[at+1:], parent.children[at:])
	parent.children[at] = child
}

func (d *Document) unlink(child *Node) {
	parent := child.parent
	if parent == nil {
		return
	}
	if i := child.Index(); i >= 0 {
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
	}
	child.parent = nil
}
