package slot

import (
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/scope"
)

// NameAttr names a slot, and on caller content selects the slot it goes to.
const NameAttr = "name"

// SlotAttr is set on caller content to select a named slot.
const SlotAttr = "slot"

// walk visits nodes and their descendants in document order. Descendants of
// nodes for which stop reports true are skipped. A template placeholder is
// not visited itself: its inert content fragment and that fragment's
// descendants are visited in its place.
func walk(nodes []*dom.Node, stop func(*dom.Node) bool, visit func(*dom.Node)) {
	var rec func(n *dom.Node)
	rec = func(n *dom.Node) {
		if content := n.Content(); content != nil {
			visit(content)
			for _, c := range content.Children() {
				rec(c)
			}
			return
		}
		visit(n)
		if n.IsElement() && stop != nil && stop(n) {
			return
		}
		for _, c := range n.Children() {
			rec(c)
		}
	}
	for _, n := range nodes {
		rec(n)
	}
}

// Mark records owner as the author of nodes and their descendants. Existing
// marks are kept unless override is set. It returns the number of nodes
// marked; marking for a destroyed owner stops with scope.ErrOwnerDestroyed.
func Mark(r *scope.Resolver, owner scope.Owner, nodes []*dom.Node, stop func(*dom.Node) bool, override bool) (int, error) {
	if owner.Destroyed() {
		return 0, scope.ErrOwnerDestroyed
	}
	marked := 0
	var err error
	walk(nodes, stop, func(n *dom.Node) {
		if err != nil {
			return
		}
		var written bool
		if written, err = r.Marks().Mark(n, owner, override); written {
			marked++
		}
	})
	return marked, err
}

// Collect returns nodes and their descendants as Mark visits them.
func Collect(nodes []*dom.Node, stop func(*dom.Node) bool) []*dom.Node {
	var out []*dom.Node
	walk(nodes, stop, func(n *dom.Node) { out = append(out, n) })
	return out
}

// Distribute moves content into slots. Elements carrying a slot attribute go
// to the first slot of that name; everything else, text included, goes to
// the first unnamed slot. Each slot is replaced by what it received, or by
// its fallback children when it received nothing. Content no slot accepted
// is returned in order and left where it was.
func Distribute(slots []*dom.Node, content []*dom.Node) ([]*dom.Node, error) {
	var def *dom.Node
	named := make(map[string]*dom.Node)
	for _, s := range slots {
		name := s.Attribute(NameAttr)
		if name == "" {
			if def == nil {
				def = s
			}
			continue
		}
		if _, ok := named[name]; !ok {
			named[name] = s
		}
	}

	assigned := make(map[*dom.Node][]*dom.Node)
	var leftover []*dom.Node
	for _, n := range content {
		target := def
		if n.IsElement() {
			if name, ok := n.GetAttribute(SlotAttr); ok && name != "" {
				target = named[name]
			}
		}
		if target == nil {
			leftover = append(leftover, n)
			continue
		}
		assigned[target] = append(assigned[target], n)
	}

	for _, s := range slots {
		nodes, ok := assigned[s]
		if !ok {
			nodes = s.Children()
		}
		if err := replace(s, nodes); err != nil {
			return leftover, err
		}
	}
	return leftover, nil
}

func replace(s *dom.Node, nodes []*dom.Node) error {
	parent := s.Parent()
	if parent == nil {
		return nil
	}
	for _, n := range nodes {
		if err := parent.InsertBefore(n, s); err != nil {
			return err
		}
	}
	return parent.RemoveChild(s)
}
