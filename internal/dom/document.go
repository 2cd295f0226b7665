package dom

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrAlreadyDefined is returned when a tag is given a second lifecycle.
	ErrAlreadyDefined = errors.New("tag already defined")
	// ErrHierarchy is returned for insertions that would break the tree shape.
	ErrHierarchy = errors.New("hierarchy request error")
)

// Lifecycle is the set of callbacks a custom element tag is bound to.
// Any callback may be nil.
type Lifecycle struct {
	// Construct runs once per element, the first time it is created or
	// connected while its tag is defined.
	Construct func(*Node)
	// Connected runs every time the element becomes part of the live tree.
	Connected func(*Node)
	// Disconnected runs every time the element leaves the live tree.
	Disconnected func(*Node)
}

type watcher struct {
	id int
	fn func(*Node)
}

// Document owns a tree of nodes and the custom element table for it.
type Document struct {
	nextID    NodeID
	nextWatch int
	root      *Node
	doctype   string

	defined  map[string]Lifecycle
	watchers map[*Node][]watcher
}

// NewDocument returns an empty document with an html/head/body skeleton.
func NewDocument() *Document {
	d := newBareDocument()
	html := d.newNode(ElementNode, "html", "")
	head := d.newNode(ElementNode, "head", "")
	body := d.newNode(ElementNode, "body", "")
	d.link(d.root, html, -1)
	d.link(html, head, -1)
	d.link(html, body, -1)
	d.doctype = "html"
	return d
}

func newBareDocument() *Document {
	d := &Document{
		defined:  make(map[string]Lifecycle),
		watchers: make(map[*Node][]watcher),
	}
	d.root = d.newNode(DocumentNode, "", "")
	return d
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// DocumentElement returns the <html> element, or nil.
func (d *Document) DocumentElement() *Node { return d.root.FirstElementChild() }

// Body returns the <body> element, or nil.
func (d *Document) Body() *Node { return d.child("body") }

// Head returns the <head> element, or nil.
func (d *Document) Head() *Node { return d.child("head") }

func (d *Document) child(tag string) *Node {
	html := d.DocumentElement()
	if html == nil {
		return nil
	}
	for _, c := range html.children {
		if c.Is(tag) {
			return c
		}
	}
	return nil
}

func (d *Document) newNode(typ NodeType, tag, data string) *Node {
	d.nextID++
	return &Node{id: d.nextID, typ: typ, tag: tag, data: data, doc: d}
}

// CreateElement returns a new detached element. Elements of a defined tag are
// constructed immediately.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(ElementNode, tag, "")
	if tag == "template" {
		n.content = d.newFragmentFor(n)
	}
	d.construct(n)
	return n
}

// CreateText returns a new detached text node.
func (d *Document) CreateText(data string) *Node {
	return d.newNode(TextNode, "", data)
}

// CreateComment returns a new detached comment node.
func (d *Document) CreateComment(data string) *Node {
	return d.newNode(CommentNode, "", data)
}

// CreateFragment returns a new empty fragment.
func (d *Document) CreateFragment() *Node {
	return d.newNode(FragmentNode, "", "")
}

func (d *Document) newFragmentFor(template *Node) *Node {
	f := d.newNode(FragmentNode, "", "")
	f.templateOwner = template
	return f
}

// Define binds a lifecycle to a tag. Elements of that tag already in the live
// tree are upgraded in document order.
func (d *Document) Define(tag string, lc Lifecycle) error {
	if _, ok := d.defined[tag]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDefined, tag)
	}
	d.defined[tag] = lc

	var pending []*Node
	d.root.ComposedWalk(func(n *Node) bool {
		if n.Is(tag) && !n.upgraded {
			pending = append(pending, n)
		}
		return true
	})
	for _, n := range pending {
		d.construct(n)
		if n.IsConnected() && lc.Connected != nil {
			lc.Connected(n)
		}
	}
	return nil
}

// Defined reports whether a lifecycle is bound to tag.
func (d *Document) Defined(tag string) bool {
	_, ok := d.defined[tag]
	return ok
}

// DefinedTags returns every defined tag, sorted.
func (d *Document) DefinedTags() []string {
	out := make([]string, 0, len(d.defined))
	for t := range d.defined {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsUpgraded reports whether the element has been constructed as a custom element.
func (n *Node) IsUpgraded() bool { return n.upgraded }

func (d *Document) construct(n *Node) {
	if n.upgraded || n.typ != ElementNode {
		return
	}
	lc, ok := d.defined[n.tag]
	if !ok {
		return
	}
	n.upgraded = true
	if lc.Construct != nil {
		lc.Construct(n)
	}
}

// OnRemoved registers fn to run whenever n leaves the live tree, either by
// itself or with an ancestor. The returned function cancels the registration.
func (d *Document) OnRemoved(n *Node, fn func(*Node)) (cancel func()) {
	d.nextWatch++
	id := d.nextWatch
	d.watchers[n] = append(d.watchers[n], watcher{id: id, fn: fn})
	return func() {
		ws := d.watchers[n]
		for i, w := range ws {
			if w.id == id {
				ws = append(ws[:i], ws[i+1:]...)
				break
			}
		}
		if len(ws) == 0 {
			delete(d.watchers, n)
		} else {
			d.watchers[n] = ws
		}
	}
}

// notifyConnected constructs and connects every custom element in the
// subtree rooted at n. The list is gathered up front; callbacks that detach
// later entries cause those entries to be skipped.
func (d *Document) notifyConnected(n *Node) {
	var pending []*Node
	n.ComposedWalk(func(c *Node) bool {
		if c.typ == ElementNode {
			if _, ok := d.defined[c.tag]; ok {
				pending = append(pending, c)
			}
		}
		return true
	})
	for _, c := range pending {
		if !c.IsConnected() {
			continue
		}
		d.construct(c)
		if lc := d.defined[c.tag]; lc.Connected != nil {
			lc.Connected(c)
		}
	}
}

func (d *Document) collectSubtree(n *Node) []*Node {
	var all []*Node
	n.ComposedWalk(func(c *Node) bool {
		all = append(all, c)
		return true
	})
	return all
}

// notifyDisconnected runs disconnect callbacks and removal watchers for a
// subtree that was just detached from the live tree.
func (d *Document) notifyDisconnected(nodes []*Node) {
	for _, c := range nodes {
		if c.typ != ElementNode || !c.upgraded {
			continue
		}
		if lc := d.defined[c.tag]; lc.Disconnected != nil {
			lc.Disconnected(c)
		}
	}
	for _, c := range nodes {
		ws := d.watchers[c]
		if len(ws) == 0 {
			continue
		}
		snapshot := make([]watcher, len(ws))
		copy(snapshot, ws)
		for _, w := range snapshot {
			w.fn(c)
		}
	}
}
