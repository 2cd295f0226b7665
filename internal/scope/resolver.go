package scope

import (
	"errors"
	"log/slog"

	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/ownership"
	"github.com/specialistvlad/compositor/internal/reactive"
)

// ErrOwnerDestroyed marks the silent path taken for content whose author is
// already gone.
var ErrOwnerDestroyed = ownership.ErrOwnerDestroyed

// Owner is a component instance as seen by the resolver.
type Owner interface {
	ownership.Owner
	// ContextFor returns the context n should evaluate against, given that
	// this owner authored it.
	ContextFor(n *dom.Node) reactive.Stack
}

// Unbinder removes the live bindings of a single node.
type Unbinder interface {
	Unbind(n *dom.Node)
}

// Resolver tracks attached contexts and ownership marks for one document.
type Resolver struct {
	logger   *slog.Logger
	marks    *ownership.Table
	attached map[*dom.Node]reactive.Stack
}

// New returns a resolver over the given mark table.
func New(logger *slog.Logger, marks *ownership.Table) *Resolver {
	if marks == nil {
		marks = ownership.New()
	}
	return &Resolver{
		logger:   logger,
		marks:    marks,
		attached: make(map[*dom.Node]reactive.Stack),
	}
}

// Marks exposes the ownership table.
func (r *Resolver) Marks() *ownership.Table { return r.marks }

// Mark records owner as the author of n. Marking for a destroyed owner is
// skipped and reported as ErrOwnerDestroyed.
func (r *Resolver) Mark(n *dom.Node, owner Owner, override bool) error {
	_, err := r.marks.Mark(n, owner, override)
	return err
}

// OwnerOf returns the author recorded for n.
func (r *Resolver) OwnerOf(n *dom.Node) (Owner, bool) {
	o, ok := r.marks.Owner(n)
	if !ok {
		return nil, false
	}
	owner, ok := o.(Owner)
	return owner, ok
}

// Attach makes s the context of n and its unattached descendants.
func (r *Resolver) Attach(n *dom.Node, s reactive.Stack) {
	r.attached[n] = s
}

// Detach removes the context attached directly to n.
func (r *Resolver) Detach(n *dom.Node) {
	delete(r.attached, n)
}

// Attached returns the context attached directly to n.
func (r *Resolver) Attached(n *dom.Node) (reactive.Stack, bool) {
	s, ok := r.attached[n]
	return s, ok
}

// ContextOf returns the context n evaluates against: the one attached to n
// or to its nearest composed ancestor. A template placeholder takes the
// context attached to its content. Unattached trees get an empty stack.
func (r *Resolver) ContextOf(n *dom.Node) reactive.Stack {
	for cur := n; cur != nil; cur = cur.ComposedParent() {
		if s, ok := r.attached[cur]; ok {
			return s
		}
		if content := cur.Content(); content != nil {
			if s, ok := r.attached[content]; ok {
				return s
			}
		}
		if owner := cur.TemplateOwner(); owner != nil {
			cur = owner
			if s, ok := r.attached[cur]; ok {
				return s
			}
		}
	}
	return nil
}

// Rescope re-attaches every marked node whose current context differs from
// the one its author implies. Stale bindings are removed through u before
// the new context is attached. Already correct nodes are left alone, so
// calling it twice is harmless. It returns the number of nodes changed.
func (r *Resolver) Rescope(nodes []*dom.Node, u Unbinder) int {
	changed := 0
	for _, n := range nodes {
		owner, ok := r.OwnerOf(n)
		if !ok {
			continue
		}
		if owner.Destroyed() {
			r.logger.Debug("Skipping rescope for content of destroyed owner.", "node", n.Address().String(), "error", ErrOwnerDestroyed)
			continue
		}
		implied := owner.ContextFor(n)
		if current := r.ContextOf(n); current.Same(implied) {
			// Pin it so later moves keep the same context.
			if _, direct := r.attached[n]; !direct {
				r.attached[n] = implied
			}
			continue
		}
		if u != nil {
			u.Unbind(n)
			if tpl := n.TemplateOwner(); tpl != nil {
				u.Unbind(tpl)
			}
		}
		r.Attach(n, implied)
		changed++
	}
	return changed
}

// Forget drops the attachments and marks held for the subtree rooted at n.
func (r *Resolver) Forget(n *dom.Node) {
	n.ComposedWalk(func(c *dom.Node) bool {
		delete(r.attached, c)
		r.marks.Forget(c)
		if content := c.Content(); content != nil {
			delete(r.attached, content)
			r.marks.Forget(content)
		}
		return true
	})
}

// IsOwnerDestroyed reports whether err is the silent destroyed-owner case.
func IsOwnerDestroyed(err error) bool {
	return errors.Is(err, ErrOwnerDestroyed)
}
