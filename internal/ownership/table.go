package ownership

import (
	"errors"
	"sync"

	"github.com/specialistvlad/compositor/internal/dom"
)

// ErrOwnerDestroyed is returned when marking on behalf of a destroyed owner.
var ErrOwnerDestroyed = errors.New("owner already destroyed")

// Owner is anything that can author content.
type Owner interface {
	Destroyed() bool
}

// Table maps node identifiers to the Owner that authored them.
//
// It uses sync.Map: marks for independent nodes are written and read
// without a shared lock, and the key space only grows during a session.
type Table struct {
	marks sync.Map // Key: dom.NodeID, Value: Owner
}

// New creates an empty table.
func New() *Table {
	return &Table{}
}

// Mark records owner as the author of n. An existing mark is kept unless
// override is set. It reports whether the mark was written.
func (t *Table) Mark(n *dom.Node, owner Owner, override bool) (bool, error) {
	if owner == nil || owner.Destroyed() {
		return false, ErrOwnerDestroyed
	}
	if override {
		t.marks.Store(n.ID(), owner)
		return true, nil
	}
	_, loaded := t.marks.LoadOrStore(n.ID(), owner)
	return !loaded, nil
}

// Owner returns the author of n, if it has been marked.
func (t *Table) Owner(n *dom.Node) (Owner, bool) {
	v, ok := t.marks.Load(n.ID())
	if !ok {
		return nil, false
	}
	return v.(Owner), true
}

// Forget drops the mark on n.
func (t *Table) Forget(n *dom.Node) {
	t.marks.Delete(n.ID())
}

// ForgetOwner drops every mark held by owner and returns how many there were.
func (t *Table) ForgetOwner(owner Owner) int {
	dropped := 0
	t.marks.Range(func(k, v any) bool {
		if v == owner {
			t.marks.Delete(k)
			dropped++
		}
		return true
	})
	return dropped
}

// Len returns the number of marks held.
func (t *Table) Len() int {
	n := 0
	t.marks.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
