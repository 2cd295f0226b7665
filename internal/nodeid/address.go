// internal/nodeid/address.go
package nodeid

import (
	"fmt"
	"reflect"
	"strings"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if !segment.IsShadow() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return reflect.DeepEqual(a.Path, other.Path)
}

// Depth returns the number of segments in the address.
func (a *Address) Depth() int {
	if a == nil {
		return 0
	}
	return len(a.Path)
}

// IsAncestorOf reports whether a is a strict prefix of other.
func (a *Address) IsAncestorOf(other *Address) bool {
	if a == nil || other == nil || len(a.Path) >= len(other.Path) {
		return false
	}
	for i, seg := range a.Path {
		if seg.Index != other.Path[i].Index {
			return false
		}
	}
	return true
}

// Compare orders two addresses in document order. It returns a negative
// number when a precedes b, zero when they are the same position and a
// positive number otherwise. An ancestor precedes all of its descendants.
// A nil address sorts after every non-nil address.
func Compare(a, b *Address) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	n := min(len(a.Path), len(b.Path))
	for i := 0; i < n; i++ {
		if d := a.Path[i].Index - b.Path[i].Index; d != 0 {
			return d
		}
	}
	return len(a.Path) - len(b.Path)
}
