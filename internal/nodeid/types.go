// internal/nodeid/types.go
package nodeid

// ShadowSegmentName names the segment that crosses into a host's isolated
// boundary. It carries ShadowIndex so it sorts before the host's children.
const ShadowSegmentName = "#shadow"

// ShadowIndex is the index used by the shadow segment.
const ShadowIndex = -1

// PathSegment represents a single level of an address path, e.g., `name[index]`.
type PathSegment struct {
	Name  string
	Index int
}

// NewPathSegment creates a segment for the child at index under its parent.
func NewPathSegment(name string, index int) PathSegment {
	return PathSegment{Name: name, Index: index}
}

// NewShadowSegment creates the segment that enters an isolated boundary.
func NewShadowSegment() PathSegment {
	return PathSegment{Name: ShadowSegmentName, Index: ShadowIndex}
}

// IsShadow reports whether the segment crosses into an isolated boundary.
func (ps PathSegment) IsShadow() bool {
	return ps.Name == ShadowSegmentName
}

// Address is the structured position of a node, root first.
type Address struct {
	Path []PathSegment
}
