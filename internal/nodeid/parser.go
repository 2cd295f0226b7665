// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads the canonical form produced by Address.String, e.g.
// `html[0].body[1].ui-card[0].#shadow.div[2]`.
func Parse(raw string) (*Address, error) {
	if raw == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}

	parts := strings.Split(raw, ".")
	addr := &Address{Path: make([]PathSegment, 0, len(parts))}
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", raw, err)
		}
		addr.Path = append(addr.Path, seg)
	}
	return addr, nil
}

// parseSegment reads one `name[index]` segment or the shadow marker.
func parseSegment(s string) (PathSegment, error) {
	switch {
	case s == "":
		return PathSegment{}, fmt.Errorf("empty segment")
	case s == ShadowSegmentName:
		return NewShadowSegment(), nil
	}

	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return PathSegment{}, fmt.Errorf("segment %q is not of the form name[index]", s)
	}
	name, digits := s[:open], s[open+1:len(s)-1]
	if strings.HasPrefix(name, "-") || strings.ContainsAny(name, "[]") {
		return PathSegment{}, fmt.Errorf("invalid segment name %q", name)
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 || digits[0] == '+' {
		return PathSegment{}, fmt.Errorf("invalid index in segment %q", s)
	}
	return NewPathSegment(name, index), nil
}
