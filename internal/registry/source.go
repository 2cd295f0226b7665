package registry

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/compositor/internal/dom"
)

// Source is a component source file split into its parts.
type Source struct {
	Markup string
	Setup  string
}

// ParseSource splits a component source fragment into its template and its
// setup block. The template is the first <template> element, or the first
// element when there is none. At most one <script setup> is allowed.
func ParseSource(source string) (Source, error) {
	frag, err := dom.NewDocument().ParseFragment(source)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	var (
		src         Source
		template    *dom.Node
		first       *dom.Node
		setupBlocks int
	)
	for _, el := range frag.ElementChildren() {
		switch {
		case el.Is("script") && el.HasAttribute("setup"):
			setupBlocks++
			src.Setup = el.TextContent()
		case el.Is("template"):
			if template == nil {
				template = el
			}
		case first == nil && !el.Is("script"):
			first = el
		}
	}
	if setupBlocks > 1 {
		return Source{}, fmt.Errorf("%w: more than one setup block", ErrInvalidSource)
	}
	switch {
	case template != nil:
		src.Markup = template.OuterHTML()
	case first != nil:
		src.Markup = first.OuterHTML()
	case strings.TrimSpace(src.Setup) == "":
		return Source{}, fmt.Errorf("%w: no template", ErrInvalidSource)
	}
	return src, nil
}
