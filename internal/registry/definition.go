package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/setup"
	"github.com/specialistvlad/compositor/internal/tagname"
)

// Mode selects how a component's content relates to its host element.
type Mode int

const (
	// Inline renders content as children of the host.
	Inline Mode = iota
	// Isolated renders content inside an encapsulated boundary on the host.
	Isolated
	// Unwrap replaces the host with the template's single top-level element.
	Unwrap
)

// Template attributes selecting a Mode. MarkerLight spells out the default.
const (
	MarkerUnwrap  = "unwrap"
	MarkerIsolate = "isolate"
	MarkerShadow  = "shadow"
	MarkerLight   = "light"
)

func (m Mode) String() string {
	switch m {
	case Isolated:
		return "isolated"
	case Unwrap:
		return "unwrap"
	default:
		return "inline"
	}
}

func modeOf(template *dom.Node) Mode {
	switch {
	case template.HasAttribute(MarkerUnwrap):
		return Unwrap
	case template.HasAttribute(MarkerIsolate), template.HasAttribute(MarkerShadow):
		return Isolated
	default:
		return Inline
	}
}

func isMarker(key string) bool {
	switch key {
	case MarkerUnwrap, MarkerIsolate, MarkerShadow, MarkerLight:
		return true
	}
	return false
}

// Definition is an immutable registered component.
type Definition struct {
	Tag  string
	Mode Mode
	// Markup is the template content.
	Markup string
	// Attrs are the template element's own attributes, mode markers excluded.
	Attrs []dom.Attr
	// Setup is the source of the setup block; empty when none was given.
	Setup   string
	Program *goja.Program

	templates sync.Map // *dom.Document -> *dom.Node
}

func newDefinition(tag, markup, setupCode string) (*Definition, error) {
	def := &Definition{Tag: tag, Markup: markup, Setup: setupCode}

	frag, err := dom.NewDocument().ParseFragment(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	if t := soleTemplate(frag); t != nil {
		def.Mode = modeOf(t)
		def.Markup = t.InnerHTML()
		for _, a := range t.Attributes() {
			if !isMarker(a.Key) {
				def.Attrs = append(def.Attrs, a)
			}
		}
	}

	code := setupCode
	if strings.TrimSpace(code) == "" {
		code = setup.DefaultCode
	}
	if def.Program, err = setup.Compile(tag, code); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	return def, nil
}

// soleTemplate returns the <template> element when it is the only
// significant top-level node of frag.
func soleTemplate(frag *dom.Node) *dom.Node {
	var found *dom.Node
	for _, c := range frag.Children() {
		switch {
		case c.Type() == dom.TextNode && strings.TrimSpace(c.Data()) == "":
		case c.Type() == dom.CommentNode:
		case c.Is("template") && found == nil:
			found = c
		default:
			return nil
		}
	}
	return found
}

// Instantiate returns a fresh, detached fragment holding the template content
// owned by doc. The parsed template is cached per document.
func (d *Definition) Instantiate(doc *dom.Document) (*dom.Node, error) {
	if cached, ok := d.templates.Load(doc); ok {
		return cached.(*dom.Node).CloneNode(true), nil
	}
	frag, err := doc.ParseFragment(d.Markup)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate %s: %w", d.Tag, err)
	}
	actual, _ := d.templates.LoadOrStore(doc, frag)
	return actual.(*dom.Node).CloneNode(true), nil
}

// References returns the custom tag names used in the template, including
// inside nested templates, in first-seen order. The definition's own tag is
// excluded.
func (d *Definition) References() []string {
	return References(d.Tag, d.Markup)
}

// References returns the custom tag names used in markup other than tag, in
// first-seen order. Unparsable markup has no references.
func References(tag, markup string) []string {
	frag, err := dom.NewDocument().ParseFragment(markup)
	if err != nil {
		return nil
	}
	seen := map[string]bool{tag: true}
	var refs []string
	var visit func(n *dom.Node)
	visit = func(n *dom.Node) {
		n.Walk(func(el *dom.Node) bool {
			if !el.IsElement() {
				return true
			}
			if name := el.Tag(); tagname.IsCustom(name) && !seen[name] {
				seen[name] = true
				refs = append(refs, name)
			}
			if c := el.Content(); c != nil {
				visit(c)
			}
			return true
		})
	}
	visit(frag)
	return refs
}
