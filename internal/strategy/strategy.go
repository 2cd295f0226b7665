package strategy

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/registry"
)

// ErrStructure is reported when a template cannot be rendered in its mode.
var ErrStructure = errors.New("unsupported template structure")

// StructureError describes a template whose shape does not fit its mode.
type StructureError struct {
	Tag      string
	Elements int
	Err      error
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: %v (template has %d top-level elements)", e.Tag, e.Err, e.Elements)
}

func (e *StructureError) Unwrap() error { return e.Err }

// Result is what Init produced.
type Result struct {
	// ContentRoot receives the instantiated template.
	ContentRoot *dom.Node
	// ScopeTarget is where the instance context is attached.
	ScopeTarget *dom.Node
	// Slots are the insertion points of the template, in document order.
	Slots []*dom.Node
}

// Strategy renders one instance.
type Strategy interface {
	Mode() registry.Mode
	// Init instantiates the template and decides where content and scope go.
	Init() (*Result, error)
	// Mount performs structural replacement. Only Unwrap does anything.
	Mount(copyAttrs bool) error
	// AppendContent inserts the instantiated template into the content root.
	AppendContent() error
	// Cleanup runs onDestroy whenever Target leaves the live tree.
	Cleanup(onDestroy func()) (cancel func())
	// Host is the element the instance was created for.
	Host() *dom.Node
	// Target is the element that represents the instance in the tree.
	Target() *dom.Node
}

// New returns the strategy for def's mode. sheets are applied to isolated
// boundaries.
func New(logger *slog.Logger, host *dom.Node, def *registry.Definition, sheets []string) Strategy {
	b := base{logger: logger.With("tag", def.Tag), host: host, def: def}
	switch def.Mode {
	case registry.Isolated:
		return &isolated{base: b, sheets: sheets}
	case registry.Unwrap:
		return &unwrap{base: b}
	default:
		return &inline{base: b}
	}
}

type base struct {
	logger  *slog.Logger
	host    *dom.Node
	def     *registry.Definition
	content *dom.Node
}

func (b *base) Host() *dom.Node   { return b.host }
func (b *base) Target() *dom.Node { return b.host }

func (b *base) Mount(bool) error { return nil }

func (b *base) instantiate() error {
	content, err := b.def.Instantiate(b.host.Document())
	if err != nil {
		return err
	}
	b.content = content
	return nil
}

func (b *base) cleanup(target *dom.Node, onDestroy func()) func() {
	return target.Document().OnRemoved(target, func(*dom.Node) { onDestroy() })
}

func slotsIn(root *dom.Node) []*dom.Node {
	return root.QueryAll(func(n *dom.Node) bool { return n.Is("slot") })
}

type inline struct{ base }

func (s *inline) Mode() registry.Mode { return registry.Inline }

func (s *inline) Init() (*Result, error) {
	if err := s.instantiate(); err != nil {
		return nil, err
	}
	return &Result{ContentRoot: s.host, ScopeTarget: s.host, Slots: slotsIn(s.content)}, nil
}

// AppendContent replaces the host's remaining children with the template.
// Template attributes and then host attributes are merged onto the
// template's outer element.
func (s *inline) AppendContent() error {
	if outer := s.content.FirstElementChild(); outer != nil {
		MergeAttributes(outer, s.def.Attrs)
		CopyAttributes(s.host, outer)
	}
	s.host.RemoveChildren()
	return s.host.AppendChild(s.content)
}

func (s *inline) Cleanup(onDestroy func()) func() { return s.cleanup(s.host, onDestroy) }

type isolated struct {
	base
	sheets []string
	shadow *dom.Node
}

func (s *isolated) Mode() registry.Mode { return registry.Isolated }

func (s *isolated) Init() (*Result, error) {
	if err := s.instantiate(); err != nil {
		return nil, err
	}
	s.shadow = s.host.AttachShadow()
	return &Result{ContentRoot: s.shadow, ScopeTarget: s.shadow, Slots: slotsIn(s.content)}, nil
}

// AppendContent fills the boundary with the style sheets and the template.
// Host attributes stay on the host.
func (s *isolated) AppendContent() error {
	s.shadow.RemoveChildren()
	if len(s.sheets) > 0 {
		style := s.host.Document().CreateElement("style")
		style.SetTextContent(strings.Join(s.sheets, "\n"))
		if err := s.shadow.AppendChild(style); err != nil {
			return err
		}
	}
	if outer := s.content.FirstElementChild(); outer != nil {
		MergeAttributes(outer, s.def.Attrs)
	}
	return s.shadow.AppendChild(s.content)
}

func (s *isolated) Cleanup(onDestroy func()) func() { return s.cleanup(s.host, onDestroy) }

type unwrap struct {
	base
	el *dom.Node
}

func (s *unwrap) Mode() registry.Mode { return registry.Unwrap }

func (s *unwrap) Init() (*Result, error) {
	if err := s.instantiate(); err != nil {
		return nil, err
	}
	elems := s.content.ElementChildren()
	switch len(elems) {
	case 0:
		return nil, &StructureError{Tag: s.def.Tag, Elements: 0, Err: ErrStructure}
	case 1:
	default:
		s.logger.Warn("Unwrap template has more than one top-level element; using the first.", "elements", len(elems))
	}
	s.el = elems[0]
	s.el.Remove()
	MergeAttributes(s.el, s.def.Attrs)
	return &Result{ContentRoot: s.el, ScopeTarget: s.el, Slots: slotsIn(s.el)}, nil
}

// Mount moves the host's remaining children to the end of the element and
// puts the element where the host was.
func (s *unwrap) Mount(copyAttrs bool) error {
	if s.el == nil {
		return &StructureError{Tag: s.def.Tag, Err: ErrStructure}
	}
	if copyAttrs {
		CopyAttributes(s.host, s.el)
	}
	for _, c := range s.host.Children() {
		if err := s.el.AppendChild(c); err != nil {
			return err
		}
	}
	if s.host.Parent() == nil {
		return fmt.Errorf("cannot unwrap %s: host is detached", s.def.Tag)
	}
	return s.host.ReplaceWith(s.el)
}

func (s *unwrap) AppendContent() error { return nil }

func (s *unwrap) Target() *dom.Node {
	if s.el != nil {
		return s.el
	}
	return s.host
}

func (s *unwrap) Cleanup(onDestroy func()) func() { return s.cleanup(s.Target(), onDestroy) }
