package dom

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render writes the whole document as HTML. Isolated boundaries are written
// as declarative <template shadowrootmode="open"> children of their hosts.
func (d *Document) Render(w io.Writer) error {
	if d.doctype != "" {
		if _, err := fmt.Fprintf(w, "<!DOCTYPE %s>", d.doctype); err != nil {
			return err
		}
	}
	for _, c := range d.root.children {
		if err := html.Render(w, exportNode(c)); err != nil {
			return fmt.Errorf("failed to render document: %w", err)
		}
	}
	return nil
}

// OuterHTML returns the markup of n itself.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	switch n.typ {
	case FragmentNode, DocumentNode, ShadowRootNode:
		return n.InnerHTML()
	}
	_ = html.Render(&buf, exportNode(n))
	return buf.String()
}

// InnerHTML returns the markup of n's children. For a template it returns
// the markup of its content.
func (n *Node) InnerHTML() string {
	src := n
	if n.content != nil {
		src = n.content
	}
	var buf bytes.Buffer
	for _, c := range src.children {
		_ = html.Render(&buf, exportNode(c))
	}
	return buf.String()
}

func exportNode(n *Node) *html.Node {
	var hn *html.Node
	switch n.typ {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.data}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.data}
	case ElementNode:
		hn = &html.Node{Type: html.ElementNode, Data: n.tag, DataAtom: atom.Lookup([]byte(n.tag))}
		for _, a := range n.attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
	default:
		// Fragments render as a transparent wrapper; callers only pass
		// element or character nodes here.
		hn = &html.Node{Type: html.DocumentNode}
	}

	if n.shadow != nil {
		decl := &html.Node{
			Type:     html.ElementNode,
			Data:     "template",
			DataAtom: atom.Template,
			Attr:     []html.Attribute{{Key: "shadowrootmode", Val: "open"}},
		}
		for _, c := range n.shadow.children {
			decl.AppendChild(exportNode(c))
		}
		hn.AppendChild(decl)
	}

	src := n
	if n.content != nil {
		src = n.content
	}
	for _, c := range src.children {
		hn.AppendChild(exportNode(c))
	}
	return hn
}
