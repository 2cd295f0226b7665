package dom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFragment(t *testing.T, d *Document, markup string) *Node {
	t.Helper()
	f, err := d.ParseFragment(markup)
	require.NoError(t, err)
	return f
}

func TestParseFragment_TemplateContentIsInert(t *testing.T) {
	d := NewDocument()
	f := mustFragment(t, d, `<template><p class="a">hi</p></template>`)

	tpl := f.FirstElementChild()
	require.True(t, tpl.Is("template"))
	assert.Equal(t, 0, tpl.ChildCount(), "template children should move into content")
	require.NotNil(t, tpl.Content())
	p := tpl.Content().FirstElementChild()
	require.True(t, p.Is("p"))
	assert.True(t, p.IsInert())
	assert.Equal(t, "hi", p.TextContent())
}

func TestParseFragment_KeepsDirectiveAttributes(t *testing.T) {
	d := NewDocument()
	f := mustFragment(t, d, `<button @click="n++" :class="c" x-on:keyup="k()">x</button>`)
	b := f.FirstElementChild()

	keys := []string{}
	for _, a := range b.Attributes() {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"@click", ":class", "x-on:keyup"}, keys)
}

func TestLifecycle_ConnectOrderAndUpgrade(t *testing.T) {
	d := NewDocument()
	var events []string
	require.NoError(t, d.Define("x-a", Lifecycle{
		Construct:    func(n *Node) { events = append(events, "construct:"+n.Attribute("id")) },
		Connected:    func(n *Node) { events = append(events, "connect:"+n.Attribute("id")) },
		Disconnected: func(n *Node) { events = append(events, "disconnect:"+n.Attribute("id")) },
	}))

	f := mustFragment(t, d, `<x-a id="1"><x-a id="2"></x-a></x-a><x-a id="3"></x-a>`)
	assert.Empty(t, events, "parsed elements are not constructed until connected")

	require.NoError(t, d.Body().AppendChild(f))
	assert.Equal(t, []string{
		"construct:1", "connect:1",
		"construct:2", "connect:2",
		"construct:3", "connect:3",
	}, events)

	events = nil
	first := d.Body().FirstElementChild()
	first.Remove()
	assert.Equal(t, []string{"disconnect:1", "disconnect:2"}, events)
}

func TestDefine_UpgradesExistingElements(t *testing.T) {
	d := NewDocument()
	require.NoError(t, d.Body().AppendChild(mustFragment(t, d, `<x-late></x-late>`)))

	var connected int
	require.NoError(t, d.Define("x-late", Lifecycle{Connected: func(*Node) { connected++ }}))
	assert.Equal(t, 1, connected)

	err := d.Define("x-late", Lifecycle{})
	assert.ErrorIs(t, err, ErrAlreadyDefined)
}

func TestMove_FiresDisconnectThenConnect(t *testing.T) {
	d := NewDocument()
	var events []string
	require.NoError(t, d.Define("x-m", Lifecycle{
		Connected:    func(*Node) { events = append(events, "c") },
		Disconnected: func(*Node) { events = append(events, "d") },
	}))
	require.NoError(t, d.Body().AppendChild(mustFragment(t, d, `<div id="a"><x-m></x-m></div><div id="b"></div>`)))
	a, b := d.Body().ElementChildren()[0], d.Body().ElementChildren()[1]

	events = nil
	require.NoError(t, b.AppendChild(a.FirstElementChild()))
	assert.Equal(t, []string{"d", "c"}, events)
}

func TestShadowRoot_ConnectivityAndAddress(t *testing.T) {
	d := NewDocument()
	host := d.CreateElement("x-host")
	require.NoError(t, d.Body().AppendChild(host))

	root := host.AttachShadow()
	assert.Same(t, root, host.AttachShadow())
	inner := d.CreateElement("span")
	require.NoError(t, root.AppendChild(inner))

	assert.True(t, inner.IsConnected())
	assert.Equal(t, "html[0].body[1].x-host[0].#shadow.span[0]", inner.Address().String())
	assert.False(t, d.Body().Contains(inner), "light-tree containment stops at the boundary")

	assert.Same(t, inner, d.NodeAt(inner.Address()))
	assert.Same(t, host, d.NodeAt(host.Address()))
	wrongName := host.Address()
	wrongName.Path[len(wrongName.Path)-1].Name = "x-other"
	assert.Nil(t, d.NodeAt(wrongName))
	beyond := inner.Address()
	beyond.Path[len(beyond.Path)-1].Index = 5
	assert.Nil(t, d.NodeAt(beyond))
}

func TestInsertBefore_RejectsCycles(t *testing.T) {
	d := NewDocument()
	outer := d.CreateElement("div")
	inner := d.CreateElement("div")
	require.NoError(t, outer.AppendChild(inner))

	err := inner.AppendChild(outer)
	assert.ErrorIs(t, err, ErrHierarchy)
}

func TestReplaceWith_KeepsPosition(t *testing.T) {
	d := NewDocument()
	require.NoError(t, d.Body().AppendChild(mustFragment(t, d, `<i></i><x-old></x-old><b></b>`)))
	old := d.Body().ElementChildren()[1]

	repl := d.CreateElement("div")
	require.NoError(t, old.ReplaceWith(repl))

	assert.Equal(t, `<i></i><div></div><b></b>`, d.Body().InnerHTML())
	assert.Nil(t, old.Parent())
}

func TestOnRemoved_FiresForAncestorRemovalAndCancels(t *testing.T) {
	d := NewDocument()
	require.NoError(t, d.Body().AppendChild(mustFragment(t, d, `<section><p></p></section>`)))
	section := d.Body().FirstElementChild()
	p := section.FirstElementChild()

	var fired int
	cancel := d.OnRemoved(p, func(*Node) { fired++ })
	section.Remove()
	assert.Equal(t, 1, fired)

	require.NoError(t, d.Body().AppendChild(section))
	cancel()
	section.Remove()
	assert.Equal(t, 1, fired)
}

func TestCloneNode_CopiesContentNotState(t *testing.T) {
	d := NewDocument()
	require.NoError(t, d.Define("x-c", Lifecycle{}))
	f := mustFragment(t, d, `<template><x-c a="1">t</x-c></template>`)
	tpl := f.FirstElementChild()

	clone := tpl.Content().CloneNode(true)
	c := clone.FirstElementChild()
	assert.Equal(t, "1", c.Attribute("a"))
	assert.False(t, c.IsUpgraded())
	assert.NotSame(t, tpl.Content().FirstElementChild(), c)
}

func TestRender_DeclarativeShadowRoot(t *testing.T) {
	d := NewDocument()
	host := d.CreateElement("x-card")
	host.SetAttribute("title", "T")
	require.NoError(t, d.Body().AppendChild(host))
	root := host.AttachShadow()
	require.NoError(t, root.AppendChild(mustFragment(t, d, `<div class="card"><slot></slot></div>`)))
	require.NoError(t, host.AppendChild(d.CreateText("light")))

	var buf bytes.Buffer
	require.NoError(t, d.Render(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out,
		`<x-card title="T"><template shadowrootmode="open"><div class="card"><slot></slot></div></template>light</x-card>`)
}

func TestParseDocument_RoundTrip(t *testing.T) {
	d, err := ParseDocument(strings.NewReader(`<!DOCTYPE html><html><head><title>t</title></head><body><p>a</p></body></html>`))
	require.NoError(t, err)
	require.NotNil(t, d.Body())
	assert.Equal(t, "<p>a</p>", d.Body().InnerHTML())
	assert.True(t, d.Body().FirstElementChild().IsConnected())
}
