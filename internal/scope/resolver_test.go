package scope

import (
	"io"
	"log/slog"
	"testing"

	"github.com/specialistvlad/compositor/internal/dom"
	"github.com/specialistvlad/compositor/internal/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOwner struct {
	ctx       reactive.Stack
	destroyed bool
}

func (o *testOwner) Destroyed() bool                     { return o.destroyed }
func (o *testOwner) ContextFor(*dom.Node) reactive.Stack { return o.ctx }

type countingUnbinder struct{ calls int }

func (c *countingUnbinder) Unbind(*dom.Node) { c.calls++ }

func newResolver() *Resolver {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestContextOf_CrossesBoundaries(t *testing.T) {
	rt := reactive.New()
	d := dom.NewDocument()
	r := newResolver()

	host := d.CreateElement("x-host")
	require.NoError(t, d.Body().AppendChild(host))
	inner := d.CreateElement("span")
	require.NoError(t, host.AttachShadow().AppendChild(inner))

	state := reactive.Stack{rt.NewObject()}
	r.Attach(host, state)
	assert.True(t, r.ContextOf(inner).Same(state))
	assert.Nil(t, r.ContextOf(d.Body()))
}

func TestRescope_MovesContentToImpliedContextOnce(t *testing.T) {
	rt := reactive.New()
	d := dom.NewDocument()
	r := newResolver()

	authorCtx := reactive.Stack{rt.NewObject()}
	otherCtx := reactive.Stack{rt.NewObject()}

	container := d.CreateElement("div")
	r.Attach(container, otherCtx)
	content := d.CreateElement("p")
	require.NoError(t, container.AppendChild(content))

	owner := &testOwner{ctx: authorCtx}
	require.NoError(t, r.Mark(content, owner, false))

	u := &countingUnbinder{}
	assert.Equal(t, 1, r.Rescope([]*dom.Node{content}, u))
	assert.Equal(t, 1, u.calls)
	assert.True(t, r.ContextOf(content).Same(authorCtx))

	// Second pass is a no-op.
	assert.Equal(t, 0, r.Rescope([]*dom.Node{content}, u))
	assert.Equal(t, 1, u.calls)

	// Relocation keeps the context.
	elsewhere := d.CreateElement("section")
	r.Attach(elsewhere, otherCtx)
	require.NoError(t, elsewhere.AppendChild(content))
	assert.True(t, r.ContextOf(content).Same(authorCtx))
}

func TestRescope_SkipsUnmarkedAndDestroyed(t *testing.T) {
	rt := reactive.New()
	d := dom.NewDocument()
	r := newResolver()

	unmarked := d.CreateElement("p")
	gone := d.CreateElement("p")
	owner := &testOwner{ctx: reactive.Stack{rt.NewObject()}}
	require.NoError(t, r.Mark(gone, owner, false))
	owner.destroyed = true

	u := &countingUnbinder{}
	assert.Equal(t, 0, r.Rescope([]*dom.Node{unmarked, gone}, u))
	assert.Zero(t, u.calls)

	err := r.Mark(unmarked, owner, false)
	assert.True(t, IsOwnerDestroyed(err))
}

func TestForget_DropsSubtree(t *testing.T) {
	rt := reactive.New()
	d := dom.NewDocument()
	r := newResolver()
	root := d.CreateElement("div")
	child := d.CreateElement("p")
	require.NoError(t, root.AppendChild(child))

	r.Attach(child, reactive.Stack{rt.NewObject()})
	require.NoError(t, r.Mark(child, &testOwner{}, false))

	r.Forget(root)
	_, attached := r.Attached(child)
	assert.False(t, attached)
	_, marked := r.OwnerOf(child)
	assert.False(t, marked)
}

func TestRescope_TemplateContentCarriesPlaceholderContext(t *testing.T) {
	rt := reactive.New()
	d := dom.NewDocument()
	r := newResolver()

	container := d.CreateElement("div")
	otherCtx := reactive.Stack{rt.NewObject()}
	r.Attach(container, otherCtx)
	frag, err := d.ParseFragment(`<template x-if="open"><em></em></template>`)
	require.NoError(t, err)
	require.NoError(t, container.AppendChild(frag))
	tpl := container.ElementsByTag("template")[0]
	content := tpl.Content()
	require.NotNil(t, content)

	authorCtx := reactive.Stack{rt.NewObject()}
	require.NoError(t, r.Mark(content, &testOwner{ctx: authorCtx}, false))

	u := &countingUnbinder{}
	assert.Equal(t, 1, r.Rescope([]*dom.Node{content}, u))
	assert.Equal(t, 2, u.calls, "content and its placeholder")
	assert.True(t, r.ContextOf(tpl).Same(authorCtx))
	assert.True(t, r.ContextOf(content.Children()[0]).Same(authorCtx))
	assert.True(t, r.ContextOf(container).Same(otherCtx))

	r.Forget(tpl)
	_, ok := r.OwnerOf(content)
	assert.False(t, ok)
	assert.True(t, r.ContextOf(tpl).Same(otherCtx))
}
