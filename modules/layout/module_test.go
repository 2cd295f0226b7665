package layout_test

import (
	"context"
	"strings"
	"testing"

	"github.com/specialistvlad/compositor/internal/testutil"
	"github.com/specialistvlad/compositor/modules/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHarness(t *testing.T) *testutil.Harness {
	t.Helper()
	h := testutil.NewHarness(t, testutil.Options{})
	require.NoError(t, h.Registry.RegisterModules(context.Background(), &layout.Module{}))
	for _, tag := range []string{"c-card", "c-panel", "c-counter", "c-link"} {
		require.True(t, h.Registry.Has(tag), tag)
	}
	return h
}

func TestCard_ProjectsTitleAndBody(t *testing.T) {
	h := newHarness(t)
	h.Mount(t, `<c-card><b slot="title">Hello</b>text</c-card>`)

	article := h.First(t, "article")
	assert.True(t, article.HasClass("card"))
	title := h.First(t, "header")
	assert.Equal(t, "Hello", strings.TrimSpace(title.TextContent()))
	assert.Contains(t, article.TextContent(), "text")
}

func TestPanel_IsolatedWithHeading(t *testing.T) {
	h := newHarness(t)
	h.Mount(t, `<c-panel heading="News"></c-panel>`)

	panel := h.First(t, "c-panel")
	require.NotNil(t, panel.Shadow())
	assert.Equal(t, "News", h.First(t, "h2").TextContent())
	assert.Contains(t, panel.Shadow().TextContent(), "Nothing to show.")
}

func TestCounter_IncrementsAndDispatches(t *testing.T) {
	h := newHarness(t)
	h.Mount(t, `<div x-data="{ last: 0 }" @count-changed="last = $event.detail"><c-counter start="2" label="Clicks"></c-counter><i x-text="last"></i></div>`)

	button := h.First(t, "button")
	assert.Equal(t, "Clicks: 2", button.TextContent())

	h.Engine.Dispatch(button, "click", nil)
	assert.Equal(t, "Clicks: 3", button.TextContent())
	assert.Equal(t, "3", h.First(t, "i").TextContent())
}

func TestLink_UnwrapsIntoAnchor(t *testing.T) {
	h := newHarness(t)
	h.Mount(t, `<c-link href="/docs">Docs</c-link>`)

	a := h.First(t, "a")
	assert.Equal(t, "/docs", a.Attribute("href"))
	assert.True(t, a.HasClass("link"))
	assert.Equal(t, "Docs", strings.TrimSpace(a.TextContent()))
	assert.Empty(t, h.Engine.Document().Body().ElementsByTag("c-link"))
}
