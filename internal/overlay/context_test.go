package overlay

import (
	"context"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlsMissingOutsideShell(t *testing.T) {
	_, ok := ControlsFrom(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() { MustControls(context.Background()) })
	assert.True(t, ContentFrom(context.Background()).Hidden())
}

func TestChannelsAreIndependent(t *testing.T) {
	store := NewStore()
	ctx := WithControls(context.Background(), store)

	MustControls(ctx).Open(template.HTML("<b>confirm</b>"))
	assert.True(t, ContentFrom(ctx).Hidden(), "content channel not attached")

	ctx = WithContent(ctx, store)
	assert.Equal(t, template.HTML("<b>confirm</b>"), ContentFrom(ctx).Content)
}

func TestRendererHiddenRendersNothing(t *testing.T) {
	ctx := WithContent(context.Background(), NewStore())
	out, err := NewRenderer(nil, "").Render(ctx, "/products", "token")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRendererWrapsContentWithCloseControl(t *testing.T) {
	store := NewStore()
	store.Open(template.HTML(`<p id="body">Delete?</p>`))
	ctx := WithContent(context.Background(), store)

	out, err := NewRenderer(nil, "").Render(ctx, "/products/42", "token")
	require.NoError(t, err)
	html := string(out)
	assert.True(t, strings.Contains(html, `action="/overlay/close"`))
	assert.True(t, strings.Contains(html, `value="/products/42"`))
	assert.True(t, strings.Contains(html, `<p id="body">Delete?</p>`))
}

type stubFragments struct {
	name string
	data any
}

func (s *stubFragments) Fragment(name string, data any) (template.HTML, error) {
	s.name = name
	s.data = data
	return template.HTML("wrapped"), nil
}

func TestRendererUsesFragmentTemplate(t *testing.T) {
	store := NewStore()
	store.Open(template.HTML("x"))
	fragments := &stubFragments{}

	out, err := NewRenderer(fragments, "partials/overlay.html").Render(WithContent(context.Background(), store), "/", "t")
	require.NoError(t, err)
	assert.Equal(t, template.HTML("wrapped"), out)
	assert.Equal(t, "partials/overlay.html", fragments.name)
}
