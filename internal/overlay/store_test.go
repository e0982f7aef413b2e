package overlay

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreStartsHidden(t *testing.T) {
	store := NewStore()
	assert.True(t, store.State().Hidden())
	assert.Empty(t, store.State().Content)
}

func TestStoreOpenReplacesContent(t *testing.T) {
	store := NewStore()
	store.Open(template.HTML("<p>first</p>"))
	store.Open(template.HTML("<p>second</p>"))

	state := store.State()
	assert.True(t, state.Visible)
	assert.Equal(t, template.HTML("<p>second</p>"), state.Content)
}

func TestStoreCloseIsIdempotent(t *testing.T) {
	store := NewStore()
	var transitions int
	store.OnChange(func(prev, next State) { transitions++ })

	store.Close()
	store.Close()
	assert.True(t, store.State().Hidden())
	assert.Zero(t, transitions)

	store.Open(template.HTML("x"))
	store.Close()
	store.Close()
	assert.True(t, store.State().Hidden())
	assert.Equal(t, 2, transitions)
}

func TestStoreListenerSeesTransitions(t *testing.T) {
	store := NewStore()
	var seen [][2]State
	store.OnChange(func(prev, next State) { seen = append(seen, [2]State{prev, next}) })

	store.Open(template.HTML("a"))
	store.Open(template.HTML("b"))
	store.Close()

	require.Len(t, seen, 3)
	assert.True(t, seen[0][0].Hidden())
	assert.Equal(t, template.HTML("a"), seen[0][1].Content)
	assert.Equal(t, template.HTML("a"), seen[1][0].Content)
	assert.Equal(t, template.HTML("b"), seen[1][1].Content)
	assert.True(t, seen[2][1].Hidden())
}
