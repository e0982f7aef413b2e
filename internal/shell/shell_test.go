package shell

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmaster/internal/overlay"
	"github.com/odyssey-erp/productmaster/internal/shared"
)

func TestRegistryReturnsSameShellPerSession(t *testing.T) {
	reg := NewRegistry(time.Minute, nil, nil)
	a := reg.Get("a")
	assert.Same(t, a, reg.Get("a"))
	assert.NotSame(t, a, reg.Get("b"))
	assert.Equal(t, 2, reg.Len())
}

func TestRegistrySweepEvictsIdleShells(t *testing.T) {
	reg := NewRegistry(time.Minute, nil, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	reg.Get("old")
	now = now.Add(2 * time.Minute)
	reg.Get("fresh")

	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
}

func TestLoadCreatesSlotOnce(t *testing.T) {
	sh := NewRegistry(0, nil, nil).Get("s")
	calls := 0
	init := func() *int { calls++; v := 7; return &v }

	first := Load(sh, "k", init)
	second := Load(sh, "k", init)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRegistryAttachesOverlayListener(t *testing.T) {
	var opened int
	reg := NewRegistry(0, func(prev, next overlay.State) {
		if next.Visible {
			opened++
		}
	}, nil)
	reg.Get("s").Overlay.Open(template.HTML("x"))
	assert.Equal(t, 1, opened)
}

func TestMiddlewareDistributesOverlay(t *testing.T) {
	reg := NewRegistry(0, nil, nil)
	var seen *Shell
	handler := reg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		overlay.MustControls(r.Context()).Open(template.HTML("confirm"))
		assert.Equal(t, template.HTML("confirm"), overlay.ContentFrom(r.Context()).Content)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := &shared.Session{ID: "session-1"}
	req = req.WithContext(shared.ContextWithSession(context.Background(), sess))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.NotNil(t, seen)
	assert.Equal(t, "session-1", seen.ID)
	assert.True(t, reg.Get("session-1").Overlay.State().Visible)
}

func TestMiddlewareRejectsMissingSession(t *testing.T) {
	reg := NewRegistry(0, nil, nil)
	handler := reg.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, res.Code)
}
