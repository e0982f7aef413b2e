package shell

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloseOverlayHidesAndRedirects(t *testing.T) {
	sh := NewRegistry(0, nil, nil).Get("s")
	sh.Overlay.Open("<p>confirm</p>")

	form := url.Values{"return": {"/products?offset=10"}}
	req := httptest.NewRequest(http.MethodPost, "/overlay/close", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(WithShell(req.Context(), sh))
	rec := httptest.NewRecorder()

	CloseOverlay(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/products?offset=10", rec.Header().Get("Location"))
	assert.True(t, sh.Overlay.State().Hidden())
}

func TestCloseOverlayWhenHiddenIsNoop(t *testing.T) {
	sh := NewRegistry(0, nil, nil).Get("s")
	req := httptest.NewRequest(http.MethodPost, "/overlay/close", nil)
	req = req.WithContext(WithShell(req.Context(), sh))
	rec := httptest.NewRecorder()

	CloseOverlay(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.True(t, sh.Overlay.State().Hidden())
}

func TestCloseOverlayWithoutShell(t *testing.T) {
	rec := httptest.NewRecorder()
	CloseOverlay(rec, httptest.NewRequest(http.MethodPost, "/overlay/close", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLocalPathRejectsForeignTargets(t *testing.T) {
	cases := map[string]string{
		"/products/7":          "/products/7",
		"":                     "/",
		"https://evil.test/x":  "/",
		"//evil.test/x":        "/",
		`/\evil.test`:          "/",
		"products":             "/",
		"/products?name=a%20b": "/products?name=a%20b",
	}
	for raw, want := range cases {
		assert.Equal(t, want, LocalPath(raw, "/"), raw)
	}
}
