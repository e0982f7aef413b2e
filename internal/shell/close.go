package shell

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/odyssey-erp/productmaster/internal/overlay"
)

// CloseOverlay serves the overlay close control. It always closes the overlay
// and returns to the local path posted as "return".
func CloseOverlay(w http.ResponseWriter, r *http.Request) {
	controls, ok := overlay.ControlsFrom(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	controls.Close()
	http.Redirect(w, r, LocalPath(r.PostFormValue("return"), "/"), http.StatusSeeOther)
}

// LocalPath returns raw when it is a same-origin path, otherwise fallback.
func LocalPath(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return u.RequestURI()
}
