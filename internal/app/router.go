package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/productmaster/internal/observability"
	"github.com/odyssey-erp/productmaster/internal/overlay"
	"github.com/odyssey-erp/productmaster/internal/product"
	"github.com/odyssey-erp/productmaster/internal/shared"
	"github.com/odyssey-erp/productmaster/internal/shell"
	"github.com/odyssey-erp/productmaster/internal/view"
	"github.com/odyssey-erp/productmaster/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Shells         *shell.Registry
	Overlays       *overlay.Renderer
	ProductHandler *product.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router of the web shell.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Static assets skip the session, CSRF and rate limit chain.
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(web.Static)))
	r.Handle("/static/*", staticCacheHandler(fileServer))

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Shells:         params.Shells,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, product.ListRoute, http.StatusSeeOther)
		})
		r.Post(overlay.CloseRoute, shell.CloseOverlay)
		if params.ProductHandler != nil {
			r.Route(product.ListRoute, params.ProductHandler.MountRoutes)
		}
		r.NotFound(notFoundHandler(params))
	})

	return r
}

func notFoundHandler(params RouterParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := shared.SessionFromContext(ctx)
		csrfToken, _ := params.CSRFManager.EnsureToken(ctx, sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:       "Page not found",
			CSRFToken:   csrfToken,
			Flash:       flash,
			CurrentPath: r.URL.Path,
		}
		if params.Overlays != nil {
			overlayHTML, err := params.Overlays.Render(ctx, r.URL.RequestURI(), csrfToken)
			if err != nil {
				params.Logger.Error("render overlay", slog.Any("error", err))
			}
			data.Overlay = overlayHTML
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err := params.Templates.Render(w, "pages/not_found.html", data); err != nil {
			params.Logger.Error("render not found", slog.Any("error", err))
		}
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
