package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/productmaster/internal/observability"
	"github.com/odyssey-erp/productmaster/internal/rpc"
	"github.com/odyssey-erp/productmaster/jobs"
)

// CatalogRouterParams groups dependencies of the catalog backend router.
type CatalogRouterParams struct {
	Logger     *slog.Logger
	Config     *Config
	RPC        *rpc.Server
	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewCatalogRouter exposes the remote operations of the catalog backend.
// Sessions and CSRF do not apply: the only caller is the web shell.
func NewCatalogRouter(params CatalogRouterParams) http.Handler {
	r := chi.NewRouter()

	timeout := 30 * time.Second
	if params.Config != nil && params.Config.AppRequestTimeout > 0 {
		timeout = params.Config.AppRequestTimeout
	}
	r.Use(middleware.RealIP, middleware.RequestID, middleware.Recoverer, middleware.Timeout(timeout))
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.RPC != nil {
		params.RPC.MountRoutes(r)
		if params.Logger != nil {
			params.Logger.Debug("catalog operations mounted", slog.Any("operations", params.RPC.Operations()))
		}
	}
	return r
}
