package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/productmaster/internal/overlay"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.Jobs().Track("catalog:cache_warmup").End(nil)

	body := scrape(t, metrics)
	if !strings.Contains(body, "productmaster_jobs_total") {
		t.Fatalf("expected body to contain productmaster_jobs_total, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	metricsBody := scrape(t, metrics)
	if !strings.Contains(metricsBody, "http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", metricsBody)
	}
	if !strings.Contains(metricsBody, "http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", metricsBody)
	}
}

func TestObserveCallRecordsKind(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCall("search_product", "ok", 10*time.Millisecond)
	metrics.ObserveCall("search_product", "timeout", time.Second)

	body := scrape(t, metrics)
	for _, want := range []string{
		`productmaster_rpc_calls_total{kind="ok",op="search_product"} 1`,
		`productmaster_rpc_calls_total{kind="timeout",op="search_product"} 1`,
		`productmaster_rpc_call_duration_seconds_count{op="search_product"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics, got: %s", want, body)
		}
	}
}

func TestOverlayListenerCountsTransitions(t *testing.T) {
	metrics := NewMetrics()
	store := overlay.NewStore()
	store.OnChange(metrics.OverlayListener())

	store.Open("a")
	store.Open("b")
	store.Close()
	store.Close()

	body := scrape(t, metrics)
	for _, want := range []string{
		`productmaster_overlay_transitions_total{transition="open"} 1`,
		`productmaster_overlay_transitions_total{transition="replace"} 1`,
		`productmaster_overlay_transitions_total{transition="close"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics, got: %s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveCall("x", "ok", time.Millisecond)
	metrics.OverlayListener()(overlay.State{}, overlay.State{Visible: true})
	if metrics.Jobs() != nil {
		t.Fatal("expected nil job metrics")
	}
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}
