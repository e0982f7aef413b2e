package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jobmetrics "github.com/odyssey-erp/productmaster/internal/jobs"
	"github.com/odyssey-erp/productmaster/internal/overlay"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	rpcCalls           *prometheus.CounterVec
	rpcDuration        *prometheus.HistogramVec
	overlayTransitions *prometheus.CounterVec
	jobs               *jobmetrics.Metrics
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productmaster_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "productmaster_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	rpcCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productmaster_rpc_calls_total",
		Help: "Jumlah panggilan operasi remote berdasarkan operasi dan hasil.",
	}, []string{"op", "kind"})
	rpcDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "productmaster_rpc_call_duration_seconds",
		Help:    "Durasi panggilan operasi remote.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	overlays := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productmaster_overlay_transitions_total",
		Help: "Jumlah transisi overlay (open, replace, close).",
	}, []string{"transition"})
	registry.MustRegister(requests, duration, rpcCalls, rpcDuration, overlays)
	return &Metrics{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:      requests,
		requestDuration:    duration,
		rpcCalls:           rpcCalls,
		rpcDuration:        rpcDuration,
		overlayTransitions: overlays,
		jobs:               jobmetrics.NewMetrics(registry),
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveCall mencatat hasil satu panggilan operasi remote.
func (m *Metrics) ObserveCall(op, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcCalls.WithLabelValues(op, kind).Inc()
	m.rpcDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// OverlayListener menghitung setiap transisi overlay efektif.
func (m *Metrics) OverlayListener() overlay.Listener {
	return func(prev, next overlay.State) {
		if m == nil {
			return
		}
		transition := "close"
		switch {
		case next.Visible && prev.Visible:
			transition = "replace"
		case next.Visible:
			transition = "open"
		}
		m.overlayTransitions.WithLabelValues(transition).Inc()
	}
}

// Jobs mengembalikan metrik job latar belakang yang terdaftar di registry ini.
func (m *Metrics) Jobs() *jobmetrics.Metrics {
	if m == nil {
		return nil
	}
	return m.jobs
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
