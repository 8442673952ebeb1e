// Package metrics exposes Prometheus collectors on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes.
const (
	RefreshOK      = "ok"
	RefreshPartial = "partial"
	RefreshFailed  = "failed"
)

// Metrics groups the service collectors.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	QuotesComputed     *prometheus.CounterVec
	InvalidInputs      *prometheus.CounterVec
	InventoryLots      prometheus.Gauge
	InventoryRefreshes *prometheus.CounterVec
}

// New registers every collector under namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		QuotesComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quotes_computed_total",
				Help:      "Pricing computations by policy and family",
			},
			[]string{"policy", "family"},
		),
		InvalidInputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_inputs_total",
				Help:      "Rejected pricing requests by reason",
			},
			[]string{"reason"},
		),
		InventoryLots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_lots",
			Help:      "Number of inventory lots currently loaded",
		}),
		InventoryRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inventory_refreshes_total",
				Help:      "Inventory refreshes by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.QuotesComputed,
		m.InvalidInputs,
		m.InventoryLots,
		m.InventoryRefreshes,
	)
	return m
}

// Registry returns the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware tracks request count and duration labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		m.RequestCounter.With(labels).Inc()
		m.RequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}

// RecordQuote counts one pricing computation.
func (m *Metrics) RecordQuote(policy, family string) {
	m.QuotesComputed.With(prometheus.Labels{"policy": policy, "family": family}).Inc()
}

// RecordInvalid counts one rejected request.
func (m *Metrics) RecordInvalid(reason string) {
	m.InvalidInputs.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordRefresh counts an inventory refresh and updates the lot gauge.
func (m *Metrics) RecordRefresh(outcome string, lots int) {
	m.InventoryRefreshes.With(prometheus.Labels{"outcome": outcome}).Inc()
	if outcome != RefreshFailed {
		m.InventoryLots.Set(float64(lots))
	}
}
