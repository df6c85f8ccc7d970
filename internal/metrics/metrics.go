// Package metrics exposes request and evaluation counters in the Prometheus
// text format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Envolvente/internal/diag"
)

type Metrics struct {
	reg *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	evaluations *prometheus.CounterVec
	warnings    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "envolvente_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "envolvente_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"route"}),
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "envolvente_evaluations_total",
			Help: "Envelope evaluations by kind",
		}, []string{"kind"}),
		warnings: f.NewCounter(prometheus.CounterOpts{
			Name: "envolvente_warnings_total",
			Help: "Elements excluded or degraded during evaluations",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records every request under its route template, so path
// parameters do not create new series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(sw.code)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Evaluated counts one evaluation of the given kind ("uvalues", "indicators"...).
func (m *Metrics) Evaluated(kind string) {
	m.evaluations.WithLabelValues(kind).Inc()
}

// Observer wraps obs so that every warning is also counted.
func (m *Metrics) Observer(obs diag.Observer) diag.Observer {
	return &counting{Observer: diag.OrNop(obs), warnings: m.warnings}
}

type counting struct {
	diag.Observer
	warnings prometheus.Counter
}

func (c *counting) Warnw(msg string, kv ...any) {
	c.warnings.Inc()
	c.Observer.Warnw(msg, kv...)
}
