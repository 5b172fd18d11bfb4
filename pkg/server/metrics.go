package server

import (
	"net/http"
	"strconv"

	"github.com/de-tools/metric-atlas/pkg/services/formula"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "metric_atlas"

// Metrics owns a private prometheus registry so several servers can coexist in tests.
type Metrics struct {
	registry        *prometheus.Registry
	uploads         *prometheus.CounterVec
	uploadRows      prometheus.Histogram
	formulaFailures prometheus.Counter
	requests        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploaded documents by format and result.",
		}, []string{"format", "result"}),
		uploadRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_rows",
			Help:      "Rows decoded per successful upload.",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 6),
		}),
		formulaFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "formula_failures_total",
			Help:      "Calc column cells that evaluated to null.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(m.uploads, m.uploadRows, m.formulaFailures, m.requests)
	return m
}

func (m *Metrics) ObserveUpload(format string, rows int, err error) {
	if format == "" {
		format = "none"
	}
	if err != nil {
		m.uploads.WithLabelValues(format, "error").Inc()
		return
	}
	m.uploads.WithLabelValues(format, "ok").Inc()
	m.uploadRows.Observe(float64(rows))
}

// EvaluationFailed counts formula failures; pass Metrics as a dashboard observer.
func (m *Metrics) EvaluationFailed(*formula.EvaluationError) {
	m.formulaFailures.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
