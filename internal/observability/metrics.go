package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is nil-safe: every method on a nil *Metrics is a no-op, so callers never branch on
// whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	ingestLines   prometheus.Counter
	ingestSkipped prometheus.Counter
	ingestEdges   prometheus.Counter

	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	impactCache *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "twingraph_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twingraph_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "twingraph_http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		ingestLines: f.NewCounter(prometheus.CounterOpts{
			Name: "twingraph_ingest_lines_total",
			Help: "Lines received by ingest, including skipped ones.",
		}),
		ingestSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "twingraph_ingest_skipped_lines_total",
			Help: "Ingest lines skipped as blank or malformed.",
		}),
		ingestEdges: f.NewCounter(prometheus.CounterOpts{
			Name: "twingraph_ingest_edges_total",
			Help: "Edge assertions applied by ingest.",
		}),
		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "twingraph_store_operations_total",
			Help: "Graph store operations by name and outcome.",
		}, []string{"op", "outcome"}),
		storeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twingraph_store_operation_duration_seconds",
			Help:    "Graph store operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		impactCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "twingraph_impact_cache_total",
			Help: "Impact cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveIngest(lines, skipped, edges int) {
	if m == nil {
		return
	}
	m.ingestLines.Add(float64(lines))
	m.ingestSkipped.Add(float64(skipped))
	m.ingestEdges.Add(float64(edges))
}

func (m *Metrics) ObserveStore(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.storeOps.WithLabelValues(op, outcome).Inc()
	m.storeLatency.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) ObserveImpactCache(result string) {
	if m == nil {
		return
	}
	m.impactCache.WithLabelValues(result).Inc()
}
