package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	perrors "github.com/yungbote/hetiograph/internal/pkg/errors"
	"github.com/yungbote/hetiograph/internal/platform/envutil"
)

// Metrics holds the process collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	loadRuns      *prometheus.CounterVec
	loadDuration  prometheus.Histogram
	nodesWritten  prometheus.Counter
	mirrorWritten *prometheus.CounterVec
	nodesRejected *prometheus.CounterVec
	edgeBatches   *prometheus.CounterVec
	edgeBatchTime *prometheus.HistogramVec
	edgesMerged   *prometheus.CounterVec
	edgesSkipped  *prometheus.CounterVec

	queryTotal   *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", true)
}

// Current returns the process-wide instance, or nil before Init.
func Current() *Metrics {
	return instance
}

// Init builds the process-wide instance once. It returns nil when
// METRICS_ENABLED is false.
func Init() *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
	})
	return instance
}

// New builds an instance on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,

		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hetio_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hetio_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "hetio_api_inflight_requests",
			Help: "In-flight API requests.",
		}),

		loadRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hetio_load_runs_total",
			Help: "Bulk loads by outcome.",
		}, []string{"status"}),
		loadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hetio_load_duration_seconds",
			Help:    "Bulk load wall time.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800},
		}),
		nodesWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "hetio_load_nodes_written_total",
			Help: "Nodes upserted into the graph store.",
		}),
		mirrorWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hetio_load_mirror_written_total",
			Help: "Nodes upserted into the mirror store by backend.",
		}, []string{"backend"}),
		nodesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hetio_load_nodes_rejected_total",
			Help: "Node records skipped by reason.",
		}, []string{"reason"}),
		edgeBatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hetio_load_edge_batches_total",
			Help: "Edge merge batches by relation type and outcome.",
		}, []string{"relation", "status"}),
		edgeBatchTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hetio_load_edge_batch_duration_seconds",
			Help:    "Edge merge batch latency by relation type.",
			Buckets: prometheus.DefBuckets,
		}, []string{"relation"}),
		edgesMerged: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hetio_load_edges_merged_total",
			Help: "Edges matched and merged by relation type.",
		}, []string{"relation"}),
		edgesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hetio_load_edges_skipped_total",
			Help: "Edge records skipped by reason.",
		}, []string{"reason"}),

		queryTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hetio_queries_total",
			Help: "Graph queries by name and outcome.",
		}, []string{"query", "status"}),
		queryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hetio_query_duration_seconds",
			Help:    "Graph query latency by name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLoad(status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.loadRuns.WithLabelValues(status).Inc()
	m.loadDuration.Observe(dur.Seconds())
}

func (m *Metrics) AddNodesWritten(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.nodesWritten.Add(float64(n))
}

func (m *Metrics) AddMirrorWritten(backend string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mirrorWritten.WithLabelValues(backend).Add(float64(n))
}

func (m *Metrics) IncNodeRejected(reason string) {
	if m == nil {
		return
	}
	m.nodesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveEdgeBatch(relation, status string, merged int, dur time.Duration) {
	if m == nil {
		return
	}
	m.edgeBatches.WithLabelValues(relation, status).Inc()
	m.edgeBatchTime.WithLabelValues(relation).Observe(dur.Seconds())
	if merged > 0 {
		m.edgesMerged.WithLabelValues(relation).Add(float64(merged))
	}
}

func (m *Metrics) AddEdgesSkipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.edgesSkipped.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) ObserveQuery(query, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.queryTotal.WithLabelValues(query, status).Inc()
	m.queryLatency.WithLabelValues(query).Observe(dur.Seconds())
}

// Status maps an error to the outcome label used by the counters: "ok", the
// failure kind for typed errors, or "error".
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	if k := perrors.KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}
