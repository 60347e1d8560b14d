package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPipelineMetrics() {
	r.NormalizeTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hicluster_normalize_total",
			Help: "Chromosome matrices normalized",
		},
		[]string{"status"},
	)

	r.NormalizeDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hicluster_normalize_duration_seconds",
			Help:    "Time to normalize one chromosome matrix",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	r.MaskedBins = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hicluster_masked_bins",
			Help: "Bins removed by the coverage mask, per chromosome",
		},
		[]string{"chrom"},
	)

	r.UnitsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hicluster_units_in_flight",
			Help: "Sample and chromosome units being detected",
		},
	)

	r.UnitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hicluster_units_total",
			Help: "Sample and chromosome units detected",
		},
		[]string{"status"},
	)

	r.UnitDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hicluster_unit_duration_seconds",
			Help:    "Time to detect the cluster of one unit",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.ClusterSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hicluster_cluster_size",
			Help:    "Breakpoints in detected clusters",
			Buckets: []float64{0, 5, 10, 20, 50, 100, 200, 500},
		},
	)
}

func (r *Registry) initSolverMetrics() {
	r.ProbesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hicluster_solver_probes_total",
			Help: "Min-cut probes of the densest-subgraph search",
		},
		[]string{"accepted"},
	)

	r.SolveDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hicluster_solve_duration_seconds",
			Help:    "Time of one densest-subgraph search",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.ProbesPerSolve = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hicluster_solver_probes",
			Help:    "Probes needed by one search",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		},
	)

	r.GraphVertices = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hicluster_graph_vertices",
			Help:    "Vertices of searched breakpoint graphs",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hicluster_cache_requests_total",
			Help: "Cache lookups by key type and result",
		},
		[]string{"type", "result"},
	)

	r.CacheWriteBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hicluster_cache_write_bytes",
			Help:    "Size of cache writes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hicluster_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hicluster_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}
