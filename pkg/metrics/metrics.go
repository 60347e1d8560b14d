// Package metrics exports Prometheus metrics for detection runs, the
// densest-subgraph search, the cache and the HTTP API.
//
// A [Registry] implements every hook interface of package observability;
// [Registry.Install] registers it so the libraries report into it.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/hicluster/pkg/observability"
)

// Registry holds all metrics of the application.
type Registry struct {
	// Pipeline metrics
	NormalizeTotal    *prometheus.CounterVec
	NormalizeDuration prometheus.Histogram
	MaskedBins        *prometheus.GaugeVec
	UnitsInFlight     prometheus.Gauge
	UnitsTotal        *prometheus.CounterVec
	UnitDuration      prometheus.Histogram
	ClusterSize       prometheus.Histogram

	// Solver metrics
	ProbesTotal    *prometheus.CounterVec
	SolveDuration  prometheus.Histogram
	ProbesPerSolve prometheus.Histogram
	GraphVertices  prometheus.Histogram

	// Cache metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWriteBytes    *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initPipelineMetrics()
	r.initSolverMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// Install registers r as the pipeline, solver, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetSolverHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}
