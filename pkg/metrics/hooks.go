package metrics

import (
	"context"
	"strconv"
	"time"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnNormalize implements observability.PipelineHooks.
func (r *Registry) OnNormalize(_ context.Context, chrom string, _, masked int, d time.Duration, err error) {
	r.NormalizeTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	r.NormalizeDuration.Observe(d.Seconds())
	r.MaskedBins.WithLabelValues(chrom).Set(float64(masked))
}

// OnUnitStart implements observability.PipelineHooks.
func (r *Registry) OnUnitStart(context.Context, string, string) {
	r.UnitsInFlight.Inc()
}

// OnUnitComplete implements observability.PipelineHooks.
func (r *Registry) OnUnitComplete(_ context.Context, _, _ string, size int, d time.Duration, err error) {
	r.UnitsInFlight.Dec()
	r.UnitsTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	r.UnitDuration.Observe(d.Seconds())
	r.ClusterSize.Observe(float64(size))
}

// OnProbe implements observability.SolverHooks.
func (r *Registry) OnProbe(_ context.Context, _ float64, _ int, accepted bool) {
	r.ProbesTotal.WithLabelValues(strconv.FormatBool(accepted)).Inc()
}

// OnSolve implements observability.SolverHooks.
func (r *Registry) OnSolve(_ context.Context, vertices, _, probes int, d time.Duration) {
	r.SolveDuration.Observe(d.Seconds())
	r.ProbesPerSolve.Observe(float64(probes))
	r.GraphVertices.Observe(float64(vertices))
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (r *Registry) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
