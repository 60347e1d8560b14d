package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/matzehuels/hicluster/pkg/observability"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return m.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.UnitsTotal == nil || r.ProbesTotal == nil || r.CacheRequestsTotal == nil || r.HTTPRequestsTotal == nil {
		t.Fatal("metrics not initialized")
	}
	if r.PrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestUnitHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnUnitStart(ctx, "P1", "chr1")
	r.OnUnitStart(ctx, "P1", "chr2")
	r.OnUnitComplete(ctx, "P1", "chr1", 12, time.Second, nil)
	r.OnUnitComplete(ctx, "P1", "chr2", 0, time.Second, errors.New("boom"))

	if got := counterValue(t, r.UnitsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok units = %v, want 1", got)
	}
	if got := counterValue(t, r.UnitsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error units = %v, want 1", got)
	}
	var m dto.Metric
	if err := r.UnitsInFlight.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.Gauge.GetValue() != 0 {
		t.Errorf("units in flight = %v, want 0", m.Gauge.GetValue())
	}
}

func TestSolverAndCacheHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnProbe(ctx, 1.5, 3, true)
	r.OnProbe(ctx, 0.7, 0, false)
	r.OnProbe(ctx, 0.3, 0, false)
	r.OnSolve(ctx, 10, 20, 3, time.Millisecond)
	r.OnCacheHit(ctx, "matrix")
	r.OnCacheMiss(ctx, "unit")
	r.OnCacheSet(ctx, "unit", 128)

	if got := counterValue(t, r.ProbesTotal.WithLabelValues("false")); got != 2 {
		t.Errorf("rejected probes = %v, want 2", got)
	}
	if got := counterValue(t, r.CacheRequestsTotal.WithLabelValues("matrix", "hit")); got != 1 {
		t.Errorf("matrix hits = %v, want 1", got)
	}
}

func TestInstallAndHandler(t *testing.T) {
	r := NewRegistry()
	r.Install()
	defer observability.Reset()

	observability.HTTP().OnRequest(context.Background(), "GET", "/healthz", 200, time.Millisecond)
	observability.Pipeline().OnNormalize(context.Background(), "chr1", 100, 4, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`hicluster_http_requests_total{method="GET",route="/healthz",status="200"} 1`,
		`hicluster_masked_bins{chrom="chr1"} 4`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
