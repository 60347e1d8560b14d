package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/hicluster/pkg/cache"
	"github.com/matzehuels/hicluster/pkg/contact"
	"github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/observability"
	"github.com/matzehuels/hicluster/pkg/source"
)

const binSize = 100_000

// decay returns an n×n matrix whose counts fall off with distance.
func decay(t *testing.T, n int) *contact.Matrix {
	t.Helper()
	m, err := contact.NewMatrix(n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSymmetric(i, j, float64(1000/(j-i+1)+(i*j)%7))
		}
	}
	return m
}

func fixture(t *testing.T) (*source.MemoryContacts, *source.Centromeres) {
	t.Helper()
	contacts := source.NewMemoryContacts(binSize)
	contacts.Put("chr1", decay(t, 20))
	contacts.Put("chr2", decay(t, 12))
	contacts.Put("chr3", decay(t, 8))
	cents := source.NewCentromeres()
	cents.Add("chr1", 800_000, 1_000_000)
	cents.Add("chr2", 400_000, 500_000)
	return contacts, cents
}

type normalizeCounter struct {
	observability.NoopPipelineHooks
	mu    sync.Mutex
	calls map[string]int
}

func (h *normalizeCounter) OnNormalize(_ context.Context, chrom string, _, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls[chrom]++
}

func TestMatrixIsMemoized(t *testing.T) {
	hooks := &normalizeCounter{calls: map[string]int{}}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	contacts, cents := fixture(t)
	s := New(contacts, cents, Options{})

	a, err := s.Matrix(context.Background(), "1")
	require.NoError(t, err)
	b, err := s.Matrix(context.Background(), "chr1")
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, 1, hooks.calls["chr1"])

	// Bins 0..8 are the p-arm, 9..10 the centromere, 11.. the q-arm.
	_, ok := a.Lookup(2, 15)
	require.False(t, ok, "cross-arm entries are undefined")
	_, ok = a.Lookup(9, 9)
	require.False(t, ok)
	_, ok = a.Lookup(2, 5)
	require.True(t, ok)

	stats, ok := s.Stats("chr1")
	require.True(t, ok)
	require.Equal(t, 20, stats.Bins)
	require.Equal(t, contact.Centromere{Start: 9, End: 11}, stats.Centromere)
}

func TestMatrixErrors(t *testing.T) {
	contacts, cents := fixture(t)
	s := New(contacts, cents, Options{})

	_, err := s.Matrix(context.Background(), "chr3")
	require.True(t, errors.Is(err, errors.ErrCodeInvalidData), "missing centromere: %v", err)

	_, err = s.Matrix(context.Background(), "chr9")
	require.True(t, errors.Is(err, errors.ErrCodeChromosomeNotFound))

	_, ok := s.Stats("chr3")
	require.False(t, ok)
}

func TestMatrixCanceledIsRetried(t *testing.T) {
	contacts, cents := fixture(t)
	s := New(contacts, cents, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Matrix(ctx, "chr2")
	require.ErrorIs(t, err, context.Canceled)
	_, ok := s.Stats("chr2")
	require.False(t, ok, "a canceled load is not memoized")

	_, err = s.Matrix(context.Background(), "chr2")
	require.NoError(t, err)
}

func TestPreloadJoinsFailures(t *testing.T) {
	contacts, cents := fixture(t)
	s := New(contacts, cents, Options{Parallelism: 2})

	err := s.Preload(context.Background(), s.Chromosomes())
	require.Error(t, err)
	require.Contains(t, err.Error(), "chr3")
	require.NotContains(t, err.Error(), "chr1:")

	_, ok := s.Stats("chr1")
	require.True(t, ok)
	_, ok = s.Stats("chr2")
	require.True(t, ok)

	require.NoError(t, s.Preload(context.Background(), nil))
}

func TestMatrixCache(t *testing.T) {
	hooks := &normalizeCounter{calls: map[string]int{}}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	contacts, cents := fixture(t)

	first, err := New(contacts, cents, Options{Cache: fc}).Matrix(context.Background(), "chr2")
	require.NoError(t, err)
	second, err := New(contacts, cents, Options{Cache: fc}).Matrix(context.Background(), "chr2")
	require.NoError(t, err)

	require.Equal(t, 1, hooks.calls["chr2"], "second session reads the cache")
	require.True(t, contact.Equal(first, second, 0))

	// A different threshold is a different key.
	_, err = New(contacts, cents, Options{Cache: fc, ZeroThreshold: 0.5}).Matrix(context.Background(), "chr2")
	require.NoError(t, err)
	require.Equal(t, 2, hooks.calls["chr2"])
}

func TestScore(t *testing.T) {
	contacts, cents := fixture(t)
	s := New(contacts, cents, Options{})
	ctx := context.Background()

	m, err := s.Matrix(ctx, "chr1")
	require.NoError(t, err)
	want, _ := m.Lookup(1, 6)

	v, ok, err := s.Score(ctx, "chr1", 150_000, 650_000)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, v)

	_, ok, err = s.Score(ctx, "chr1", 150_000, 190_000)
	require.NoError(t, err)
	require.False(t, ok, "too close")

	scores, err := s.Scores(ctx, "chr1", [][2]int64{
		{150_000, 650_000},
		{150_000, 190_000},
		{150_000, 1_500_000},
		{150_000, 9_000_000},
	})
	require.NoError(t, err)
	require.Equal(t, []float64{want}, scores, "undefined, close and out-of-range pairs are dropped")

	_, _, err = s.Score(ctx, "chr3", 0, 500_000)
	require.Error(t, err)
}
