// Package session owns the normalized contact matrices of one dataset.
//
// A [Session] combines a raw [source.ContactStore] with a
// [source.CentromereTable] and normalizes each chromosome at most once,
// either on first use or eagerly through [Session.Preload]. Normalized
// matrices are read-only after they are built and live as long as the
// session; concurrent detections of different samples share them.
//
// When a [cache.Cache] is configured, normalized matrices are stored under a
// key derived from the raw counts, so repeated runs over the same data skip
// normalization entirely.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/exascience/pargo/parallel"

	"github.com/matzehuels/hicluster/pkg/bpgraph"
	"github.com/matzehuels/hicluster/pkg/cache"
	"github.com/matzehuels/hicluster/pkg/contact"
	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/observability"
	"github.com/matzehuels/hicluster/pkg/source"
)

// Options configures a Session. The zero value normalizes with default
// settings, caches nothing and logs nothing.
type Options struct {
	// ZeroThreshold is the coverage-mask zero fraction. Zero selects
	// contact.DefaultZeroThreshold.
	ZeroThreshold float64
	// MinDistance is the genomic distance used by Score and Scores. Zero
	// selects bpgraph.DefaultMinDistance.
	MinDistance int64
	// Parallelism bounds Preload. Zero normalizes every chromosome at once.
	Parallelism int

	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// Session lazily normalizes and memoizes chromosome matrices.
type Session struct {
	contacts source.ContactStore
	cents    source.CentromereTable
	opts     Options

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu     sync.Mutex
	loaded bool
	matrix *contact.Matrix
	stats  contact.Stats
	key    string
	err    error
}

// New returns a session over contacts and cents.
func New(contacts source.ContactStore, cents source.CentromereTable, opts Options) *Session {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.ZeroThreshold == 0 {
		opts.ZeroThreshold = contact.DefaultZeroThreshold
	}
	if opts.MinDistance == 0 {
		opts.MinDistance = bpgraph.DefaultMinDistance
	}
	return &Session{
		contacts: contacts,
		cents:    cents,
		opts:     opts,
		entries:  make(map[string]*entry),
	}
}

// BinSize returns the bin width of the underlying contact store.
func (s *Session) BinSize() int64 { return s.contacts.BinSize() }

// Chromosomes returns the chromosomes of the underlying contact store.
func (s *Session) Chromosomes() []string { return s.contacts.Chromosomes() }

// MinDistance returns the distance rule applied by Score.
func (s *Session) MinDistance() int64 { return s.opts.MinDistance }

// Matrix returns the normalized matrix of chrom, building it on first use.
// The matrix is shared and must not be modified.
// Failures other than cancellation are remembered and returned again.
func (s *Session) Matrix(ctx context.Context, chrom string) (*contact.Matrix, error) {
	e := s.entry(source.NormalizeChromName(chrom))
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return e.matrix, e.err
	}
	m, stats, key, err := s.load(ctx, source.NormalizeChromName(chrom))
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil, err
	}
	e.loaded, e.matrix, e.stats, e.key, e.err = true, m, stats, key, err
	return m, err
}

// MatrixKey returns the cache key of the normalized matrix of chrom, loading
// it if needed. Results derived from the matrix can be cached under keys
// built from it.
func (s *Session) MatrixKey(ctx context.Context, chrom string) (string, error) {
	if _, err := s.Matrix(ctx, chrom); err != nil {
		return "", err
	}
	e := s.entry(source.NormalizeChromName(chrom))
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.key, nil
}

// Stats returns the normalization statistics of a loaded chromosome.
func (s *Session) Stats(chrom string) (contact.Stats, bool) {
	e := s.entry(source.NormalizeChromName(chrom))
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats, e.loaded && e.err == nil
}

// Preload normalizes chroms in parallel. Every chromosome is attempted;
// the failures are joined into the returned error.
func (s *Session) Preload(ctx context.Context, chroms []string) error {
	if len(chroms) == 0 {
		return nil
	}
	batches := len(chroms)
	if p := s.opts.Parallelism; p > 0 && p < batches {
		batches = p
	}
	errs := make([]error, len(chroms))
	parallel.Range(0, len(chroms), batches, func(low, high int) {
		for i := low; i < high; i++ {
			if _, err := s.Matrix(ctx, chroms[i]); err != nil {
				errs[i] = fmt.Errorf("%s: %w", chroms[i], err)
			}
		}
	})
	return errors.Join(errs...)
}

// Score looks up the normalized score of one breakpoint pair with the same
// distance rules used to build graphs.
func (s *Session) Score(ctx context.Context, chrom string, pos1, pos2 int64) (float64, bool, error) {
	m, err := s.Matrix(ctx, chrom)
	if err != nil {
		return 0, false, err
	}
	v, ok := bpgraph.Score(m, s.BinSize(), s.opts.MinDistance, pos1, pos2)
	return v, ok, nil
}

// Scores returns the defined scores of pairs, in input order, skipping
// pairs that carry no evidence.
func (s *Session) Scores(ctx context.Context, chrom string, pairs [][2]int64) ([]float64, error) {
	m, err := s.Matrix(ctx, chrom)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if v, ok := bpgraph.Score(m, s.BinSize(), s.opts.MinDistance, p[0], p[1]); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Session) entry(chrom string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[chrom]
	if !ok {
		e = &entry{}
		s.entries[chrom] = e
	}
	return e
}

// load reads, normalizes and caches one chromosome.
func (s *Session) load(ctx context.Context, chrom string) (*contact.Matrix, contact.Stats, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, contact.Stats{}, "", err
	}
	start := time.Now()
	logger := s.opts.Logger.With("chrom", chrom)

	raw, err := s.contacts.Matrix(ctx, chrom)
	if err != nil {
		return nil, contact.Stats{}, "", err
	}
	startBp, endBp, err := s.cents.Span(chrom)
	if err != nil {
		return nil, contact.Stats{}, "", hcerrors.Wrap(hcerrors.ErrCodeInvalidData, err, "centromere of %s", chrom)
	}
	cent, err := contact.CentromereFromSpan(startBp, endBp, s.BinSize())
	if err != nil {
		return nil, contact.Stats{}, "", hcerrors.Wrap(hcerrors.ErrCodeInvalidData, err, "centromere of %s", chrom)
	}

	key := s.opts.Keyer.MatrixKey(chrom, cache.Hash(contact.Marshal(raw)), cache.MatrixKeyOpts{
		BinSize:       s.BinSize(),
		ZeroThreshold: s.opts.ZeroThreshold,
		CentStart:     cent.Start,
		CentEnd:       cent.End,
	})
	if data, ok, err := s.opts.Cache.Get(ctx, key); err != nil {
		logger.Warn("matrix cache read failed", "error", err)
	} else if ok {
		if m, err := contact.Unmarshal(data); err == nil && m.Size() == raw.Size() {
			stats := contact.Stats{Bins: m.Size(), Defined: m.Defined(), Centromere: cent}
			stats.MaskedBins = len(contact.MaskedBins(contact.MaskCoverage(raw, s.opts.ZeroThreshold)))
			stats.DefinedFrac = float64(stats.Defined) / float64(stats.Bins*stats.Bins)
			logger.Debug("normalized matrix from cache", "bins", m.Size())
			return m, stats, key, nil
		}
		logger.Warn("discarding corrupt cache entry")
	}

	norm, stats, err := contact.Normalizer{ZeroThreshold: s.opts.ZeroThreshold}.NormalizeWithStats(raw, cent)
	observability.Pipeline().OnNormalize(ctx, chrom, stats.Bins, stats.MaskedBins, time.Since(start), err)
	if err != nil {
		return nil, contact.Stats{}, "", hcerrors.Wrap(hcerrors.ErrCodeInvalidData, err, "normalize %s", chrom)
	}
	if stats.Defined == 0 {
		logger.Warn("normalized matrix has no defined entries", "bins", stats.Bins)
	}
	if err := s.opts.Cache.Set(ctx, key, contact.Marshal(norm), cache.MatrixTTL); err != nil {
		logger.Warn("matrix cache write failed", "error", err)
	}
	logger.Debug("normalized matrix",
		"bins", stats.Bins,
		"masked", stats.MaskedBins,
		"centromere", cent,
		"defined", fmt.Sprintf("%.1f%%", 100*stats.DefinedFrac),
		"duration", time.Since(start))
	return norm, stats, key, nil
}
