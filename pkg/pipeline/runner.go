package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hicluster/pkg/bpgraph"
	"github.com/matzehuels/hicluster/pkg/cache"
	"github.com/matzehuels/hicluster/pkg/densest"
	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/observability"
	"github.com/matzehuels/hicluster/pkg/session"
	"github.com/matzehuels/hicluster/pkg/source"
)

// Runner detects clusters over one dataset. It holds no per-run state, so
// concurrent Detect calls with different options are safe.
type Runner struct {
	Session     *session.Session
	Breakpoints source.BreakpointTable
	Cache       cache.Cache
	Keyer       cache.Keyer
	Logger      *log.Logger
}

// NewRunner creates a runner. A nil cache disables unit caching, a nil keyer
// selects DefaultKeyer and a nil logger discards output.
func NewRunner(sess *session.Session, bps source.BreakpointTable, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Session:     sess,
		Breakpoints: bps,
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
	}
}

// Unit is the full detection state of one (sample, chromosome) pair.
type Unit struct {
	SampleID   string
	Chromosome string
	// Positions is the detected cluster, in vertex id order.
	Positions []int64
	Graph     *bpgraph.Graph
	Vertices  *bpgraph.VertexMap
	Build     bpgraph.Stats
	Solve     densest.Result
}

// Analyze runs one unit without the unit cache and returns the intermediate
// graph along with the cluster.
func (r *Runner) Analyze(ctx context.Context, sample, chrom string, opts Options) (*Unit, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := r.checkSamples([]string{sample}); err != nil {
		return nil, err
	}
	chrom = source.NormalizeChromName(chrom)
	return r.analyze(ctx, sample, chrom, r.Breakpoints.Positions(sample, chrom), opts)
}

func (r *Runner) analyze(ctx context.Context, sample, chrom string, positions []int64, opts Options) (*Unit, error) {
	m, err := r.Session.Matrix(ctx, chrom)
	if err != nil {
		return nil, err
	}
	g, vm, stats, err := bpgraph.BuildWithStats(positions, m, r.Session.BinSize(), bpgraph.Options{MinDistance: opts.MinDistance})
	if err != nil {
		return nil, hcerrors.Wrap(hcerrors.ErrCodeInternal, err, "build graph")
	}
	logger := r.logger(opts).With("sample", sample, "chrom", chrom)
	if c := g.Conflicts(); c > 0 {
		logger.Warn("asymmetric scores, kept first weight", "pairs", c)
	}
	res, err := densest.New(opts.Cutter, logger).Solve(ctx, g, opts.SizeThreshold)
	if err != nil {
		return nil, err
	}
	return &Unit{
		SampleID:   sample,
		Chromosome: chrom,
		Positions:  vm.Positions(res.Vertices),
		Graph:      g,
		Vertices:   vm,
		Build:      stats,
		Solve:      res,
	}, nil
}

// Detect runs every selected (sample, chromosome) unit. Normalization of all
// selected chromosomes happens up front; any chromosome that cannot be
// normalized fails the run.
func (r *Runner) Detect(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	samples := opts.Samples
	if len(samples) == 0 {
		samples = r.Breakpoints.Samples()
	} else if err := r.checkSamples(samples); err != nil {
		return nil, err
	}
	chroms := opts.Chromosomes

	start := time.Now()
	result := &Result{
		RunID:       uuid.NewString(),
		Started:     start,
		Samples:     samples,
		Chromosomes: chroms,
	}

	if err := r.Session.Preload(ctx, chroms); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	logger.Info("normalized matrices",
		"chromosomes", len(chroms),
		"duration", time.Since(start))

	records := make([]Record, len(samples)*len(chroms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, sample := range samples {
		for j, chrom := range chroms {
			idx := i*len(chroms) + j
			g.Go(func() error {
				rec, err := r.runUnit(gctx, sample, chrom, opts)
				if err != nil {
					return fmt.Errorf("%s %s: %w", sample, chrom, err)
				}
				records[idx] = rec
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Records = records
	result.Stats.Units = len(records)
	for _, rec := range records {
		switch {
		case rec.Status == StatusTimeout:
			result.Stats.TimedOut++
		case len(rec.Positions) > 0:
			result.Stats.Clusters++
		}
		if rec.Cached {
			result.Stats.CacheHits++
		}
	}
	result.Stats.Duration = time.Since(start)

	logger.Info("detected clusters",
		"run", result.RunID,
		"samples", len(samples),
		"units", result.Stats.Units,
		"clusters", result.Stats.Clusters,
		"timed_out", result.Stats.TimedOut,
		"cache_hits", result.Stats.CacheHits,
		"duration", result.Stats.Duration)
	return result, nil
}

// runUnit detects one unit, consulting the unit cache first.
func (r *Runner) runUnit(ctx context.Context, sample, chrom string, opts Options) (rec Record, err error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnUnitStart(ctx, sample, chrom)
	defer func() {
		hooks.OnUnitComplete(ctx, sample, chrom, len(rec.Positions), time.Since(start), err)
	}()

	logger := r.logger(opts).With("sample", sample, "chrom", chrom)
	positions := r.Breakpoints.Positions(sample, chrom)

	key, err := r.unitKey(ctx, chrom, positions, opts)
	if err != nil {
		return Record{}, err
	}
	if !opts.Refresh {
		if cached, ok := r.cachedRecord(ctx, key, logger); ok {
			cached.SampleID, cached.Chromosome = sample, chrom
			return cached, nil
		}
	}

	unitCtx := ctx
	if opts.UnitTimeout > 0 {
		var cancel context.CancelFunc
		unitCtx, cancel = context.WithTimeout(ctx, opts.UnitTimeout)
		defer cancel()
	}
	u, err := r.analyze(unitCtx, sample, chrom, positions, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Warn("unit timed out, reporting empty cluster", "timeout", opts.UnitTimeout)
			return Record{
				SampleID:    sample,
				Chromosome:  chrom,
				Positions:   []int64{},
				Status:      StatusTimeout,
				Breakpoints: len(positions),
			}, nil
		}
		return Record{}, err
	}

	rec = Record{
		SampleID:    sample,
		Chromosome:  chrom,
		Positions:   u.Positions,
		Status:      StatusOK,
		Breakpoints: u.Vertices.Len(),
		Edges:       u.Graph.EdgeCount(),
		Density:     u.Solve.Density,
		Probes:      len(u.Solve.Probes),
	}
	if len(rec.Positions) == 0 {
		rec.Status = StatusEmpty
	}
	logger.Debug("unit done",
		"breakpoints", rec.Breakpoints,
		"edges", rec.Edges,
		"cluster", len(rec.Positions),
		"duration", time.Since(start))

	if data, err := json.Marshal(rec); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.UnitTTL); err != nil {
			logger.Warn("unit cache write failed", "error", err)
		}
	}
	return rec, nil
}

func (r *Runner) unitKey(ctx context.Context, chrom string, positions []int64, opts Options) (string, error) {
	mk, err := r.Session.MatrixKey(ctx, chrom)
	if err != nil {
		return "", err
	}
	return r.Keyer.UnitKey(mk, cache.UnitKeyOpts{
		SizeThreshold: opts.SizeThreshold,
		MinDistance:   opts.MinDistance,
		Positions:     positions,
	}), nil
}

func (r *Runner) cachedRecord(ctx context.Context, key string, logger *log.Logger) (Record, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("unit cache read failed", "error", err)
		return Record{}, false
	}
	if !ok {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		logger.Warn("discarding corrupt unit cache entry", "error", err)
		return Record{}, false
	}
	if rec.Positions == nil {
		rec.Positions = []int64{}
	}
	rec.Cached = true
	return rec, true
}

func (r *Runner) checkSamples(samples []string) error {
	known := make(map[string]bool)
	for _, s := range r.Breakpoints.Samples() {
		known[s] = true
	}
	for _, s := range samples {
		if !known[s] {
			return hcerrors.New(hcerrors.ErrCodeSampleNotFound, "sample %q has no breakpoints", s)
		}
	}
	return nil
}

// logger returns the per-run logger, falling back to the runner's.
func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
