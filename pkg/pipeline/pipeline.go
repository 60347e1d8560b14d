// Package pipeline runs cluster detection over every (sample, chromosome)
// unit of a dataset.
//
// A [Runner] combines a [session.Session], which owns the normalized contact
// matrices, with a [source.BreakpointTable]. For each unit it collects the
// sample's intra-chromosomal breakpoints, builds the breakpoint graph and
// extracts the densest cluster above the size threshold.
//
// # Usage
//
//	sess := session.New(contacts, centromeres, session.Options{Cache: c})
//	runner := pipeline.NewRunner(sess, breakpoints, c, nil, logger)
//	result, err := runner.Detect(ctx, pipeline.Options{SizeThreshold: 10})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range result.Records {
//	    fmt.Println(rec.SampleID, rec.Chromosome, rec.Positions)
//	}
//
// Units are independent; Detect processes them concurrently, bounded by
// [Options.Workers]. Records come back in sample order, then in the order of
// [Options.Chromosomes], whatever order the workers finish in.
package pipeline

import (
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hicluster/pkg/bpgraph"
	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/flow"
	"github.com/matzehuels/hicluster/pkg/source"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API and config
// =============================================================================

const (
	// DefaultResolution is the bin size in base pairs the contact data is
	// expected at.
	DefaultResolution int64 = 400_000

	// DefaultSizeThreshold is the cluster size a source side must exceed to be
	// accepted by the search.
	DefaultSizeThreshold = 10
)

// DefaultWorkers is the number of units detected concurrently.
var DefaultWorkers = runtime.NumCPU()

// Unit statuses reported in [Record.Status].
const (
	StatusOK      = "ok"
	StatusEmpty   = "empty"
	StatusTimeout = "timeout"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a detection run.
type Options struct {
	// Chromosomes restricts the run. Empty selects chr1..chr22 and chrX.
	Chromosomes []string
	// Samples restricts the run. Empty selects every sample.
	Samples []string

	// SizeThreshold is the cluster size cap. Zero selects
	// DefaultSizeThreshold; use Uncapped for a plain densest-subgraph search.
	SizeThreshold int
	// Uncapped accepts every non-empty source side.
	Uncapped bool
	// MinDistance is the genomic distance at or below which breakpoint pairs
	// are not joined. Zero selects bpgraph.DefaultMinDistance.
	MinDistance int64

	// Workers bounds concurrent units. Zero selects DefaultWorkers.
	Workers int
	// UnitTimeout bounds a single unit. A unit that runs out of time is
	// reported with an empty cluster. Zero disables the limit.
	UnitTimeout time.Duration
	// Refresh bypasses cached unit results.
	Refresh bool

	// Cutter is the min-cut engine. Nil selects flow.Dinic.
	Cutter flow.MinCutter
	Logger *log.Logger
}

// ValidateAndSetDefaults checks o and fills zero values with defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Uncapped {
		o.SizeThreshold = 0
	} else if o.SizeThreshold == 0 {
		o.SizeThreshold = DefaultSizeThreshold
	}
	if err := hcerrors.ValidateSizeThreshold(o.SizeThreshold); err != nil {
		return err
	}
	if o.MinDistance < 0 {
		return hcerrors.New(hcerrors.ErrCodeInvalidConfig, "min distance must be non-negative, got %d", o.MinDistance)
	}
	if o.MinDistance == 0 {
		o.MinDistance = bpgraph.DefaultMinDistance
	}
	if o.Workers < 0 {
		return hcerrors.New(hcerrors.ErrCodeInvalidConfig, "workers must be non-negative, got %d", o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.UnitTimeout < 0 {
		return hcerrors.New(hcerrors.ErrCodeInvalidConfig, "unit timeout must be non-negative, got %s", o.UnitTimeout)
	}

	if len(o.Chromosomes) == 0 {
		o.Chromosomes = source.DefaultChromosomes()
	}
	chroms := make([]string, 0, len(o.Chromosomes))
	for _, c := range o.Chromosomes {
		if err := hcerrors.ValidateChromosomeName(c); err != nil {
			return err
		}
		c = source.NormalizeChromName(c)
		if !slices.Contains(chroms, c) {
			chroms = append(chroms, c)
		}
	}
	o.Chromosomes = chroms

	for _, s := range o.Samples {
		if err := hcerrors.ValidateSampleID(s); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Record is the cluster found for one (sample, chromosome) unit.
type Record struct {
	SampleID   string  `json:"sample_id" yaml:"sample_id" bson:"sample_id"`
	Chromosome string  `json:"chromosome" yaml:"chromosome" bson:"chromosome"`
	Positions  []int64 `json:"positions" yaml:"positions" bson:"positions"`

	Status      string  `json:"status" yaml:"status" bson:"status"`
	Breakpoints int     `json:"breakpoints" yaml:"breakpoints" bson:"breakpoints"`
	Edges       int     `json:"edges" yaml:"edges" bson:"edges"`
	Density     float64 `json:"density" yaml:"density" bson:"density"`
	Probes      int     `json:"probes" yaml:"probes" bson:"probes"`
	Cached      bool    `json:"cached,omitempty" yaml:"cached,omitempty" bson:"cached"`
}

// Result is the outcome of a detection run.
type Result struct {
	RunID       string    `json:"run_id" yaml:"run_id" bson:"run_id"`
	Started     time.Time `json:"started" yaml:"started" bson:"started"`
	Samples     []string  `json:"samples" yaml:"samples" bson:"samples"`
	Chromosomes []string  `json:"chromosomes" yaml:"chromosomes" bson:"chromosomes"`
	Records     []Record  `json:"records" yaml:"records" bson:"records"`
	Stats       Stats     `json:"stats" yaml:"stats" bson:"stats"`
}

// Stats summarizes a run.
type Stats struct {
	Units     int           `json:"units" yaml:"units" bson:"units"`
	Clusters  int           `json:"clusters" yaml:"clusters" bson:"clusters"`
	TimedOut  int           `json:"timed_out" yaml:"timed_out" bson:"timed_out"`
	CacheHits int           `json:"cache_hits" yaml:"cache_hits" bson:"cache_hits"`
	Duration  time.Duration `json:"duration" yaml:"duration" bson:"duration"`
}

// Cluster returns the positions found for sample on chrom, or nil when the
// unit is not part of r.
func (r *Result) Cluster(sample, chrom string) []int64 {
	chrom = source.NormalizeChromName(chrom)
	for _, rec := range r.Records {
		if rec.SampleID == sample && rec.Chromosome == chrom {
			return rec.Positions
		}
	}
	return nil
}
