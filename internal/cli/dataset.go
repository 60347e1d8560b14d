package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hicluster/pkg/cache"
	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
	"github.com/matzehuels/hicluster/pkg/pipeline"
	"github.com/matzehuels/hicluster/pkg/session"
	"github.com/matzehuels/hicluster/pkg/source"
	"github.com/matzehuels/hicluster/pkg/source/local"
)

// =============================================================================
// Dataset Flags
// =============================================================================

// datasetFlags names the contact data of one resolution.
type datasetFlags struct {
	pixels        string
	chromSizes    string
	centromeres   string
	resolution    int64
	zeroThreshold float64
	noCache       bool
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.pixels, "pixels", "", "contact pixels from cooler dump --join (.gz and .zst accepted)")
	fl.StringVar(&f.chromSizes, "chrom-sizes", "", "chromosome sizes file (default inferred from pixels)")
	fl.StringVar(&f.centromeres, "centromeres", "", "centromere table (chrom, start, end)")
	fl.Int64Var(&f.resolution, "resolution", 0, "bin size in base pairs (default from config)")
	fl.Float64Var(&f.zeroThreshold, "zero-threshold", 0, "coverage mask zero fraction (default from config)")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the matrix and cluster cache")
	_ = cmd.MarkFlagRequired("pixels")
	_ = cmd.MarkFlagRequired("centromeres")
}

// dataset is an opened session plus the cache backing it.
type dataset struct {
	session *session.Session
	cache   cache.Cache
}

func (d *dataset) Close() error { return d.cache.Close() }

// openDataset loads the contact data and centromeres named by f.
func (c *CLI) openDataset(ctx context.Context, f *datasetFlags) (*dataset, error) {
	resolution := f.resolution
	if resolution == 0 {
		resolution = c.cfg.Resolution
	}
	if err := hcerrors.ValidateResolution(resolution); err != nil {
		return nil, err
	}
	zero := f.zeroThreshold
	if zero == 0 {
		zero = c.cfg.ZeroThreshold
	}

	prog := newProgress(c.Logger)
	contacts, err := local.LoadContacts(f.pixels, f.chromSizes, resolution)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	cents, err := local.LoadCentromeres(f.centromeres)
	if err != nil {
		return nil, fmt.Errorf("load centromeres: %w", err)
	}
	prog.done(fmt.Sprintf("Loaded %d chromosomes at %d bp", len(contacts.Chromosomes()), resolution))

	store, err := c.newCache(ctx, f.noCache)
	if err != nil {
		return nil, err
	}
	sess := session.New(contacts, cents, session.Options{
		ZeroThreshold: zero,
		MinDistance:   c.cfg.MinDistance,
		Parallelism:   c.cfg.Workers,
		Cache:         store,
		Logger:        c.Logger,
	})
	return &dataset{session: sess, cache: store}, nil
}

// =============================================================================
// Breakpoints
// =============================================================================

// loadBreakpoints reads the SV table and warns about skipped rows.
func (c *CLI) loadBreakpoints(path string) (*source.Breakpoints, error) {
	bps, skipped, err := local.LoadBreakpoints(path)
	if err != nil {
		return nil, fmt.Errorf("load breakpoints: %w", err)
	}
	if skipped > 0 {
		c.Logger.Warn("skipped malformed breakpoint rows", "rows", skipped, "file", path)
	}
	c.Logger.Debug("loaded breakpoints", "samples", len(bps.Samples()), "rows", len(bps.Rows()))
	return bps, nil
}

// runner builds a pipeline runner over d and bps sharing the dataset cache.
func (c *CLI) runner(d *dataset, bps source.BreakpointTable) *pipeline.Runner {
	return pipeline.NewRunner(d.session, bps, d.cache, nil, c.Logger)
}

// =============================================================================
// Output
// =============================================================================

// openOutput returns the writer for path: the command's output for "" and
// "-", a new file otherwise. The returned close func is a no-op for the
// command's output.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// isFile reports whether path names a file rather than stdout.
func isFile(path string) bool { return path != "" && path != "-" }
