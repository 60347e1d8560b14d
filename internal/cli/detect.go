package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	hcio "github.com/matzehuels/hicluster/pkg/io"
	"github.com/matzehuels/hicluster/pkg/pipeline"
)

// detectOptions holds the flags of the detect command.
type detectOptions struct {
	data        datasetFlags
	sv          string
	output      string
	format      string
	chromosomes []string
	samples     []string
	threshold   int
	minDistance int64
	workers     int
	unitTimeout time.Duration
	refresh     bool
	mongoURI    string
}

// detectCommand creates the detect command.
func (c *CLI) detectCommand() *cobra.Command {
	opts := &detectOptions{}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Find breakpoint clusters for every sample and chromosome",
		Long: `Detect normalizes the contact matrices, builds one breakpoint graph per
sample and chromosome and reports the densest cluster of each.

The report is written as CSV (one row per sample, one column per chromosome),
JSON or YAML. The format follows --format or the output file extension.`,
		Example: `  hicluster detect --pixels contacts.tsv.gz --chrom-sizes hg19.sizes \
    --centromeres centromeres.tsv --sv svs.csv -o clusters.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDetect(cmd, opts)
		},
	}

	opts.data.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&opts.sv, "sv", "", "structural variants CSV (unique_id, chrom1, chrom2, start1, start2)")
	fl.StringVarP(&opts.output, "output", "o", "-", "report file (- for stdout)")
	fl.StringVar(&opts.format, "format", "", "report format: csv, json, yaml (default from output extension)")
	fl.StringSliceVar(&opts.chromosomes, "chromosomes", nil, "chromosomes to scan (default from config)")
	fl.StringSliceVar(&opts.samples, "samples", nil, "samples to scan (default all)")
	fl.IntVar(&opts.threshold, "size-threshold", 0, "cluster size cap, 0 for uncapped (default from config)")
	fl.Int64Var(&opts.minDistance, "min-distance", 0, "minimum breakpoint distance in bp (default from config)")
	fl.IntVar(&opts.workers, "workers", 0, "concurrent units (default from config)")
	fl.DurationVar(&opts.unitTimeout, "unit-timeout", 0, "time limit per unit (default from config)")
	fl.BoolVar(&opts.refresh, "refresh", false, "recompute cached clusters")
	fl.StringVar(&opts.mongoURI, "mongo", "", "store the run in MongoDB at this URI")
	_ = cmd.MarkFlagRequired("sv")

	return cmd
}

func (c *CLI) runDetect(cmd *cobra.Command, opts *detectOptions) error {
	ctx := cmd.Context()

	format := opts.format
	if format == "" {
		format = hcio.FormatFromPath(opts.output)
	}
	if !hcio.ValidFormats[format] {
		return fmt.Errorf("unsupported format %q", format)
	}

	bps, err := c.loadBreakpoints(opts.sv)
	if err != nil {
		return err
	}
	d, err := c.openDataset(ctx, &opts.data)
	if err != nil {
		return err
	}
	defer d.Close()

	popts := c.detectPipelineOptions(cmd, opts)
	res, err := c.runner(d, bps).Detect(ctx, popts)
	if err != nil {
		return err
	}

	if err := c.saveRun(ctx, opts.mongoURI, res); err != nil {
		return err
	}
	if err := writeReport(cmd, opts.output, format, res); err != nil {
		return err
	}

	printSuccess("Detected %d clusters in %s", res.Stats.Clusters, res.Stats.Duration.Round(time.Millisecond))
	printRunStats(res.Stats)
	printKeyValue("run", res.RunID)
	if isFile(opts.output) {
		printFile(opts.output)
	}
	return nil
}

// detectPipelineOptions merges the config with the flags the user set.
func (c *CLI) detectPipelineOptions(cmd *cobra.Command, opts *detectOptions) pipeline.Options {
	popts := c.cfg.PipelineOptions()
	popts.Logger = c.Logger
	popts.Samples = opts.samples
	popts.Refresh = opts.refresh

	fl := cmd.Flags()
	if fl.Changed("chromosomes") {
		popts.Chromosomes = opts.chromosomes
	}
	if fl.Changed("size-threshold") {
		popts.SizeThreshold = opts.threshold
		popts.Uncapped = opts.threshold == 0
	}
	if fl.Changed("min-distance") {
		popts.MinDistance = opts.minDistance
	}
	if fl.Changed("workers") {
		popts.Workers = opts.workers
	}
	if fl.Changed("unit-timeout") {
		popts.UnitTimeout = opts.unitTimeout
	}
	return popts
}

// saveRun stores res when a result store is configured.
func (c *CLI) saveRun(ctx context.Context, uri string, res *pipeline.Result) error {
	st, err := c.newStore(ctx, uri)
	if err != nil || st == nil {
		return err
	}
	defer st.Close(context.WithoutCancel(ctx))

	if err := st.SaveRun(ctx, res); err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	c.Logger.Info("stored run", "run", res.RunID, "records", len(res.Records))
	return nil
}

// writeReport writes res to path in format.
func writeReport(cmd *cobra.Command, path, format string, res *pipeline.Result) error {
	w, closeFn, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	if err := hcio.WriteReport(w, res, format); err != nil {
		_ = closeFn()
		return fmt.Errorf("write report: %w", err)
	}
	return closeFn()
}
