package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hicluster/pkg/render/nodelink"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		data      datasetFlags
		sv        string
		sample    string
		chrom     string
		output    string
		format    string
		threshold int
		detailed  bool
		isolated  bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the breakpoint graph of one sample and chromosome",
		Long: `Graph builds the breakpoint graph of one sample on one chromosome and
writes it as Graphviz DOT or SVG, with the detected cluster highlighted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
				if format != "svg" {
					format = "dot"
				}
			}
			if format != "dot" && format != "svg" {
				return fmt.Errorf("unsupported graph format %q", format)
			}

			ctx := cmd.Context()
			bps, err := c.loadBreakpoints(sv)
			if err != nil {
				return err
			}
			d, err := c.openDataset(ctx, &data)
			if err != nil {
				return err
			}
			defer d.Close()

			popts := c.cfg.PipelineOptions()
			popts.Logger = c.Logger
			if cmd.Flags().Changed("size-threshold") {
				popts.SizeThreshold, popts.Uncapped = threshold, threshold == 0
			}
			u, err := c.runner(d, bps).Analyze(ctx, sample, chrom, popts)
			if err != nil {
				return err
			}

			out := []byte(nodelink.ToDOT(u.Graph, u.Vertices, u.Solve.Vertices, nodelink.Options{
				Title:        sample + " " + u.Chromosome,
				Detailed:     detailed,
				HideIsolated: !isolated,
			}))
			if format == "svg" {
				if out, err = nodelink.RenderSVG(ctx, string(out)); err != nil {
					return err
				}
			}

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if _, err := w.Write(out); err != nil {
				_ = closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}

			printSuccess("%d breakpoints, %d edges, cluster of %d", u.Vertices.Len(), u.Graph.EdgeCount(), len(u.Positions))
			printDetail("%d pairs: %d kept, %d too close, %d adjacent, %d undefined",
				u.Build.Pairs, u.Build.Kept, u.Build.TooClose, u.Build.AdjacentBins, u.Build.Undefined)
			if isFile(output) {
				printFile(output)
			}
			return nil
		},
	}

	data.register(cmd)
	fl := cmd.Flags()
	fl.StringVar(&sv, "sv", "", "structural variants table")
	fl.StringVar(&sample, "sample", "", "sample id")
	fl.StringVar(&chrom, "chrom", "", "chromosome")
	fl.StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	fl.StringVar(&format, "format", "", "dot or svg (default from output extension)")
	fl.IntVar(&threshold, "size-threshold", 0, "cluster size cap, 0 for uncapped (default from config)")
	fl.BoolVar(&detailed, "detailed", false, "label edges with their weights")
	fl.BoolVar(&isolated, "isolated", false, "keep breakpoints without edges")
	for _, name := range []string{"sv", "sample", "chrom"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
