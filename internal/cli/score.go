package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	hcerrors "github.com/matzehuels/hicluster/pkg/errors"
)

// scoreCommand creates the score command.
func (c *CLI) scoreCommand() *cobra.Command {
	var (
		data    datasetFlags
		chrom   string
		summary bool
	)

	cmd := &cobra.Command{
		Use:   "score POS1 POS2 [POS1 POS2 ...]",
		Short: "Look up normalized scores of breakpoint pairs",
		Long: `Score prints the normalized contact score of each position pair on one
chromosome. Pairs that are too close, fall into adjacent bins, lie outside
the chromosome or touch masked bins print "nan".`,
		Example: `  hicluster score --pixels contacts.tsv.gz --chrom-sizes hg19.sizes \
    --centromeres centromeres.tsv --chrom 1 1200000 5400000`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected position pairs, got %d positions", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parsePairs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := c.openDataset(ctx, &data)
			if err != nil {
				return err
			}
			defer d.Close()

			out := cmd.OutOrStdout()
			for _, p := range pairs {
				v, ok, err := d.session.Score(ctx, chrom, p[0], p[1])
				if err != nil {
					return err
				}
				if !ok {
					v = math.NaN()
				}
				fmt.Fprintf(out, "%d\t%d\t%s\n", p[0], p[1], formatScore(v))
			}

			if summary {
				scores, err := d.session.Scores(ctx, chrom, pairs)
				if err != nil {
					return err
				}
				if len(scores) == 0 {
					printWarning("no pair carries contact evidence")
					return nil
				}
				mean, std := stat.MeanStdDev(scores, nil)
				printKeyValue("defined", fmt.Sprintf("%d of %d", len(scores), len(pairs)))
				printKeyValue("mean", formatScore(mean))
				printKeyValue("std", formatScore(std))
			}
			return nil
		},
	}

	data.register(cmd)
	cmd.Flags().StringVar(&chrom, "chrom", "", "chromosome of the positions")
	cmd.Flags().BoolVar(&summary, "summary", false, "print mean and spread of the defined scores")
	_ = cmd.MarkFlagRequired("chrom")

	return cmd
}

func parsePairs(args []string) ([][2]int64, error) {
	pairs := make([][2]int64, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		var p [2]int64
		for k := range p {
			v, err := strconv.ParseInt(args[i+k], 10, 64)
			if err != nil {
				return nil, hcerrors.New(hcerrors.ErrCodeInvalidInput, "invalid position %q", args[i+k])
			}
			if err := hcerrors.ValidatePosition(v); err != nil {
				return nil, err
			}
			p[k] = v
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
