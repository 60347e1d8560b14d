package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	hcio "github.com/matzehuels/hicluster/pkg/io"
	"github.com/matzehuels/hicluster/pkg/source"
)

// normalizeCommand creates the normalize command.
func (c *CLI) normalizeCommand() *cobra.Command {
	var (
		data   datasetFlags
		chrom  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Write the normalized contact matrix of one chromosome",
		Long: `Normalize masks low-coverage bins, balances the margins and divides every
entry by the mean of its diagonal within each chromosome arm. The result is
written as a tab-separated matrix; masked entries read "nan".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := c.openDataset(ctx, &data)
			if err != nil {
				return err
			}
			defer d.Close()

			prog := newProgress(c.Logger)
			m, err := d.session.Matrix(ctx, chrom)
			if err != nil {
				return err
			}
			stats, _ := d.session.Stats(chrom)
			prog.done(fmt.Sprintf("Normalized %s", source.NormalizeChromName(chrom)))

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := hcio.WriteMatrix(w, m); err != nil {
				_ = closeFn()
				return fmt.Errorf("write matrix: %w", err)
			}
			if err := closeFn(); err != nil {
				return err
			}

			printSuccess("%d bins, %d masked, %.1f%% defined", stats.Bins, stats.MaskedBins, 100*stats.DefinedFrac)
			printDetail("centromere %s", stats.Centromere)
			if isFile(output) {
				printFile(output)
			}
			return nil
		},
	}

	data.register(cmd)
	cmd.Flags().StringVar(&chrom, "chrom", "", "chromosome to normalize")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	_ = cmd.MarkFlagRequired("chrom")

	return cmd
}
