package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	hcio "github.com/matzehuels/hicluster/pkg/io"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Convert a cluster report between CSV, JSON and YAML",
		Long: `Convert reads a report written by detect and writes it in another format.
Formats follow the file extensions unless --from or --to is given. CSV keeps
only the clusters, so converting from CSV loses run metadata.`,
		Example: `  hicluster convert clusters.json clusters.csv`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			if from == "" {
				from = hcio.FormatFromPath(in)
			}
			if to == "" {
				to = hcio.FormatFromPath(out)
			}

			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := hcio.ReadReport(f, from)
			if err != nil {
				return fmt.Errorf("read %s: %w", in, err)
			}

			if err := writeReport(cmd, out, to, res); err != nil {
				return err
			}
			printSuccess("Converted %d records from %s to %s", len(res.Records), from, to)
			if isFile(out) {
				printFile(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (default from extension)")
	cmd.Flags().StringVar(&to, "to", "", "output format (default from extension)")

	return cmd
}
