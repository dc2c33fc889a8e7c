package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/provide-io/plating/pkg/plating"
)

var (
	plateOut         string
	plateForce       bool
	plateCheck       bool
	plateDimensions  []string
	plateConcurrency int
	plateAttempts    int
	plateTimeout     time.Duration
)

// plateCmd represents the plate command.
var plateCmd = &cobra.Command{
	Use:     "plate",
	GroupID: "generate",
	Short:   "Render every documented bundle into the output tree",
	Long: `Plate renders every documented bundle found under the configured
roots into the output directory, one markdown file per component at
<out>/<dimension>/<name>.md.

Bundles render concurrently and independently: one bundle's broken
template or missing example never blocks its siblings. Existing output
files are left alone unless --force is given.

Examples:
  plating plate --out docs                    # Render everything
  plating plate --out docs --force            # Overwrite existing files
  plating plate --out docs -d resources       # Only resources
  plating plate --out docs --schemas api.yaml # With schema tables`,
	RunE: runPlate,
}

func init() {
	rootCmd.AddCommand(plateCmd)

	plateCmd.Flags().StringVarP(&plateOut, "out", "o", "docs", "output directory")
	plateCmd.Flags().BoolVarP(&plateForce, "force", "f", false, "overwrite existing output files")
	plateCmd.Flags().BoolVar(&plateCheck, "check-writes", false, "re-read each written file to verify it landed intact")
	plateCmd.Flags().StringSliceVarP(&plateDimensions, "dimension", "d", nil, "restrict to the given dimension(s)")
	plateCmd.Flags().IntVar(&plateConcurrency, "concurrency", plating.DefaultConcurrency, "maximum concurrent bundle renders")
	plateCmd.Flags().IntVar(&plateAttempts, "max-attempts", plating.DefaultMaxAttempts, "write attempts for transient failures")
	plateCmd.Flags().DurationVar(&plateTimeout, "bundle-timeout", 0, "per-bundle timeout (0 disables)")
}

func runPlate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	reg, _ := loadRegistry(ctx)

	o, err := newOrchestrator(reg,
		plating.WithConcurrency(plateConcurrency),
		plating.WithMaxAttempts(plateAttempts),
		plating.WithBundleTimeout(plateTimeout))
	if err != nil {
		return err
	}

	report, err := o.Plate(ctx, plating.PlateOptions{
		OutputDir:  plateOut,
		Dimensions: parseDimensions(plateDimensions),
		Force:      plateForce,
		Validate:   plateCheck,
	})
	if err != nil {
		return err
	}

	printResults(report)
	return report.Err()
}
