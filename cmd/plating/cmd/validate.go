package cmd

import (
	"github.com/spf13/cobra"

	"github.com/provide-io/plating/pkg/plating"
)

var validateDimensions []string

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:     "validate",
	GroupID: "generate",
	Short:   "Dry-run render every documented bundle",
	Long: `Validate renders every documented bundle without writing anything,
reporting broken templates, missing examples, unresolvable partials,
and template cycles.

The exit status is non-zero when any bundle fails, which makes validate
suitable as a CI gate.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringSliceVarP(&validateDimensions, "dimension", "d", nil, "restrict to the given dimension(s)")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	reg, _ := loadRegistry(ctx)

	o, err := newOrchestrator(reg)
	if err != nil {
		return err
	}

	report, err := o.Validate(ctx, plating.ValidateOptions{
		Dimensions: parseDimensions(validateDimensions),
	})
	if err != nil {
		return err
	}

	printResults(report)
	return report.Err()
}
