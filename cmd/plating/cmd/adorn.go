package cmd

import (
	"github.com/spf13/cobra"

	"github.com/provide-io/plating/pkg/errors"
	"github.com/provide-io/plating/pkg/plating"
)

var (
	adornTarget     string
	adornDimensions []string
)

// adornCmd represents the adorn command.
var adornCmd = &cobra.Command{
	Use:     "adorn",
	GroupID: "generate",
	Short:   "Scaffold bundles for undocumented components",
	Long: `Adorn diffs the schema manifest's component catalog against the
bundles discovered under the configured roots, and creates a starter
bundle for every component that has none.

Each new bundle gets a main template calling example and schema, plus a
placeholder example snippet. Existing bundles are never touched.

Examples:
  plating adorn --schemas api.yaml                 # Scaffold into the first root
  plating adorn --schemas api.yaml --into ./pkg    # Scaffold into ./pkg
  plating adorn --schemas api.yaml -d resources    # Only resources`,
	RunE: runAdorn,
}

func init() {
	rootCmd.AddCommand(adornCmd)

	adornCmd.Flags().StringVar(&adornTarget, "into", "", "tree to create bundles under (default: first scan root)")
	adornCmd.Flags().StringSliceVarP(&adornDimensions, "dimension", "d", nil, "restrict to the given dimension(s)")
}

func runAdorn(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	reg, _ := loadRegistry(ctx)

	o, err := newOrchestrator(reg)
	if err != nil {
		return err
	}

	target := adornTarget
	if target == "" {
		roots := scanRoots()
		if len(roots) == 0 {
			return errors.WrapResource("adorn", "target root", "", errors.ErrInvalidInput)
		}
		target = roots[0]
	}

	report, err := o.Adorn(ctx, plating.AdornOptions{
		Root:       target,
		Dimensions: parseDimensions(adornDimensions),
	})
	if err != nil {
		return err
	}

	printResults(report)
	return report.Err()
}
