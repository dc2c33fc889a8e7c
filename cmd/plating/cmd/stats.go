package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "inspect",
	Short:   "Show documentation coverage per dimension",
	RunE:    runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	reg, result := loadRegistry(ctx)

	if reg.Len() == 0 {
		fmt.Println("No bundles found")
		return nil
	}

	fmt.Println("Documentation coverage:")
	for _, dim := range reg.Dimensions() {
		stats := reg.Stats()[dim]
		heading := titler.String(strings.ReplaceAll(dim.String(), "_", " "))
		pct := 0
		if stats.Total > 0 {
			pct = 100 * stats.WithMainTemplate / stats.Total
		}
		fmt.Printf("  %-14s %3d/%3d documented (%d%%)\n",
			heading+"s:", stats.WithMainTemplate, stats.Total, pct)
	}

	if len(result.Duplicates) > 0 {
		fmt.Printf("\nDuplicates dropped during discovery: %d\n", len(result.Duplicates))
		for _, dup := range result.Duplicates {
			fmt.Printf("  %s kept %s, dropped %s\n", dup.Ref, dup.Kept, dup.Dropped)
		}
	}
	return nil
}
