package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titler capitalizes dimension names for display headings.
var titler = cases.Title(language.English)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:     "list [dimension...]",
	GroupID: "inspect",
	Short:   "List discovered bundles by dimension",
	Long: `List scans the configured roots and prints every discovered bundle
grouped by dimension, marking which ones carry a main template.
Dimension arguments (e.g. resources, data_sources) restrict the output.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reg, result := loadRegistry(ctx)

	if reg.Len() == 0 {
		fmt.Println("No bundles found")
		return nil
	}

	dims := reg.Dimensions()
	if len(args) > 0 {
		dims = parseDimensions(args)
	}

	for _, dim := range dims {
		heading := titler.String(strings.ReplaceAll(dim.String(), "_", " "))
		fmt.Printf("%ss:\n", heading)
		for _, b := range reg.List(dim) {
			marker := " "
			if b.IsDocumented() {
				marker = "*"
			}
			fmt.Printf("  %s %s  (%s)\n", marker, b.Name(), b.Root())
		}
		fmt.Println()
	}

	fmt.Printf("%d bundles (* = documented)\n", reg.Len())
	if len(result.Duplicates) > 0 {
		fmt.Printf("%d duplicates dropped; run with -v for details\n", len(result.Duplicates))
	}
	return nil
}
