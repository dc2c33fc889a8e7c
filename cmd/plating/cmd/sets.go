package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/registry"
)

var (
	setsDir         string
	setCreateDim    string
	setCreateTags   []string
	setCreateDesc   string
	setCreateGroups []string
)

// setsCmd represents the sets command.
var setsCmd = &cobra.Command{
	Use:     "sets",
	GroupID: "inspect",
	Short:   "Manage named component sets",
	Long: `Sets are named groups of components organized by domain, stored as
JSON files. Use them to track which components belong to a feature
area, a compliance surface, or a release.

Examples:
  plating sets list
  plating sets show storage
  plating sets create storage -d resources -g "buckets=bucket,bucket_acl"`,
}

// setsListCmd lists registered sets.
var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved component sets",
	RunE:  runSetsList,
}

// setsShowCmd shows one set's contents.
var setsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one component set",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetsShow,
}

// setsCreateCmd creates a set from registry components.
var setsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a component set from discovered bundles",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetsCreate,
}

func init() {
	rootCmd.AddCommand(setsCmd)
	setsCmd.AddCommand(setsListCmd, setsShowCmd, setsCreateCmd)

	setsCmd.PersistentFlags().StringVar(&setsDir, "sets-dir", ".plating-sets", "directory holding set JSON files")
	setsCreateCmd.Flags().StringVarP(&setCreateDim, "dimension", "d", "resources", "dimension the components belong to")
	setsCreateCmd.Flags().StringSliceVarP(&setCreateGroups, "group", "g", nil, "domain=name,name component groups")
	setsCreateCmd.Flags().StringSliceVarP(&setCreateTags, "tag", "t", nil, "tags to attach to the set")
	setsCreateCmd.Flags().StringVar(&setCreateDesc, "description", "", "set description")
}

// loadSets builds a registry with saved sets loaded alongside bundles.
func loadSets(cmd *cobra.Command) (*registry.Registry, error) {
	reg, _ := loadRegistry(cmd.Context())
	if err := reg.LoadSets(setsDir); err != nil {
		return nil, err
	}
	return reg, nil
}

func runSetsList(cmd *cobra.Command, _ []string) error {
	reg, err := loadSets(cmd)
	if err != nil {
		return err
	}

	sets := reg.ListSets("")
	if len(sets) == 0 {
		fmt.Println("No component sets found")
		return nil
	}
	for _, set := range sets {
		fmt.Printf("%s  (%d components", set.Name, set.TotalCount())
		if len(set.Tags) > 0 {
			fmt.Printf(", tags: %s", strings.Join(set.Tags, ", "))
		}
		fmt.Println(")")
		if set.Description != "" {
			fmt.Printf("  %s\n", set.Description)
		}
	}
	return nil
}

func runSetsShow(cmd *cobra.Command, args []string) error {
	reg, err := loadSets(cmd)
	if err != nil {
		return err
	}

	set, ok := reg.GetSet(args[0])
	if !ok {
		return fmt.Errorf("component set %q not found", args[0])
	}

	fmt.Printf("%s\n", set.Name)
	if set.Description != "" {
		fmt.Printf("%s\n", set.Description)
	}
	for _, domain := range set.Domains() {
		fmt.Printf("  %s:\n", domain)
		for _, ref := range set.Components[domain] {
			fmt.Printf("    %s\n", ref)
		}
	}
	return nil
}

func runSetsCreate(cmd *cobra.Command, args []string) error {
	reg, err := loadSets(cmd)
	if err != nil {
		return err
	}

	filters, err := parseGroups(setCreateGroups)
	if err != nil {
		return err
	}

	dim := bundle.DimensionFromDir(setCreateDim)
	set, missing := reg.NewSetFromComponents(args[0], setCreateDesc, dim, filters, setCreateTags)
	for _, m := range missing {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", m)
	}

	if err := reg.RegisterSet(set); err != nil {
		return err
	}
	if err := reg.SaveSets(setsDir); err != nil {
		return err
	}

	fmt.Printf("Created set %s with %d components (%d missing)\n",
		set.Name, set.TotalCount(), len(missing))
	return nil
}

// parseGroups parses repeated domain=name,name flags.
func parseGroups(groups []string) (map[string][]string, error) {
	filters := make(map[string][]string, len(groups))
	for _, group := range groups {
		domain, names, ok := strings.Cut(group, "=")
		if !ok || domain == "" || names == "" {
			return nil, fmt.Errorf("invalid group %q, want domain=name,name", group)
		}
		filters[domain] = append(filters[domain], strings.Split(names, ",")...)
	}
	return filters, nil
}
