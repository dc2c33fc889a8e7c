package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/discovery"
	"github.com/provide-io/plating/pkg/plating"
	"github.com/provide-io/plating/pkg/registry"
	"github.com/provide-io/plating/pkg/schema"
)

// Shared flag storage for discovery configuration.
var (
	rootsFlag    []string
	suffixFlag   string
	lastWinsFlag bool
	schemasFlag  string
)

// scanRoots resolves the roots to scan from flags, config, and env.
func scanRoots() []string {
	if roots := viper.GetStringSlice("roots"); len(roots) > 0 {
		return roots
	}
	return rootsFlag
}

// loadRegistry scans the configured roots and builds a registry.
func loadRegistry(ctx context.Context) (*registry.Registry, *discovery.Result) {
	var opts []discovery.Option
	if suffixFlag != "" {
		opts = append(opts, discovery.WithBundleSuffix(suffixFlag))
	}
	if lastWinsFlag {
		opts = append(opts, discovery.WithPolicy(discovery.LastWins))
	}

	result := discovery.Scan(ctx, scanRoots(), opts...)
	for _, warning := range result.Warnings {
		fmt.Fprintln(os.Stderr, "Warning:", warning)
	}
	return registry.FromScan(result), result
}

// loadManifest reads the schema manifest named by --schemas, if any.
func loadManifest() (*schema.Manifest, error) {
	path := viper.GetString("schemas")
	if path == "" {
		path = schemasFlag
	}
	if path == "" {
		return nil, nil
	}
	return schema.LoadManifest(path)
}

// newOrchestrator assembles an orchestrator from the scan and manifest.
func newOrchestrator(reg *registry.Registry, extra ...plating.Option) (*plating.Orchestrator, error) {
	manifest, err := loadManifest()
	if err != nil {
		return nil, err
	}

	opts := make([]plating.Option, 0, len(extra)+2)
	if manifest != nil {
		opts = append(opts,
			plating.WithProvider(manifest.SchemaProvider()),
			plating.WithCatalog(manifest.Catalog()))
	}
	opts = append(opts, extra...)
	return plating.New(reg, opts...)
}

// parseDimensions converts flag strings into dimensions.
func parseDimensions(names []string) []bundle.Dimension {
	dims := make([]bundle.Dimension, 0, len(names))
	for _, name := range names {
		dims = append(dims, bundle.DimensionFromDir(name))
	}
	return dims
}

// printResults writes per-bundle outcomes for a run.
func printResults(report *plating.RunReport) {
	for _, res := range report.Results() {
		switch res.Outcome {
		case plating.OutcomeFailed:
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", res.Ref, res.Err)
		case plating.OutcomeSkippedExists, plating.OutcomeSkippedUndocumented:
			if verbose {
				fmt.Printf("  - %s (%s)\n", res.Ref, res.Outcome)
			}
		default:
			fmt.Printf("  ✓ %s", res.Ref)
			if res.Path != "" {
				fmt.Printf(" -> %s", res.Path)
			}
			fmt.Println()
		}
	}
	fmt.Println(report.Summary())
}
