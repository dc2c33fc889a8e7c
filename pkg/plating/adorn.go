package plating

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/errors"
	"github.com/provide-io/plating/pkg/logging"
	"github.com/provide-io/plating/pkg/schema"
)

// AdornOptions configures an adorn run.
type AdornOptions struct {
	// Root is the source tree under which new bundles are created.
	Root string

	// Dimensions restricts the run; empty means every dimension the
	// catalog knows.
	Dimensions []bundle.Dimension
}

// Adorn diffs the external catalog against the registry and scaffolds
// a starter bundle for every component that has none. Existing bundles
// are never touched.
func (o *Orchestrator) Adorn(ctx context.Context, opts AdornOptions) (*RunReport, error) {
	if o.catalog == nil {
		return nil, errors.WrapResource("adorn", "catalog", "", errors.ErrInvalidInput)
	}
	if opts.Root == "" {
		return nil, errors.WrapResource("adorn", "root", "", errors.ErrInvalidInput)
	}

	// The empty dimension asks the catalog for every component it
	// knows, user-defined dimensions included.
	dims := opts.Dimensions
	if len(dims) == 0 {
		dims = []bundle.Dimension{""}
	}

	report := &RunReport{}
	for _, dim := range dims {
		if ctx.Err() != nil {
			break
		}
		infos, err := o.catalog.Components(ctx, dim)
		if err != nil {
			return nil, errors.WrapResource("list", "catalog components", dim.String(), err)
		}
		for _, info := range infos {
			ref := bundle.Ref{Name: info.Name, Dimension: info.Dimension}
			if _, ok := o.registry.Get(info.Dimension, info.Name); ok {
				report.add(Result{Ref: ref, Outcome: OutcomeSkippedExists})
				continue
			}
			report.add(o.adornOne(ctx, opts.Root, info))
		}
	}

	logging.Ctx(ctx).Info().
		Int("created", report.Succeeded()).
		Int("skipped", report.Skipped()).
		Int("failed", report.Failed()).
		Msg("adorn run complete")
	return report, nil
}

// adornOne creates the skeleton bundle for one catalog component and
// registers it so a plate run in the same process picks it up.
func (o *Orchestrator) adornOne(ctx context.Context, root string, info schema.ComponentInfo) Result {
	ref := bundle.Ref{Name: info.Name, Dimension: info.Dimension}
	bundleRoot := filepath.Join(root, dimensionDir(info.Dimension), info.Name+bundle.DefaultSuffix)

	if _, err := os.Stat(bundleRoot); err == nil {
		// A bundle directory exists on disk even though the registry
		// missed it; leave it alone.
		return Result{Ref: ref, Outcome: OutcomeSkippedExists, Path: bundleRoot}
	}

	files := map[string]string{
		filepath.Join(bundle.DocsDir, info.Name+".tmpl.md"): starterTemplate(info),
		filepath.Join(bundle.ExamplesDir, "basic.tf"):       starterExample(info),
	}
	for rel, content := range files {
		path := filepath.Join(bundleRoot, rel)
		if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
			return Result{Ref: ref, Outcome: OutcomeFailed, Path: bundleRoot,
				Err: errors.WrapIO("create", filepath.Dir(path), err)}
		}
		if err := o.write(path, []byte(content), FilePermissions); err != nil {
			return Result{Ref: ref, Outcome: OutcomeFailed, Path: bundleRoot,
				Err: errors.WrapIO("write", path, err)}
		}
	}

	b := bundle.New(info.Name, info.Dimension, bundleRoot)
	o.registry.Register(b)

	logging.Ctx(ctx).Debug().Str("bundle", ref.String()).Str("path", bundleRoot).Msg("created bundle skeleton")
	return Result{Ref: ref, Outcome: OutcomeCreated, Path: bundleRoot}
}

// starterTemplate builds the boilerplate main template for a new bundle.
func starterTemplate(info schema.ComponentInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# {{ .Name }}\n\n")
	if info.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", info.Description)
	} else {
		fmt.Fprintf(&sb, "TODO: describe %s.\n\n", info.Name)
	}
	sb.WriteString("## Example Usage\n\n")
	sb.WriteString("{{ example \"basic\" }}\n\n")
	sb.WriteString("## Schema\n\n")
	sb.WriteString("{{ schema }}\n")
	return sb.String()
}

// starterExample builds the placeholder example snippet.
func starterExample(info schema.ComponentInfo) string {
	switch info.Dimension {
	case bundle.DataSource:
		return fmt.Sprintf("data %q %q {\n}\n", info.Name, "example")
	case bundle.Function:
		return fmt.Sprintf("output \"example\" {\n  value = provider::%s(...)\n}\n", info.Name)
	case bundle.Provider:
		return fmt.Sprintf("provider %q {\n}\n", info.Name)
	default:
		return fmt.Sprintf("resource %q %q {\n}\n", info.Name, "example")
	}
}
