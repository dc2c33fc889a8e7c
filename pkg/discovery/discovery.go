// Package discovery scans package roots for documentation bundles and
// produces the deduplicated set visible to the registry. A scan never
// aborts because one root is unreadable; bad roots are recorded as
// warnings and the remaining roots still contribute bundles.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/errors"
	"github.com/provide-io/plating/pkg/logging"
)

// Policy decides which bundle wins when the same (dimension, name) key
// is found under more than one root.
type Policy int

const (
	// FirstWins keeps the bundle from the earliest root in scan order.
	// This is the default: explicit package roots are scanned before
	// global ones, so precedence follows caller intent.
	FirstWins Policy = iota

	// LastWins replaces earlier bundles with later discoveries.
	LastWins
)

// Duplicate records a (dimension, name) collision observed during a scan.
type Duplicate struct {
	Ref     bundle.Ref
	Kept    string // root path of the bundle that stayed registered
	Dropped string // root path of the bundle that lost
}

// Result carries everything one scan produced. Bundles preserve scan
// order; Duplicates and Warnings are diagnostics only.
type Result struct {
	Bundles    []*bundle.Bundle
	Duplicates []Duplicate
	Warnings   []error
}

// options configures a scan.
type options struct {
	suffix     string
	policy     Policy
	dimensions map[bundle.Dimension]bool
}

// Option is a functional option for configuring a scan.
type Option func(*options)

// WithBundleSuffix overrides the bundle directory suffix (default ".plating").
func WithBundleSuffix(suffix string) Option {
	return func(o *options) {
		o.suffix = suffix
	}
}

// WithPolicy sets the deduplication policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithDimensions restricts the scan to the given dimensions.
func WithDimensions(dims ...bundle.Dimension) Option {
	return func(o *options) {
		o.dimensions = make(map[bundle.Dimension]bool, len(dims))
		for _, d := range dims {
			o.dimensions[d] = true
		}
	}
}

// scanner accumulates state across roots within one Scan call.
type scanner struct {
	opts   options
	seen   map[bundle.Ref]int // index into result.Bundles
	result *Result
}

// Scan walks the given roots in order and returns the deduplicated
// bundles they contain. Roots that cannot be read are skipped with a
// recorded warning; partial results are always returned.
func Scan(ctx context.Context, roots []string, opts ...Option) *Result {
	s := &scanner{
		opts: options{
			suffix: bundle.DefaultSuffix,
			policy: FirstWins,
		},
		seen:   make(map[bundle.Ref]int),
		result: &Result{},
	}
	for _, opt := range opts {
		opt(&s.opts)
	}

	log := logging.Ctx(ctx)
	for _, root := range roots {
		if ctx.Err() != nil {
			s.result.Warnings = append(s.result.Warnings,
				errors.NewDiscoveryError(root, errors.ErrCanceled))
			break
		}
		if err := s.scanRoot(ctx, root); err != nil {
			log.Warn().Str("root", root).Err(err).Msg("skipping unreadable root")
			s.result.Warnings = append(s.result.Warnings, errors.NewDiscoveryError(root, err))
		}
	}

	log.Debug().
		Int("bundles", len(s.result.Bundles)).
		Int("duplicates", len(s.result.Duplicates)).
		Int("warnings", len(s.result.Warnings)).
		Msg("discovery scan complete")
	return s.result
}

// scanRoot walks one root looking for bundle directories.
func (s *scanner) scanRoot(ctx context.Context, root string) error {
	if _, err := os.Stat(root); err != nil {
		return errors.WrapIO("stat", root, err)
	}

	return godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: false, // deterministic scan order matters for dedup
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() || !strings.HasSuffix(de.Name(), s.opts.suffix) {
				return nil
			}
			s.addBundleDir(ctx, root, path)
			// A bundle owns its subtree exclusively; never descend into it.
			return filepath.SkipDir
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			logging.Ctx(ctx).Warn().Str("path", path).Err(err).Msg("skipping unreadable directory")
			return godirwalk.SkipNode
		},
	})
}

// addBundleDir turns one matched <name>.plating directory into one or
// more candidate bundles and offers them to the dedup index.
func (s *scanner) addBundleDir(ctx context.Context, root, path string) {
	name := strings.TrimSuffix(filepath.Base(path), s.opts.suffix)
	dim := s.inferDimension(root, path)

	if isMultiComponent(path) {
		// Multi-component layout: each named subdirectory is its own
		// mini-bundle using the same layout one level deeper.
		entries, err := os.ReadDir(path)
		if err != nil {
			s.result.Warnings = append(s.result.Warnings, errors.WrapIO("read", path, err))
			return
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(path, entry.Name())
			s.offer(ctx, bundle.New(entry.Name(), dim, sub))
		}
		return
	}

	s.offer(ctx, bundle.New(name, dim, path))
}

// inferDimension maps the bundle's parent directory onto a dimension.
// Bundles sitting directly under the root are provider bundles.
func (s *scanner) inferDimension(root, path string) bundle.Dimension {
	parent := filepath.Dir(path)
	if parent == filepath.Clean(root) {
		return bundle.Provider
	}
	return bundle.DimensionFromDir(filepath.Base(parent))
}

// isMultiComponent reports whether a bundle directory uses the nested
// layout: no docs/ of its own, but subdirectories that carry one.
func isMultiComponent(path string) bool {
	if _, err := os.Stat(filepath.Join(path, bundle.DocsDir)); err == nil {
		return false
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(path, entry.Name(), bundle.DocsDir)); err == nil {
			return true
		}
	}
	return false
}

// offer applies the dimension filter and dedup policy to one candidate.
func (s *scanner) offer(ctx context.Context, b *bundle.Bundle) {
	if s.opts.dimensions != nil && !s.opts.dimensions[b.Dimension()] {
		return
	}

	ref := b.Ref()
	idx, exists := s.seen[ref]
	if !exists {
		s.seen[ref] = len(s.result.Bundles)
		s.result.Bundles = append(s.result.Bundles, b)
		logging.Ctx(ctx).Debug().
			Str("bundle", ref.String()).
			Str("root", b.Root()).
			Msg("discovered bundle")
		return
	}

	prev := s.result.Bundles[idx]
	switch s.opts.policy {
	case LastWins:
		s.result.Bundles[idx] = b
		s.result.Duplicates = append(s.result.Duplicates, Duplicate{
			Ref:     ref,
			Kept:    b.Root(),
			Dropped: prev.Root(),
		})
	default:
		s.result.Duplicates = append(s.result.Duplicates, Duplicate{
			Ref:     ref,
			Kept:    prev.Root(),
			Dropped: b.Root(),
		})
	}
	logging.Ctx(ctx).Debug().
		Str("bundle", ref.String()).
		Str("dropped", b.Root()).
		Msg("duplicate bundle")
}
