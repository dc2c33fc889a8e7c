// Package plating coordinates full documentation runs over a registry:
// rendering every documented bundle into an output tree (plate),
// scaffolding bundles for undocumented components (adorn), and
// dry-run checking (validate).
//
// Runs fan bundles out across a bounded number of goroutines. One
// bundle's failure never cancels its siblings; each task's outcome is
// collected into a RunReport and judged at the end.
package plating

import (
	"os"
	"time"

	"github.com/provide-io/plating/pkg/errors"
	"github.com/provide-io/plating/pkg/registry"
	"github.com/provide-io/plating/pkg/render"
	"github.com/provide-io/plating/pkg/schema"
)

// Defaults for orchestrator tuning knobs.
const (
	// DefaultConcurrency bounds the number of in-flight bundle tasks.
	DefaultConcurrency = 8

	// DefaultMaxAttempts bounds retries of transient write failures.
	DefaultMaxAttempts = 3

	// DirPermissions is used for created output directories.
	DirPermissions = 0o755

	// FilePermissions is used for written documentation files.
	FilePermissions = 0o644
)

// writeFunc writes one output file. Injectable so tests can exercise
// the retry path without real filesystem faults.
type writeFunc func(path string, data []byte, perm os.FileMode) error

// Orchestrator drives adorn/plate/validate workflows. The registry,
// schema provider, catalog, and engine are injected at construction,
// never global, so tests can build isolated instances.
type Orchestrator struct {
	registry *registry.Registry
	provider schema.Provider
	catalog  schema.Catalog
	engine   *render.Engine

	concurrency int
	maxAttempts int
	timeout     time.Duration
	write       writeFunc
}

// Option is a functional option for configuring an Orchestrator.
type Option func(*Orchestrator)

// WithProvider sets the external schema provider.
func WithProvider(p schema.Provider) Option {
	return func(o *Orchestrator) { o.provider = p }
}

// WithCatalog sets the external component catalog used by adorn.
func WithCatalog(c schema.Catalog) Option {
	return func(o *Orchestrator) { o.catalog = c }
}

// WithEngine sets the render engine.
func WithEngine(e *render.Engine) Option {
	return func(o *Orchestrator) { o.engine = e }
}

// WithConcurrency bounds the number of concurrent bundle tasks.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMaxAttempts bounds write attempts for transient failures.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithBundleTimeout sets an optional per-bundle timeout. Zero means
// no timeout. A timed-out bundle is reported as failed, not retried.
func WithBundleTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// withWriteFunc overrides the file writer (tests only).
func withWriteFunc(w writeFunc) Option {
	return func(o *Orchestrator) { o.write = w }
}

// New creates an orchestrator over a populated registry.
func New(reg *registry.Registry, opts ...Option) (*Orchestrator, error) {
	if reg == nil {
		return nil, errors.WrapResource("create", "orchestrator", "", errors.ErrInvalidInput)
	}
	o := &Orchestrator{
		registry:    reg,
		concurrency: DefaultConcurrency,
		maxAttempts: DefaultMaxAttempts,
		write:       os.WriteFile,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.engine == nil {
		o.engine = render.NewEngine()
	}
	return o, nil
}

// Registry returns the registry this orchestrator runs over.
func (o *Orchestrator) Registry() *registry.Registry {
	return o.registry
}
