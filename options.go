package plating

import (
	"time"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/discovery"
	orchestration "github.com/provide-io/plating/pkg/plating"
	"github.com/provide-io/plating/pkg/schema"
)

// Option is a function that configures a Plating instance.
type Option func(*config) error

// ResultHook observes one bundle's outcome after a run completes.
type ResultHook func(orchestration.Result)

// config collects everything the facade needs to build its parts.
type config struct {
	roots       []string
	suffix      string
	policy      discovery.Policy
	dimensions  []bundle.Dimension
	provider    schema.Provider
	catalog     schema.Catalog
	concurrency int
	maxAttempts int
	timeout     time.Duration
	resultHooks []ResultHook
}

func newConfig() *config {
	return &config{
		roots: []string{"."},
	}
}

// scanOptions translates the config into discovery options.
func (c *config) scanOptions() []discovery.Option {
	var opts []discovery.Option
	if c.suffix != "" {
		opts = append(opts, discovery.WithBundleSuffix(c.suffix))
	}
	if c.policy != discovery.FirstWins {
		opts = append(opts, discovery.WithPolicy(c.policy))
	}
	if len(c.dimensions) > 0 {
		opts = append(opts, discovery.WithDimensions(c.dimensions...))
	}
	return opts
}

// orchestratorOptions translates the config into orchestrator options.
func (c *config) orchestratorOptions() []orchestration.Option {
	var opts []orchestration.Option
	if c.provider != nil {
		opts = append(opts, orchestration.WithProvider(c.provider))
	}
	if c.catalog != nil {
		opts = append(opts, orchestration.WithCatalog(c.catalog))
	}
	if c.concurrency > 0 {
		opts = append(opts, orchestration.WithConcurrency(c.concurrency))
	}
	if c.maxAttempts > 0 {
		opts = append(opts, orchestration.WithMaxAttempts(c.maxAttempts))
	}
	if c.timeout > 0 {
		opts = append(opts, orchestration.WithBundleTimeout(c.timeout))
	}
	return opts
}

// WithRoots configures the package roots scanned for bundles.
func WithRoots(roots ...string) Option {
	return func(c *config) error {
		c.roots = roots
		return nil
	}
}

// WithBundleSuffix overrides the bundle directory suffix.
func WithBundleSuffix(suffix string) Option {
	return func(c *config) error {
		c.suffix = suffix
		return nil
	}
}

// WithLastWins makes later roots override earlier ones on duplicates.
func WithLastWins() Option {
	return func(c *config) error {
		c.policy = discovery.LastWins
		return nil
	}
}

// WithDimensions restricts discovery to the given dimensions.
func WithDimensions(dims ...bundle.Dimension) Option {
	return func(c *config) error {
		c.dimensions = dims
		return nil
	}
}

// WithSchemaProvider configures the external schema source.
func WithSchemaProvider(p schema.Provider) Option {
	return func(c *config) error {
		c.provider = p
		return nil
	}
}

// WithCatalog configures the component catalog used by adorn.
func WithCatalog(cat schema.Catalog) Option {
	return func(c *config) error {
		c.catalog = cat
		return nil
	}
}

// WithSchemaManifest loads schemas and catalog entries from a manifest
// file, replacing any provider or catalog configured before it.
func WithSchemaManifest(path string) Option {
	return func(c *config) error {
		m, err := schema.LoadManifest(path)
		if err != nil {
			return err
		}
		c.provider = m.SchemaProvider()
		c.catalog = m.Catalog()
		return nil
	}
}

// WithConcurrency bounds concurrent bundle tasks during runs.
func WithConcurrency(n int) Option {
	return func(c *config) error {
		c.concurrency = n
		return nil
	}
}

// WithMaxAttempts bounds write attempts for transient failures.
func WithMaxAttempts(n int) Option {
	return func(c *config) error {
		c.maxAttempts = n
		return nil
	}
}

// WithBundleTimeout sets an optional per-bundle timeout.
func WithBundleTimeout(d time.Duration) Option {
	return func(c *config) error {
		c.timeout = d
		return nil
	}
}

// WithResultHook registers a callback invoked for every bundle outcome
// after a run completes.
func WithResultHook(hook ResultHook) Option {
	return func(c *config) error {
		c.resultHooks = append(c.resultHooks, hook)
		return nil
	}
}
