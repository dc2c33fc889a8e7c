// Package plating discovers documentation bundles and renders them into
// provider documentation. This package is the embedding facade: one call
// scans your package roots, builds the registry, and hands back an
// engine ready to plate, validate, or adorn. The underlying pieces live
// in pkg/discovery, pkg/registry, pkg/render, and pkg/plating for
// callers that want to wire them directly.
package plating

import (
	"context"
	"sync"

	"github.com/provide-io/plating/pkg/discovery"
	orchestration "github.com/provide-io/plating/pkg/plating"
	"github.com/provide-io/plating/pkg/registry"
)

// Plating manages a bundle registry and runs documentation workflows
// over it.
type Plating interface {
	// Registry returns the current bundle registry.
	Registry() *registry.Registry

	// Discovery returns the diagnostics of the last scan.
	Discovery() *discovery.Result

	// Rescan re-walks the configured roots and swaps in a fresh registry.
	Rescan(ctx context.Context) error

	// Plate renders every documented bundle into the output tree.
	Plate(ctx context.Context, opts orchestration.PlateOptions) (*orchestration.RunReport, error)

	// Validate dry-run renders every documented bundle.
	Validate(ctx context.Context, opts orchestration.ValidateOptions) (*orchestration.RunReport, error)

	// Adorn scaffolds bundles for catalog components that have none.
	Adorn(ctx context.Context, opts orchestration.AdornOptions) (*orchestration.RunReport, error)
}

// plating is the internal implementation of the Plating interface.
type plating struct {
	mu           sync.RWMutex
	config       *config
	registry     *registry.Registry
	lastScan     *discovery.Result
	orchestrator *orchestration.Orchestrator
}

// New creates a Plating instance, scanning the configured roots once.
func New(ctx context.Context, opts ...Option) (Plating, error) {
	p := &plating{config: newConfig()}
	for _, opt := range opts {
		if err := opt(p.config); err != nil {
			return nil, err
		}
	}
	if err := p.rescan(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Registry returns the current bundle registry.
func (p *plating) Registry() *registry.Registry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.registry
}

// Discovery returns the diagnostics of the last scan.
func (p *plating) Discovery() *discovery.Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastScan
}

// Rescan re-walks the configured roots and swaps in a fresh registry.
// Runs started against the previous registry keep their snapshot.
func (p *plating) Rescan(ctx context.Context) error {
	return p.rescan(ctx)
}

func (p *plating) rescan(ctx context.Context) error {
	result := discovery.Scan(ctx, p.config.roots, p.config.scanOptions()...)
	reg := registry.FromScan(result)

	o, err := orchestration.New(reg, p.config.orchestratorOptions()...)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.registry = reg
	p.lastScan = result
	p.orchestrator = o
	p.mu.Unlock()
	return nil
}

// current returns the orchestrator for the latest scan.
func (p *plating) current() *orchestration.Orchestrator {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.orchestrator
}

// Plate renders every documented bundle into the output tree.
func (p *plating) Plate(ctx context.Context, opts orchestration.PlateOptions) (*orchestration.RunReport, error) {
	report, err := p.current().Plate(ctx, opts)
	p.notify(report)
	return report, err
}

// Validate dry-run renders every documented bundle.
func (p *plating) Validate(ctx context.Context, opts orchestration.ValidateOptions) (*orchestration.RunReport, error) {
	report, err := p.current().Validate(ctx, opts)
	p.notify(report)
	return report, err
}

// Adorn scaffolds bundles for catalog components that have none.
func (p *plating) Adorn(ctx context.Context, opts orchestration.AdornOptions) (*orchestration.RunReport, error) {
	report, err := p.current().Adorn(ctx, opts)
	p.notify(report)
	return report, err
}

// notify invokes registered result hooks for each outcome of a run.
func (p *plating) notify(report *orchestration.RunReport) {
	if report == nil || len(p.config.resultHooks) == 0 {
		return
	}
	for _, res := range report.Results() {
		for _, hook := range p.config.resultHooks {
			hook(res)
		}
	}
}
