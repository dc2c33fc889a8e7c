// Package render wraps text/template into the bundle rendering engine.
// It binds the four documentation functions (schema, example, include,
// render) as closures over a per-bundle Context, detects partial
// cycles, and caches compiled templates keyed by content hash.
package render

import (
	"context"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/schema"
)

// Context is the ephemeral per-bundle data a single render works
// against. It is built just before rendering and owned exclusively by
// that render; nothing retains it afterwards.
type Context struct {
	Name      string
	Dimension bundle.Dimension

	// Language tags example code fences.
	Language string

	// Schema is the component's schema tree, or nil when the provider
	// has none. A nil schema only fails the render if the template
	// calls schema().
	Schema schema.Node

	// Examples and Partials are the bundle's lazily-loaded asset maps.
	Examples map[string]string
	Partials map[string]string

	// Provider carries free-form provider metadata for templates.
	Provider map[string]string
}

// BuildContext assembles a render context from a bundle and its
// externally-supplied schema.
func BuildContext(ctx context.Context, b *bundle.Bundle, provider schema.Provider) (*Context, error) {
	examples, err := b.Examples()
	if err != nil {
		return nil, err
	}
	partials, err := b.Partials()
	if err != nil {
		return nil, err
	}
	meta, err := b.Metadata()
	if err != nil {
		return nil, err
	}

	rc := &Context{
		Name:      b.Name(),
		Dimension: b.Dimension(),
		Language:  b.Language(),
		Examples:  examples,
		Partials:  partials,
		Provider:  meta.Provider,
	}

	if provider != nil {
		node, err := provider.Schema(ctx, b.Dimension(), b.Name())
		if err != nil {
			return nil, err
		}
		rc.Schema = node
	}
	return rc, nil
}
