package schema

import (
	"context"

	"github.com/provide-io/plating/pkg/bundle"
)

// Provider supplies component schemas. A nil Node with a nil error
// means the provider has no schema for the component; the render layer
// surfaces that as a schema-unavailable failure only if the template
// actually calls schema().
type Provider interface {
	Schema(ctx context.Context, dim bundle.Dimension, name string) (Node, error)
}

// ComponentInfo identifies one component known to the external catalog.
type ComponentInfo struct {
	Name        string
	Dimension   bundle.Dimension
	Description string
}

// Catalog lists the components the external framework knows about,
// documented or not. The adorn workflow diffs this against the
// registry to find bundle-less components.
type Catalog interface {
	Components(ctx context.Context, dim bundle.Dimension) ([]ComponentInfo, error)
}

// StaticProvider is a map-backed Provider, keyed by component reference.
type StaticProvider map[bundle.Ref]Node

// Schema implements Provider.
func (p StaticProvider) Schema(_ context.Context, dim bundle.Dimension, name string) (Node, error) {
	return p[bundle.Ref{Name: name, Dimension: dim}], nil
}

// StaticCatalog is a slice-backed Catalog.
type StaticCatalog []ComponentInfo

// Components implements Catalog.
func (c StaticCatalog) Components(_ context.Context, dim bundle.Dimension) ([]ComponentInfo, error) {
	out := make([]ComponentInfo, 0, len(c))
	for _, info := range c {
		if dim == "" || info.Dimension == dim {
			out = append(out, info)
		}
	}
	return out, nil
}
