package schema

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/errors"
)

// ComponentSpec is one component's entry in a schema manifest.
type ComponentSpec struct {
	Description string         `yaml:"description,omitempty"`
	Schema      map[string]any `yaml:"schema,omitempty"`
}

// Manifest is a file-backed source of component schemas and catalog
// entries, grouped by dimension. It backs both the schema provider and
// the adorn catalog when no live framework is wired in.
type Manifest struct {
	Resources   map[string]ComponentSpec `yaml:"resources,omitempty"`
	DataSources map[string]ComponentSpec `yaml:"data_sources,omitempty"`
	Functions   map[string]ComponentSpec `yaml:"functions,omitempty"`
	Providers   map[string]ComponentSpec `yaml:"provider,omitempty"`
}

// LoadManifest reads a YAML schema manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, errors.WrapResource("parse", "schema manifest", path, err)
	}
	return m, nil
}

// byDimension pairs each manifest section with its dimension.
func (m *Manifest) byDimension() map[bundle.Dimension]map[string]ComponentSpec {
	return map[bundle.Dimension]map[string]ComponentSpec{
		bundle.Resource:   m.Resources,
		bundle.DataSource: m.DataSources,
		bundle.Function:   m.Functions,
		bundle.Provider:   m.Providers,
	}
}

// SchemaProvider adapts the manifest into a Provider. Components
// without a schema section stay absent, so templates that call
// schema() against them fail the schema-unavailable way.
func (m *Manifest) SchemaProvider() StaticProvider {
	p := StaticProvider{}
	for dim, specs := range m.byDimension() {
		for name, spec := range specs {
			if spec.Schema == nil {
				continue
			}
			p[bundle.Ref{Name: name, Dimension: dim}] = FromMap(spec.Schema)
		}
	}
	return p
}

// Catalog adapts the manifest into a Catalog listing every component
// it names, schema or not.
func (m *Manifest) Catalog() StaticCatalog {
	var c StaticCatalog
	for dim, specs := range m.byDimension() {
		for name, spec := range specs {
			c = append(c, ComponentInfo{
				Name:        name,
				Dimension:   dim,
				Description: spec.Description,
			})
		}
	}
	return c
}
