// Package registry provides the queryable index over discovered
// bundles, keyed by dimension and name, plus storage and set algebra
// for cross-cutting component groupings.
//
// A Registry is populated once (typically from a discovery scan) and
// read-heavy afterwards; render runs treat it as read-only.
package registry

import (
	"sync"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/discovery"
	"github.com/provide-io/plating/pkg/errors"
)

// DimensionStats summarizes one dimension of the registry.
type DimensionStats struct {
	Total            int `json:"total"`
	WithMainTemplate int `json:"with_main_template"`
}

// Duplicate records a registration that was dropped because its
// (dimension, name) key was already taken.
type Duplicate struct {
	Ref  bundle.Ref
	Root string // root path of the dropped bundle
}

// Registry is the dimension-keyed catalog of bundles. All listing
// operations preserve registration order, never alphabetical order:
// downstream generation depends on scan order reflecting intentional
// precedence.
type Registry struct {
	mu         sync.RWMutex
	bundles    map[bundle.Dimension]map[string]*bundle.Bundle
	order      map[bundle.Dimension][]string
	dims       []bundle.Dimension
	duplicates []Duplicate

	sets     map[string]*ComponentSet
	setOrder []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		bundles: make(map[bundle.Dimension]map[string]*bundle.Bundle),
		order:   make(map[bundle.Dimension][]string),
		sets:    make(map[string]*ComponentSet),
	}
}

// FromScan creates a registry populated with a discovery result's
// bundles, in scan order. Collisions were already resolved by the
// scan's dedup policy, so every bundle registers cleanly.
func FromScan(result *discovery.Result) *Registry {
	r := New()
	for _, b := range result.Bundles {
		r.Register(b)
	}
	return r
}

// Register adds a bundle under its (dimension, name) key. The first
// registration wins; later ones are recorded as duplicates and
// dropped. Returns whether the bundle was newly added.
func (r *Registry) Register(b *bundle.Bundle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	dim := b.Dimension()
	byName, ok := r.bundles[dim]
	if !ok {
		byName = make(map[string]*bundle.Bundle)
		r.bundles[dim] = byName
		r.dims = append(r.dims, dim)
	}

	if _, exists := byName[b.Name()]; exists {
		r.duplicates = append(r.duplicates, Duplicate{Ref: b.Ref(), Root: b.Root()})
		return false
	}

	byName[b.Name()] = b
	r.order[dim] = append(r.order[dim], b.Name())
	return true
}

// ForceRegister adds a bundle, overwriting any existing entry for its
// key. Registration order is preserved for overwritten entries.
func (r *Registry) ForceRegister(b *bundle.Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dim := b.Dimension()
	byName, ok := r.bundles[dim]
	if !ok {
		byName = make(map[string]*bundle.Bundle)
		r.bundles[dim] = byName
		r.dims = append(r.dims, dim)
	}

	if _, exists := byName[b.Name()]; !exists {
		r.order[dim] = append(r.order[dim], b.Name())
	}
	byName[b.Name()] = b
}

// Get returns the bundle for a (dimension, name) key.
func (r *Registry) Get(dim bundle.Dimension, name string) (*bundle.Bundle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName, ok := r.bundles[dim]
	if !ok {
		return nil, false
	}
	b, ok := byName[name]
	return b, ok
}

// List returns all bundles of a dimension in registration order.
func (r *Registry) List(dim bundle.Dimension) []*bundle.Bundle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.order[dim]
	out := make([]*bundle.Bundle, 0, len(names))
	for _, name := range names {
		out = append(out, r.bundles[dim][name])
	}
	return out
}

// ListDocumented returns the dimension's bundles that have a main
// template, in registration order.
func (r *Registry) ListDocumented(dim bundle.Dimension) []*bundle.Bundle {
	all := r.List(dim)
	out := make([]*bundle.Bundle, 0, len(all))
	for _, b := range all {
		if b.IsDocumented() {
			out = append(out, b)
		}
	}
	return out
}

// Dimensions returns the registered dimensions in first-seen order.
func (r *Registry) Dimensions() []bundle.Dimension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bundle.Dimension, len(r.dims))
	copy(out, r.dims)
	return out
}

// Len returns the total number of registered bundles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, names := range r.order {
		n += len(names)
	}
	return n
}

// Duplicates returns the registrations dropped due to key collisions.
func (r *Registry) Duplicates() []Duplicate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Duplicate, len(r.duplicates))
	copy(out, r.duplicates)
	return out
}

// Stats returns per-dimension totals in a single pass per dimension.
func (r *Registry) Stats() map[bundle.Dimension]DimensionStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[bundle.Dimension]DimensionStats, len(r.dims))
	for dim, names := range r.order {
		stats := DimensionStats{Total: len(names)}
		for _, name := range names {
			if r.bundles[dim][name].IsDocumented() {
				stats.WithMainTemplate++
			}
		}
		out[dim] = stats
	}
	return out
}

// RegisterSet stores a component set under its name.
func (r *Registry) RegisterSet(set *ComponentSet) error {
	if set == nil || set.Name == "" {
		return errors.WrapResource("register", "component set", "", errors.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sets[set.Name]; !exists {
		r.setOrder = append(r.setOrder, set.Name)
	}
	r.sets[set.Name] = set
	return nil
}

// GetSet returns a stored component set by name.
func (r *Registry) GetSet(name string) (*ComponentSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sets[name]
	return set, ok
}

// ListSets returns stored sets in registration order, optionally
// filtered by tag membership. An empty tag matches every set.
func (r *Registry) ListSets(tag string) []*ComponentSet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ComponentSet, 0, len(r.setOrder))
	for _, name := range r.setOrder {
		set := r.sets[name]
		if tag == "" || set.HasTag(tag) {
			out = append(out, set)
		}
	}
	return out
}

// FindSetsContaining returns the stored sets that reference the given
// component in any domain.
func (r *Registry) FindSetsContaining(ref bundle.Ref) []*ComponentSet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ComponentSet, 0)
	for _, name := range r.setOrder {
		if r.sets[name].Contains(ref) {
			out = append(out, r.sets[name])
		}
	}
	return out
}

// NewSetFromComponents builds a component set by resolving filter names
// against the registry for a fixed dimension. Missing components are
// accumulated and reported; present ones are still included, so one
// unknown name never voids the whole set.
func (r *Registry) NewSetFromComponents(
	name, description string,
	dim bundle.Dimension,
	filters map[string][]string,
	tags []string,
) (*ComponentSet, []*errors.ComponentNotFoundError) {
	set := NewComponentSet(name, description)
	set.Tags = append(set.Tags, tags...)

	var missing []*errors.ComponentNotFoundError
	for domain, names := range filters {
		for _, componentName := range names {
			b, ok := r.Get(dim, componentName)
			if !ok {
				missing = append(missing, &errors.ComponentNotFoundError{
					Name:      componentName,
					Dimension: dim.String(),
					Domain:    domain,
				})
				continue
			}
			set.AddComponent(domain, b.Ref())
		}
	}
	return set, missing
}
