package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/errors"
)

// setFilePermissions is used when persisting sets as JSON.
const setFilePermissions = 0o644

// ComponentSet is a named grouping of component references partitioned
// by an arbitrary domain string (e.g. "terraform", "kubernetes"). It
// holds no back-reference to the registry; members are re-resolved by
// name and dimension on demand.
type ComponentSet struct {
	Name         string                  `json:"name"`
	Description  string                  `json:"description,omitempty"`
	Components   map[string][]bundle.Ref `json:"components"`
	Tags         []string                `json:"tags,omitempty"`
	Metadata     map[string]string       `json:"metadata,omitempty"`
	Version      string                  `json:"version,omitempty"`
	Dependencies []string                `json:"dependencies,omitempty"`
}

// NewComponentSet creates an empty component set.
func NewComponentSet(name, description string) *ComponentSet {
	return &ComponentSet{
		Name:        name,
		Description: description,
		Components:  make(map[string][]bundle.Ref),
		Metadata:    make(map[string]string),
	}
}

// AddComponent adds a reference under a domain, returning false when
// the domain already contains it. Within one domain there are no
// duplicate references.
func (s *ComponentSet) AddComponent(domain string, ref bundle.Ref) bool {
	if slices.Contains(s.Components[domain], ref) {
		return false
	}
	s.Components[domain] = append(s.Components[domain], ref)
	return true
}

// Contains reports whether any domain references the component.
func (s *ComponentSet) Contains(ref bundle.Ref) bool {
	for _, refs := range s.Components {
		if slices.Contains(refs, ref) {
			return true
		}
	}
	return false
}

// ContainsInDomain reports whether one domain references the component.
func (s *ComponentSet) ContainsInDomain(domain string, ref bundle.Ref) bool {
	return slices.Contains(s.Components[domain], ref)
}

// HasTag reports tag membership.
func (s *ComponentSet) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// Domains returns the set's domains in sorted order.
func (s *ComponentSet) Domains() []string {
	out := make([]string, 0, len(s.Components))
	for domain := range s.Components {
		out = append(out, domain)
	}
	slices.Sort(out)
	return out
}

// TotalCount returns the number of references across all domains.
func (s *ComponentSet) TotalCount() int {
	n := 0
	for _, refs := range s.Components {
		n += len(refs)
	}
	return n
}

// Union returns a new set holding every reference from either operand,
// domain-wise. Domains present in only one operand pass through
// unchanged. The result carries the receiver's tags and metadata.
func (s *ComponentSet) Union(other *ComponentSet) *ComponentSet {
	out := s.derived()
	for domain, refs := range s.Components {
		for _, ref := range refs {
			out.AddComponent(domain, ref)
		}
	}
	for domain, refs := range other.Components {
		for _, ref := range refs {
			out.AddComponent(domain, ref)
		}
	}
	return out
}

// Intersection returns a new set holding the references present in
// both operands, domain-wise. Domains present in only one operand are
// dropped.
func (s *ComponentSet) Intersection(other *ComponentSet) *ComponentSet {
	out := s.derived()
	for domain, refs := range s.Components {
		for _, ref := range refs {
			if other.ContainsInDomain(domain, ref) {
				out.AddComponent(domain, ref)
			}
		}
	}
	return out
}

// Difference returns a new set holding the receiver's references that
// the other operand lacks, domain-wise. Domains absent from the other
// operand are preserved from the receiver.
func (s *ComponentSet) Difference(other *ComponentSet) *ComponentSet {
	out := s.derived()
	for domain, refs := range s.Components {
		for _, ref := range refs {
			if !other.ContainsInDomain(domain, ref) {
				out.AddComponent(domain, ref)
			}
		}
	}
	return out
}

// derived creates an empty result set carrying the receiver's identity.
func (s *ComponentSet) derived() *ComponentSet {
	out := NewComponentSet(s.Name, s.Description)
	out.Tags = append(out.Tags, s.Tags...)
	for k, v := range s.Metadata {
		out.Metadata[k] = v
	}
	out.Version = s.Version
	out.Dependencies = append(out.Dependencies, s.Dependencies...)
	return out
}

// setFileName maps a set name onto its JSON file name.
func setFileName(name string) string {
	return strings.ReplaceAll(name, string(filepath.Separator), "_") + ".json"
}

// SaveSets persists the registry's component sets as JSON files, one
// per set, under dir.
func (r *Registry) SaveSets(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	for _, set := range r.ListSets("") {
		data, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			return errors.WrapResource("marshal", "component set", set.Name, err)
		}
		path := filepath.Join(dir, setFileName(set.Name))
		if err := os.WriteFile(path, append(data, '\n'), setFilePermissions); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	return nil
}

// LoadSets reads every *.json component set from dir and registers it.
// A missing directory loads nothing and is not an error.
func (r *Registry) LoadSets(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapIO("read", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapIO("read", path, err)
		}
		set := NewComponentSet("", "")
		if err := json.Unmarshal(data, set); err != nil {
			return errors.WrapResource("parse", "component set", path, err)
		}
		if set.Components == nil {
			set.Components = make(map[string][]bundle.Ref)
		}
		if err := r.RegisterSet(set); err != nil {
			return err
		}
	}
	return nil
}
