// Package bundle defines the documentation bundle model: the filesystem
// unit that pairs one component with its template, partials, examples,
// and fixtures. A Bundle's identity (name, dimension, root path) is
// fixed at construction; its assets are loaded lazily from disk and
// memoized on first access.
package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/provide-io/plating/pkg/errors"
)

// Filesystem layout conventions inside a bundle root.
const (
	// DefaultSuffix is the directory suffix that marks a bundle root.
	DefaultSuffix = ".plating"

	// DocsDir holds the main template and partials.
	DocsDir = "docs"

	// ExamplesDir holds example snippets keyed by extension-stripped name.
	ExamplesDir = "examples"

	// FixturesDir holds arbitrary supporting files.
	FixturesDir = "fixtures"

	// MetadataFile is an optional per-bundle metadata file in the root.
	MetadataFile = "plating.yaml"

	// TemplateMarker appears in main template filenames: <name>.tmpl.<ext>.
	TemplateMarker = ".tmpl."

	// PartialPrefix marks partial files in the docs directory.
	PartialPrefix = "_"

	// DefaultLanguage tags example code fences unless metadata overrides it.
	DefaultLanguage = "terraform"
)

// Metadata is the optional per-bundle configuration read from plating.yaml.
type Metadata struct {
	// Language overrides the code-fence tag for examples.
	Language string `yaml:"language,omitempty"`

	// Provider carries free-form provider metadata exposed to templates.
	Provider map[string]string `yaml:"provider,omitempty"`
}

// Bundle is one component's documentation bundle. Identity fields are
// immutable; asset maps are loaded lazily and memoized, so a Bundle is
// safe for concurrent readers after construction.
type Bundle struct {
	name      string
	dimension Dimension
	root      string

	templateOnce sync.Once
	template     string
	templateOK   bool
	templateErr  error

	partialsOnce sync.Once
	partials     map[string]string
	partialsErr  error

	examplesOnce sync.Once
	examples     map[string]string
	examplesErr  error

	fixturesOnce sync.Once
	fixtures     map[string][]byte
	fixturesErr  error

	metaOnce sync.Once
	meta     *Metadata
	metaErr  error
}

// New creates a bundle rooted at the given directory. The directory is
// not touched until an asset accessor is called.
func New(name string, dimension Dimension, root string) *Bundle {
	return &Bundle{
		name:      name,
		dimension: dimension,
		root:      root,
	}
}

// Name returns the bundle's component name.
func (b *Bundle) Name() string { return b.name }

// Dimension returns the bundle's component dimension.
func (b *Bundle) Dimension() Dimension { return b.dimension }

// Root returns the bundle's root directory.
func (b *Bundle) Root() string { return b.root }

// Ref returns the bundle's lightweight component reference.
func (b *Bundle) Ref() Ref {
	return Ref{Name: b.name, Dimension: b.dimension}
}

// DocsPath returns the bundle's docs directory.
func (b *Bundle) DocsPath() string { return filepath.Join(b.root, DocsDir) }

// ExamplesPath returns the bundle's examples directory.
func (b *Bundle) ExamplesPath() string { return filepath.Join(b.root, ExamplesDir) }

// FixturesPath returns the bundle's fixtures directory.
func (b *Bundle) FixturesPath() string { return filepath.Join(b.root, FixturesDir) }

// MainTemplate returns the bundle's main template source. The second
// return is false for undocumented bundles (no <name>.tmpl.<ext> in
// docs/), which is a valid state, not an error.
func (b *Bundle) MainTemplate() (string, bool, error) {
	b.templateOnce.Do(func() {
		path, ok, err := b.findMainTemplate()
		if err != nil || !ok {
			b.templateErr = err
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			b.templateErr = errors.WrapIO("read", path, err)
			return
		}
		b.template = string(data)
		b.templateOK = true
	})
	return b.template, b.templateOK, b.templateErr
}

// IsDocumented reports whether the bundle has a main template.
func (b *Bundle) IsDocumented() bool {
	_, ok, err := b.MainTemplate()
	return err == nil && ok
}

// findMainTemplate locates <name>.tmpl.<ext> in the docs directory.
func (b *Bundle) findMainTemplate() (string, bool, error) {
	entries, err := os.ReadDir(b.DocsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.WrapIO("read", b.DocsPath(), err)
	}

	prefix := b.name + TemplateMarker
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(b.DocsPath(), entry.Name()), true, nil
		}
	}
	return "", false, nil
}

// Partials returns the bundle's partial templates keyed by filename.
// Partials are files in docs/ whose name starts with an underscore.
func (b *Bundle) Partials() (map[string]string, error) {
	b.partialsOnce.Do(func() {
		b.partials = make(map[string]string)
		entries, err := os.ReadDir(b.DocsPath())
		if err != nil {
			if !os.IsNotExist(err) {
				b.partialsErr = errors.WrapIO("read", b.DocsPath(), err)
			}
			return
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasPrefix(entry.Name(), PartialPrefix) {
				continue
			}
			path := filepath.Join(b.DocsPath(), entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				b.partialsErr = errors.WrapIO("read", path, err)
				return
			}
			b.partials[entry.Name()] = string(data)
		}
	})
	return b.partials, b.partialsErr
}

// Examples returns the bundle's examples keyed by extension-stripped
// filename, so examples/basic.tf is addressed as "basic".
func (b *Bundle) Examples() (map[string]string, error) {
	b.examplesOnce.Do(func() {
		b.examples = make(map[string]string)
		entries, err := os.ReadDir(b.ExamplesPath())
		if err != nil {
			if !os.IsNotExist(err) {
				b.examplesErr = errors.WrapIO("read", b.ExamplesPath(), err)
			}
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(b.ExamplesPath(), entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				b.examplesErr = errors.WrapIO("read", path, err)
				return
			}
			key := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			b.examples[key] = string(data)
		}
	})
	return b.examples, b.examplesErr
}

// Fixtures returns the bundle's fixture files keyed by filename.
func (b *Bundle) Fixtures() (map[string][]byte, error) {
	b.fixturesOnce.Do(func() {
		b.fixtures = make(map[string][]byte)
		entries, err := os.ReadDir(b.FixturesPath())
		if err != nil {
			if !os.IsNotExist(err) {
				b.fixturesErr = errors.WrapIO("read", b.FixturesPath(), err)
			}
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(b.FixturesPath(), entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				b.fixturesErr = errors.WrapIO("read", path, err)
				return
			}
			b.fixtures[entry.Name()] = data
		}
	})
	return b.fixtures, b.fixturesErr
}

// Metadata returns the bundle's plating.yaml contents, or an empty
// Metadata when the file is absent.
func (b *Bundle) Metadata() (*Metadata, error) {
	b.metaOnce.Do(func() {
		b.meta = &Metadata{}
		path := filepath.Join(b.root, MetadataFile)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				b.metaErr = errors.WrapIO("read", path, err)
			}
			return
		}
		if err := yaml.Unmarshal(data, b.meta); err != nil {
			b.metaErr = errors.WrapResource("parse", "bundle metadata", path, err)
		}
	})
	return b.meta, b.metaErr
}

// Language returns the code-fence tag for the bundle's examples.
func (b *Bundle) Language() string {
	meta, err := b.Metadata()
	if err == nil && meta.Language != "" {
		return meta.Language
	}
	return DefaultLanguage
}
