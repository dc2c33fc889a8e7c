package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/plating/pkg/bundle"
)

// newTestBundle creates a bundle on disk, documented or not.
func newTestBundle(t *testing.T, name string, dim bundle.Dimension, documented bool) *bundle.Bundle {
	t.Helper()
	root := filepath.Join(t.TempDir(), name+bundle.DefaultSuffix)
	require.NoError(t, os.MkdirAll(filepath.Join(root, bundle.DocsDir), 0o755))
	if documented {
		path := filepath.Join(root, bundle.DocsDir, name+".tmpl.md")
		require.NoError(t, os.WriteFile(path, []byte("# "+name), 0o644))
	}
	return bundle.New(name, dim, root)
}

func TestRegisterFirstWins(t *testing.T) {
	r := New()
	first := newTestBundle(t, "foo", bundle.Resource, true)
	second := newTestBundle(t, "foo", bundle.Resource, true)

	assert.True(t, r.Register(first))
	assert.False(t, r.Register(second), "second registration of same key is dropped")

	got, ok := r.Get(bundle.Resource, "foo")
	require.True(t, ok)
	assert.Same(t, first, got)

	dups := r.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, second.Root(), dups[0].Root)
}

func TestForceRegisterOverwrites(t *testing.T) {
	r := New()
	first := newTestBundle(t, "foo", bundle.Resource, true)
	second := newTestBundle(t, "foo", bundle.Resource, true)

	r.Register(first)
	r.ForceRegister(second)

	got, ok := r.Get(bundle.Resource, "foo")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Len())
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := New()
	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		r.Register(newTestBundle(t, name, bundle.Resource, true))
	}

	listed := r.List(bundle.Resource)
	require.Len(t, listed, 3)
	for i, b := range listed {
		assert.Equal(t, names[i], b.Name(), "order must be registration order, not alphabetical")
	}
}

func TestListDocumented(t *testing.T) {
	r := New()
	r.Register(newTestBundle(t, "documented", bundle.Resource, true))
	r.Register(newTestBundle(t, "bare", bundle.Resource, false))

	docs := r.ListDocumented(bundle.Resource)
	require.Len(t, docs, 1)
	assert.Equal(t, "documented", docs[0].Name())
}

func TestStats(t *testing.T) {
	r := New()
	r.Register(newTestBundle(t, "foo", bundle.Resource, true))
	r.Register(newTestBundle(t, "bar", bundle.Resource, true))
	r.Register(newTestBundle(t, "bare", bundle.Resource, false))
	r.Register(newTestBundle(t, "lookup", bundle.DataSource, true))

	stats := r.Stats()
	assert.Equal(t, DimensionStats{Total: 3, WithMainTemplate: 2}, stats[bundle.Resource])
	assert.Equal(t, DimensionStats{Total: 1, WithMainTemplate: 1}, stats[bundle.DataSource])
}

func TestDimensionsFirstSeenOrder(t *testing.T) {
	r := New()
	r.Register(newTestBundle(t, "a", bundle.Function, true))
	r.Register(newTestBundle(t, "b", bundle.Resource, true))
	r.Register(newTestBundle(t, "c", bundle.Function, true))

	assert.Equal(t, []bundle.Dimension{bundle.Function, bundle.Resource}, r.Dimensions())
}

func TestNewSetFromComponents(t *testing.T) {
	r := New()
	r.Register(newTestBundle(t, "vpc", bundle.Resource, true))
	r.Register(newTestBundle(t, "subnet", bundle.Resource, true))

	set, missing := r.NewSetFromComponents("networking", "network components",
		bundle.Resource,
		map[string][]string{
			"terraform": {"vpc", "subnet", "ghost"},
		},
		[]string{"network"},
	)

	require.Len(t, missing, 1, "missing components accumulate instead of failing the call")
	assert.Equal(t, "ghost", missing[0].Name)
	assert.Equal(t, "terraform", missing[0].Domain)

	assert.Equal(t, 2, set.TotalCount(), "present components are still included")
	assert.True(t, set.Contains(bundle.Ref{Name: "vpc", Dimension: bundle.Resource}))
	assert.True(t, set.HasTag("network"))
}

func TestSetStorage(t *testing.T) {
	r := New()
	a := NewComponentSet("alpha", "")
	a.Tags = []string{"infra"}
	a.AddComponent("terraform", bundle.Ref{Name: "vpc", Dimension: bundle.Resource})
	b := NewComponentSet("beta", "")
	b.AddComponent("kubernetes", bundle.Ref{Name: "vpc", Dimension: bundle.Resource})

	require.NoError(t, r.RegisterSet(a))
	require.NoError(t, r.RegisterSet(b))
	require.Error(t, r.RegisterSet(nil))

	assert.Len(t, r.ListSets(""), 2)
	assert.Len(t, r.ListSets("infra"), 1)

	containing := r.FindSetsContaining(bundle.Ref{Name: "vpc", Dimension: bundle.Resource})
	assert.Len(t, containing, 2)

	got, ok := r.GetSet("alpha")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestSaveAndLoadSets(t *testing.T) {
	dir := t.TempDir()

	r := New()
	set := NewComponentSet("networking", "network components")
	set.Tags = []string{"network"}
	set.Version = "1"
	set.Metadata["owner"] = "platform"
	set.AddComponent("terraform", bundle.Ref{Name: "vpc", Dimension: bundle.Resource})
	set.AddComponent("kubernetes", bundle.Ref{Name: "ingress", Dimension: bundle.Resource})
	require.NoError(t, r.RegisterSet(set))
	require.NoError(t, r.SaveSets(dir))

	loaded := New()
	require.NoError(t, loaded.LoadSets(dir))

	got, ok := loaded.GetSet("networking")
	require.True(t, ok)
	assert.Equal(t, set.Description, got.Description)
	assert.Equal(t, set.Components, got.Components)
	assert.Equal(t, set.Tags, got.Tags)
	assert.Equal(t, set.Metadata, got.Metadata)
	assert.Equal(t, set.Version, got.Version)
}

func TestLoadSetsMissingDir(t *testing.T) {
	r := New()
	require.NoError(t, r.LoadSets(filepath.Join(t.TempDir(), "nope")))
	assert.Empty(t, r.ListSets(""))
}
