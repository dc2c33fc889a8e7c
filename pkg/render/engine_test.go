package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/plating/pkg/bundle"
	"github.com/provide-io/plating/pkg/errors"
	"github.com/provide-io/plating/pkg/schema"
)

// newTestBundle lays out a bundle on disk and returns it.
func newTestBundle(t *testing.T, name string, files map[string]string) *bundle.Bundle {
	t.Helper()
	root := filepath.Join(t.TempDir(), name+bundle.DefaultSuffix)
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return bundle.New(name, bundle.Resource, root)
}

// renderBundle builds a context and renders in one step.
func renderBundle(t *testing.T, e *Engine, b *bundle.Bundle, provider schema.Provider) (string, error) {
	t.Helper()
	rc, err := BuildContext(context.Background(), b, provider)
	require.NoError(t, err)
	return e.Render(rc, b)
}

func TestRenderPlainTemplate(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": "# {{ .Name }}\n\nA {{ .Dimension }} component.\n",
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "# widget\n\nA resource component.\n", out)
}

func TestRenderExample(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ example "basic" }}`,
		"examples/basic.tf":   `resource "x" {}`,
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "```terraform\nresource \"x\" {}\n```", out)
}

func TestRenderExampleCustomLanguage(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ example "basic" }}`,
		"examples/basic.yaml": "kind: Widget",
		"plating.yaml":        "language: yaml\n",
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "```yaml\nkind: Widget\n```", out)
}

func TestRenderMissingExample(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ example "ghost" }}`,
		"examples/basic.tf":   `resource "x" {}`,
	})

	_, err := renderBundle(t, NewEngine(), b, nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindMissingExample, errors.RenderKindOf(err))
	assert.ErrorContains(t, err, "widget", "error identifies the bundle")
	assert.ErrorContains(t, err, "ghost", "error identifies the example")
}

func TestRenderSchema(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": "## Schema\n\n{{ schema }}",
	})
	provider := schema.StaticProvider{
		{Name: "widget", Dimension: bundle.Resource}: schema.Object{Attrs: map[string]schema.Node{
			"name": schema.Scalar{Type: "string", Required: true, Description: "widget name"},
		}},
	}

	out, err := renderBundle(t, NewEngine(), b, provider)
	require.NoError(t, err)
	assert.Contains(t, out, "`name`")
	assert.Contains(t, out, "Required")
}

func TestRenderSchemaUnavailable(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": "{{ schema }}",
	})

	_, err := renderBundle(t, NewEngine(), b, schema.StaticProvider{})
	require.Error(t, err)
	assert.Equal(t, errors.KindSchemaUnavailable, errors.RenderKindOf(err))
}

func TestRenderNilSchemaUnusedIsFine(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": "no schema call here",
	})

	out, err := renderBundle(t, NewEngine(), b, schema.StaticProvider{})
	require.NoError(t, err)
	assert.Equal(t, "no schema call here", out)
}

func TestIncludeReturnsRawContent(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ include "_note.md" }}`,
		// Template syntax inside an included partial stays unprocessed.
		"docs/_note.md": "see {{ example \"basic\" }} for details",
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "see {{ example \"basic\" }} for details", out)
}

func TestIncludeMissingPartial(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ include "_ghost.md" }}`,
	})

	_, err := renderBundle(t, NewEngine(), b, nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindMissingPartial, errors.RenderKindOf(err))
}

func TestRenderProcessesPartial(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ render "_usage.md" }}`,
		"docs/_usage.md":      `## Usage{{ "\n" }}{{ example "basic" }}`,
		"examples/basic.tf":   `resource "x" {}`,
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "## Usage\n```terraform\nresource \"x\" {}\n```", out)
}

func TestRenderNestedPartials(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ render "_outer.md" }}`,
		"docs/_outer.md":      `outer({{ render "_inner.md" }})`,
		"docs/_inner.md":      "inner",
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "outer(inner)", out)
}

func TestRenderDirectCycle(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ render "_self.md" }}`,
		"docs/_self.md":       `{{ render "_self.md" }}`,
	})

	_, err := renderBundle(t, NewEngine(), b, nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindTemplateCycle, errors.RenderKindOf(err))
	assert.True(t, errors.IsCycle(err))
}

func TestRenderTransitiveCycle(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ render "_a.md" }}`,
		"docs/_a.md":          `{{ render "_b.md" }}`,
		"docs/_b.md":          `{{ render "_a.md" }}`,
	})

	_, err := renderBundle(t, NewEngine(), b, nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindTemplateCycle, errors.RenderKindOf(err))
	assert.ErrorContains(t, err, "_a.md -> _b.md -> _a.md")
}

func TestRenderDiamondIsNotACycle(t *testing.T) {
	// The same partial rendered twice sequentially is legal; only
	// re-entry while still in progress is a cycle.
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ render "_leaf.md" }}+{{ render "_leaf.md" }}`,
		"docs/_leaf.md":       "leaf",
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "leaf+leaf", out)
}

func TestRenderUndocumentedBundle(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"examples/basic.tf": `resource "x" {}`,
	})

	rc, err := BuildContext(context.Background(), b, nil)
	require.NoError(t, err)
	_, err = NewEngine().Render(rc, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUndocumented)
}

func TestRenderInvalidTemplate(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ example }`,
	})

	_, err := renderBundle(t, NewEngine(), b, nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindTemplateInvalid, errors.RenderKindOf(err))
}

func TestRenderIdempotent(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": "# {{ .Name }}\n{{ example \"basic\" }}\n",
		"examples/basic.tf":   `resource "x" {}`,
	})

	e := NewEngine()
	first, err := renderBundle(t, e, b, nil)
	require.NoError(t, err)
	second, err := renderBundle(t, e, b, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second, "unchanged inputs must render byte-identical output")
}

func TestCompiledTemplateCache(t *testing.T) {
	cache := gocache.New(gocache.NoExpiration, 0)
	e := NewEngine(WithCache(cache))

	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": "hello {{ .Name }}",
	})

	_, err := renderBundle(t, e, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.ItemCount())

	// Re-rendering the same source hits the cached compilation.
	_, err = renderBundle(t, e, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.ItemCount())

	// A different source for the same bundle gets its own key; the
	// content hash invalidates implicitly without any explicit call.
	other := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": "changed {{ .Name }}",
	})
	_, err = renderBundle(t, e, other, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.ItemCount())
}

func TestSprigFunctionsAvailable(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `{{ .Name | upper }}`,
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "WIDGET", out)
}

func TestProviderMetadataInContext(t *testing.T) {
	b := newTestBundle(t, "widget", map[string]string{
		"docs/widget.tmpl.md": `by {{ .Provider.name }}`,
		"plating.yaml":        "provider:\n  name: acme\n",
	})

	out, err := renderBundle(t, NewEngine(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, "by acme", out)
}
