package schema

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/plating/pkg/bundle"
)

func TestFromMapDescriptors(t *testing.T) {
	raw := map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "the widget name",
			"required":    true,
		},
		"count": map[string]any{
			"type":     "number",
			"optional": true,
		},
		"secret": map[string]any{
			"type":      "string",
			"sensitive": true,
			"computed":  true,
		},
	}

	node := FromMap(raw)
	obj, ok := node.(Object)
	require.True(t, ok)
	require.Len(t, obj.Attrs, 3)

	name := obj.Attrs["name"].(Scalar)
	assert.Equal(t, "string", name.Type)
	assert.Equal(t, "the widget name", name.Description)
	assert.True(t, name.Required)

	secret := obj.Attrs["secret"].(Scalar)
	assert.True(t, secret.Sensitive)
	assert.True(t, secret.Computed)
}

func TestFromMapNested(t *testing.T) {
	raw := map[string]any{
		"network": map[string]any{
			"cidr": map[string]any{"type": "string", "required": true},
			"subnets": []any{
				map[string]any{
					"name": map[string]any{"type": "string"},
				},
			},
		},
	}

	node := FromMap(raw)
	obj := node.(Object)
	network := obj.Attrs["network"].(Object)
	assert.IsType(t, Scalar{}, network.Attrs["cidr"])

	subnets := network.Attrs["subnets"].(List)
	assert.IsType(t, Object{}, subnets.Elem)
}

func TestFromMapPlainValues(t *testing.T) {
	raw := map[string]any{
		"literal_string": "hello",
		"literal_bool":   true,
		"literal_num":    float64(3),
		"literal_nil":    nil,
	}
	obj := FromMap(raw).(Object)
	assert.Equal(t, "string", obj.Attrs["literal_string"].(Scalar).Type)
	assert.Equal(t, "bool", obj.Attrs["literal_bool"].(Scalar).Type)
	assert.Equal(t, "number", obj.Attrs["literal_num"].(Scalar).Type)
	assert.Equal(t, "any", obj.Attrs["literal_nil"].(Scalar).Type)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "string", TypeString(Scalar{Type: "string"}))
	assert.Equal(t, "string", TypeString(Scalar{}))
	assert.Equal(t, "list(number)", TypeString(List{Elem: Scalar{Type: "number"}}))
	assert.Equal(t, "list(object)", TypeString(List{Elem: Object{}}))
	assert.Equal(t, "object", TypeString(Object{}))
}

func TestToMarkdownObject(t *testing.T) {
	node := Object{Attrs: map[string]Node{
		"name":  Scalar{Type: "string", Description: "widget name", Required: true},
		"count": Scalar{Type: "number", Optional: true},
	}}

	out := ToMarkdown(node)
	assert.Contains(t, out, "Attribute")
	assert.Contains(t, out, "Description")
	assert.Contains(t, out, "`name`")
	assert.Contains(t, out, "Required")
	assert.Contains(t, out, "widget name")

	// Attributes are emitted in stable sorted order.
	assert.Less(t, strings.Index(out, "`count`"), strings.Index(out, "`name`"))
}

func TestToMarkdownNestedSections(t *testing.T) {
	node := Object{Attrs: map[string]Node{
		"network": Object{Attrs: map[string]Node{
			"cidr": Scalar{Type: "string", Required: true},
		}},
		"rules": List{Elem: Object{Attrs: map[string]Node{
			"port": Scalar{Type: "number"},
		}}},
	}}

	out := ToMarkdown(node)
	assert.Contains(t, out, "Nested Schema for `network`")
	assert.Contains(t, out, "Nested Schema for `rules`")
	assert.Contains(t, out, "`cidr`")
	assert.Contains(t, out, "`port`")
}

func TestToMarkdownDeeplyNestedSections(t *testing.T) {
	node := Object{Attrs: map[string]Node{
		"network": Object{Attrs: map[string]Node{
			"routing": Object{Attrs: map[string]Node{
				"table": Scalar{Type: "string", Optional: true},
			}},
			"rules": List{Elem: Object{Attrs: map[string]Node{
				"target": Object{Attrs: map[string]Node{
					"port": Scalar{Type: "number", Required: true},
				}},
			}}},
		}},
	}}

	out := ToMarkdown(node)
	assert.Contains(t, out, "Nested Schema for `network`")
	assert.Contains(t, out, "Nested Schema for `network.routing`")
	assert.Contains(t, out, "Nested Schema for `network.rules`")
	assert.Contains(t, out, "Nested Schema for `network.rules.target`")
	assert.Contains(t, out, "`table`")
	assert.Contains(t, out, "`port`")
}

func TestToMarkdownNil(t *testing.T) {
	assert.Equal(t, "No schema available.\n", ToMarkdown(nil))
}

func TestToMarkdownDeterministic(t *testing.T) {
	node := FromMap(map[string]any{
		"b": map[string]any{"type": "string"},
		"a": map[string]any{"type": "string"},
		"c": map[string]any{"type": "string"},
	})
	first := ToMarkdown(node)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ToMarkdown(node))
	}
}

func TestStaticProvider(t *testing.T) {
	provider := StaticProvider{
		{Name: "widget", Dimension: bundle.Resource}: Object{Attrs: map[string]Node{
			"name": Scalar{Type: "string"},
		}},
	}

	node, err := provider.Schema(context.Background(), bundle.Resource, "widget")
	require.NoError(t, err)
	assert.NotNil(t, node)

	missing, err := provider.Schema(context.Background(), bundle.Resource, "ghost")
	require.NoError(t, err)
	assert.Nil(t, missing, "unknown component yields nil node, not an error")
}

func TestStaticCatalog(t *testing.T) {
	catalog := StaticCatalog{
		{Name: "widget", Dimension: bundle.Resource},
		{Name: "lookup", Dimension: bundle.DataSource},
	}

	resources, err := catalog.Components(context.Background(), bundle.Resource)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "widget", resources[0].Name)

	all, err := catalog.Components(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
