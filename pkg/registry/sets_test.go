package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/provide-io/plating/pkg/bundle"
)

func ref(name string) bundle.Ref {
	return bundle.Ref{Name: name, Dimension: bundle.Resource}
}

func setOf(name string, components map[string][]string) *ComponentSet {
	s := NewComponentSet(name, "")
	for domain, names := range components {
		for _, n := range names {
			s.AddComponent(domain, ref(n))
		}
	}
	return s
}

func TestAddComponentDedup(t *testing.T) {
	s := NewComponentSet("s", "")
	assert.True(t, s.AddComponent("terraform", ref("vpc")))
	assert.False(t, s.AddComponent("terraform", ref("vpc")), "no duplicates within a domain")
	assert.True(t, s.AddComponent("kubernetes", ref("vpc")), "same ref in another domain is fine")
	assert.Equal(t, 2, s.TotalCount())
}

func TestUnion(t *testing.T) {
	a := setOf("a", map[string][]string{
		"terraform":  {"vpc", "subnet"},
		"kubernetes": {"ingress"},
	})
	b := setOf("b", map[string][]string{
		"terraform": {"subnet", "igw"},
		"pulumi":    {"stack"},
	})

	u := a.Union(b)
	assert.Equal(t, 5, u.TotalCount())
	assert.ElementsMatch(t, []string{"kubernetes", "pulumi", "terraform"}, u.Domains(),
		"domains present in only one operand pass through for union")
	assert.GreaterOrEqual(t, u.TotalCount(), a.TotalCount())
	assert.GreaterOrEqual(t, u.TotalCount(), b.TotalCount())
}

func TestIntersection(t *testing.T) {
	a := setOf("a", map[string][]string{
		"terraform":  {"vpc", "subnet"},
		"kubernetes": {"ingress"},
	})
	b := setOf("b", map[string][]string{
		"terraform": {"subnet", "igw"},
		"pulumi":    {"stack"},
	})

	i := a.Intersection(b)
	assert.Equal(t, 1, i.TotalCount())
	assert.True(t, i.ContainsInDomain("terraform", ref("subnet")))
	assert.Equal(t, []string{"terraform"}, i.Domains(),
		"domains present in only one operand are dropped for intersection")

	// Nothing in the intersection is absent from either operand.
	for domain, refs := range i.Components {
		for _, r := range refs {
			assert.True(t, a.ContainsInDomain(domain, r))
			assert.True(t, b.ContainsInDomain(domain, r))
		}
	}
}

func TestDifference(t *testing.T) {
	a := setOf("a", map[string][]string{
		"terraform":  {"vpc", "subnet"},
		"kubernetes": {"ingress"},
	})
	b := setOf("b", map[string][]string{
		"terraform": {"subnet"},
	})

	d := a.Difference(b)
	assert.Equal(t, 2, d.TotalCount())
	assert.True(t, d.ContainsInDomain("terraform", ref("vpc")))
	assert.True(t, d.ContainsInDomain("kubernetes", ref("ingress")),
		"domains absent from the right operand are preserved from the left")
	assert.False(t, d.Contains(ref("subnet")))

	// (A - B) ∩ B is empty.
	assert.Equal(t, 0, d.Intersection(b).TotalCount())
}

func TestAlgebraOnEmptySets(t *testing.T) {
	a := setOf("a", map[string][]string{"terraform": {"vpc"}})
	empty := NewComponentSet("empty", "")

	assert.Equal(t, a.TotalCount(), a.Union(empty).TotalCount())
	assert.Equal(t, 0, a.Intersection(empty).TotalCount())
	assert.Equal(t, a.TotalCount(), a.Difference(empty).TotalCount())
	assert.Equal(t, 0, empty.Difference(a).TotalCount())
}

func TestDerivedSetCarriesIdentity(t *testing.T) {
	a := setOf("a", map[string][]string{"terraform": {"vpc"}})
	a.Tags = []string{"infra"}
	a.Metadata["owner"] = "platform"
	b := setOf("b", nil)

	u := a.Union(b)
	assert.Equal(t, "a", u.Name)
	assert.True(t, u.HasTag("infra"))
	assert.Equal(t, "platform", u.Metadata["owner"])
}
