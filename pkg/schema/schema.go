// Package schema models component schemas as an explicit recursive sum
// type and renders them into markdown tables. Schema data arrives from
// an external provider as already-parsed nested mappings; this package
// never parses a schema definition language itself.
package schema

import (
	"fmt"
	"sort"
)

// Node is a schema tree node: a Scalar, a List, or an Object. Each
// variant carries its own formatting in ToMarkdown rather than relying
// on runtime type inspection of raw maps.
type Node interface {
	node()
}

// Scalar is a leaf attribute.
type Scalar struct {
	Type        string // "string", "number", "bool", ...
	Description string
	Required    bool
	Optional    bool
	Computed    bool
	Sensitive   bool
}

// List is a homogeneous collection of Elem nodes.
type List struct {
	Elem        Node
	Description string
	Required    bool
	Optional    bool
	Computed    bool
}

// Object is a nested attribute mapping.
type Object struct {
	Attrs       map[string]Node
	Description string
	Required    bool
	Optional    bool
	Computed    bool
}

func (Scalar) node() {}
func (List) node()   {}
func (Object) node() {}

// descriptorKeys are the metadata keys that mark a raw mapping as a
// scalar attribute descriptor rather than a nested object.
var descriptorKeys = map[string]bool{
	"type":        true,
	"description": true,
	"required":    true,
	"optional":    true,
	"computed":    true,
	"sensitive":   true,
}

// FromMap adapts an already-parsed nested mapping into a Node tree.
// A mapping whose keys are all attribute-descriptor keys becomes a
// Scalar; any other mapping becomes an Object; slices become Lists.
func FromMap(raw map[string]any) Node {
	return fromValue(raw)
}

func fromValue(v any) Node {
	switch val := v.(type) {
	case map[string]any:
		if isDescriptor(val) {
			return scalarFromDescriptor(val)
		}
		obj := Object{Attrs: make(map[string]Node, len(val))}
		for key, child := range val {
			obj.Attrs[key] = fromValue(child)
		}
		return obj
	case []any:
		if len(val) == 0 {
			return List{Elem: Scalar{Type: "any"}}
		}
		return List{Elem: fromValue(val[0])}
	case string:
		return Scalar{Type: "string"}
	case bool:
		return Scalar{Type: "bool"}
	case int, int64, float64:
		return Scalar{Type: "number"}
	case nil:
		return Scalar{Type: "any"}
	default:
		return Scalar{Type: fmt.Sprintf("%T", val)}
	}
}

// isDescriptor reports whether a raw mapping is a scalar descriptor.
func isDescriptor(m map[string]any) bool {
	if _, ok := m["type"].(string); !ok {
		return false
	}
	for key := range m {
		if !descriptorKeys[key] {
			return false
		}
	}
	return true
}

func scalarFromDescriptor(m map[string]any) Scalar {
	s := Scalar{}
	s.Type, _ = m["type"].(string)
	s.Description, _ = m["description"].(string)
	s.Required, _ = m["required"].(bool)
	s.Optional, _ = m["optional"].(bool)
	s.Computed, _ = m["computed"].(bool)
	s.Sensitive, _ = m["sensitive"].(bool)
	return s
}

// TypeString returns a compact type label for a node.
func TypeString(n Node) string {
	switch v := n.(type) {
	case Scalar:
		if v.Type == "" {
			return "string"
		}
		return v.Type
	case List:
		return fmt.Sprintf("list(%s)", TypeString(v.Elem))
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// sortedKeys returns an object's attribute names in stable order.
func sortedKeys(attrs map[string]Node) []string {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
