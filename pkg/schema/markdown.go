package schema

import (
	"strings"

	md "github.com/nao1215/markdown"
)

// ToMarkdown renders a schema tree as a markdown attribute table.
// Nested objects get their own "Nested Schema" sections keyed by the
// attribute path, so arbitrarily deep schemas stay readable.
func ToMarkdown(n Node) string {
	if n == nil {
		return "No schema available.\n"
	}

	buf := &strings.Builder{}
	m := md.NewMarkdown(buf)
	writeNode(m, n, "")
	// Building into a strings.Builder cannot fail.
	_ = m.Build()
	return buf.String()
}

// writeNode emits one node's table plus the nested sections below it.
func writeNode(m *md.Markdown, n Node, path string) {
	switch v := n.(type) {
	case Object:
		writeObject(m, v, path)
	case List:
		writeNode(m, v.Elem, path)
	case Scalar:
		m.Table(md.TableSet{
			Header: []string{"Type", "Flags", "Description"},
			Rows:   [][]string{{TypeString(v), flags(v), v.Description}},
		})
	}
}

func writeObject(m *md.Markdown, obj Object, path string) {
	if path != "" {
		m.H4("Nested Schema for " + md.Code(path))
	}

	rows := make([][]string, 0, len(obj.Attrs))
	type nested struct {
		path string
		node Object
	}
	var children []nested

	for _, key := range sortedKeys(obj.Attrs) {
		attr := obj.Attrs[key]
		rows = append(rows, []string{md.Code(key), TypeString(attr), flags(attr), description(attr)})

		childPath := key
		if path != "" {
			childPath = path + "." + key
		}
		switch child := attr.(type) {
		case Object:
			children = append(children, nested{childPath, child})
		case List:
			if elem, ok := child.Elem.(Object); ok {
				children = append(children, nested{childPath, elem})
			}
		}
	}

	m.Table(md.TableSet{
		Header: []string{"Attribute", "Type", "Flags", "Description"},
		Rows:   rows,
	})

	for _, child := range children {
		writeObject(m, child.node, child.path)
	}
}

// flags renders the attribute's requirement flags.
func flags(n Node) string {
	var parts []string
	add := func(cond bool, label string) {
		if cond {
			parts = append(parts, label)
		}
	}
	switch v := n.(type) {
	case Scalar:
		add(v.Required, "Required")
		add(v.Optional, "Optional")
		add(v.Computed, "Computed")
		add(v.Sensitive, "Sensitive")
	case List:
		add(v.Required, "Required")
		add(v.Optional, "Optional")
		add(v.Computed, "Computed")
	case Object:
		add(v.Required, "Required")
		add(v.Optional, "Optional")
		add(v.Computed, "Computed")
	}
	return strings.Join(parts, ", ")
}

func description(n Node) string {
	switch v := n.(type) {
	case Scalar:
		return v.Description
	case List:
		return v.Description
	case Object:
		return v.Description
	}
	return ""
}
