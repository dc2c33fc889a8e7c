package bundle

import "fmt"

// Dimension is the top-level component kind used as the first key of
// the registry. The predefined values cover the common provider
// component kinds; arbitrary user-defined dimensions are also legal.
type Dimension string

// Predefined component dimensions.
const (
	Resource   Dimension = "resource"
	DataSource Dimension = "data_source"
	Function   Dimension = "function"
	Provider   Dimension = "provider"
)

// String returns the dimension as a string.
func (d Dimension) String() string { return string(d) }

// DimensionFromDir infers a dimension from the conventional parent
// directory names used in package layouts (resources/, data_sources/,
// functions/). Unrecognized names map to a user-defined dimension of
// the singularized directory name.
func DimensionFromDir(dir string) Dimension {
	switch dir {
	case "resources":
		return Resource
	case "data_sources", "data-sources":
		return DataSource
	case "functions":
		return Function
	case "provider", "providers":
		return Provider
	default:
		return Dimension(dir)
	}
}

// Ref is a lightweight (name, dimension) component identity. Equality
// is structural, so Ref is usable as a map key and inside sets without
// holding any bundle content.
type Ref struct {
	Name      string    `json:"name"`
	Dimension Dimension `json:"type"`
}

// String returns "dimension/name".
func (r Ref) String() string {
	return fmt.Sprintf("%s/%s", r.Dimension, r.Name)
}
