// Package strata provides access to regional stratigraphic data: the
// stratigraphic column for a coordinate pair and the formation lists used to
// bootstrap the offline region cache. Production deployments talk to a
// Macrostrat-compatible HTTP service; tests substitute stub providers.
package strata

import "context"

// Unit is one stratigraphic unit within a column, shallowest units first.
type Unit struct {
	Name        string  `json:"name"`
	Lithology   string  `json:"lithology"`
	AgeRange    string  `json:"age_range"`
	Period      string  `json:"period"`
	Environment string  `json:"environment"`
	Thickness   float64 `json:"thickness,omitempty"`
}

// Column is the known stratigraphic column for a location. Units are ordered
// by depth, shallowest first; the first unit is the surface bedrock.
type Column struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Units     []Unit  `json:"units"`
}

// Lithologies returns the lithology strings of all units in order.
func (c *Column) Lithologies() []string {
	liths := make([]string, 0, len(c.Units))
	for _, u := range c.Units {
		if u.Lithology != "" {
			liths = append(liths, u.Lithology)
		}
	}
	return liths
}

// UnitNames returns the unit names of all units in order.
func (c *Column) UnitNames() []string {
	names := make([]string, 0, len(c.Units))
	for _, u := range c.Units {
		if u.Name != "" {
			names = append(names, u.Name)
		}
	}
	return names
}

// Provider retrieves stratigraphic data for coordinates.
type Provider interface {
	// Column returns the stratigraphic column covering the coordinates.
	// Returns ErrNoColumn when the location has no mapped column.
	Column(ctx context.Context, lat, lng float64) (*Column, error)
}
