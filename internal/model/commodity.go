package model

// CommodityUnit is a unit of measure a user trades farm goods in.
type CommodityUnit struct {
	// ID is nil for placeholder units that have not been saved upstream.
	ID   *int   `yaml:"id,omitempty" json:"id,omitempty"`
	Name string `yaml:"name" json:"name"`
}

// HasID reports whether the unit carries a persisted identifier.
func (u CommodityUnit) HasID() bool {
	return u.ID != nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
