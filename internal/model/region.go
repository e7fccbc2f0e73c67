package model

// Region is a location returned by the region autocomplete search.
type Region struct {
	Name     string `yaml:"name" json:"name"`
	Province string `yaml:"province,omitempty" json:"province,omitempty"`
	Country  string `yaml:"country,omitempty" json:"country,omitempty"`
	ID       int    `yaml:"id" json:"id"`
}

// DisplayName returns the label shown in autocomplete suggestions.
func (r Region) DisplayName() string {
	if r.Province == "" {
		return r.Name
	}
	return r.Name + ", " + r.Province
}
