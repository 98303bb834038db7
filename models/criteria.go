package models

// CriteriaSet holds the user's accumulated answers across the question
// categories. Single-valued answers hold the selected option's name (or key);
// multi-valued answers preserve selection order and may contain free-form
// custom door entries.
type CriteriaSet struct {
	ObjectType       string `json:"objekttyp,omitempty"`
	InstallationType string `json:"anlagentyp,omitempty"`
	QualityTier      string `json:"qualitaet,omitempty"`
	Technology       string `json:"technologie,omitempty"`
	// ExplicitItem overrides all scoring when set (the user picked a cylinder directly)
	ExplicitItem string `json:"zylinder,omitempty"`

	DoorTypes []string `json:"tueren,omitempty"`
	Features  []string `json:"funktionen,omitempty"`
}

// SetObjectType records the object type answer. Changing it invalidates any
// previously chosen doors, since door eligibility depends on the object type.
func (c *CriteriaSet) SetObjectType(value string) {
	if c.ObjectType != value {
		c.DoorTypes = nil
	}
	c.ObjectType = value
}

// AddDoorType appends a door selection, rejecting duplicates. Returns false if
// the value is empty or already selected.
func (c *CriteriaSet) AddDoorType(value string) bool {
	if value == "" {
		return false
	}
	for _, d := range c.DoorTypes {
		if d == value {
			return false
		}
	}
	c.DoorTypes = append(c.DoorTypes, value)
	return true
}

// ToggleFeature adds the feature if absent, removes it if present
func (c *CriteriaSet) ToggleFeature(value string) {
	for i, f := range c.Features {
		if f == value {
			c.Features = append(c.Features[:i], c.Features[i+1:]...)
			return
		}
	}
	c.Features = append(c.Features, value)
}

// HasFeature reports whether the feature name is among the selected features
func (c *CriteriaSet) HasFeature(name string) bool {
	for _, f := range c.Features {
		if f == name {
			return true
		}
	}
	return false
}

// IsEmpty reports whether no answer has been recorded at all
func (c *CriteriaSet) IsEmpty() bool {
	return c.ObjectType == "" && c.InstallationType == "" && c.QualityTier == "" &&
		c.Technology == "" && c.ExplicitItem == "" &&
		len(c.DoorTypes) == 0 && len(c.Features) == 0
}
