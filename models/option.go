package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Criteria category keys (fixed vocabulary driving the questionnaire and matching)
const (
	CategoryObjectType       = "objekttyp"
	CategoryInstallationType = "anlagentyp"
	CategoryQuality          = "qualitaet"
	CategoryTechnology       = "technologie"
	CategoryDoors            = "tueren"
	CategoryFeatures         = "funktionen"
)

// DefaultSortOrder is assigned when the CMS record carries no sortOrder (sorts last)
const DefaultSortOrder = 999

// Installation type names used by the plan column templates
const (
	InstallationUniform   = "Gleichschließend"
	InstallationCentral   = "Zentralschloss"
	InstallationMasterKey = "Hauptschlüssel"
)

// Technology names relevant to plan defaults
const (
	TechnologyMechanical = "Rein Mechanisch"
	TechnologyElectronic = "Rein Elektronisch"
	TechnologyMixed      = "Gemischte Anlage"
)

// Option is one entry of a criteria category vocabulary (object types, installation
// types, quality tiers, technologies, door types, features)
type Option struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category    string `gorm:"not null;index:idx_option_category;uniqueIndex:idx_option_category_key" json:"category"`
	Name        string `gorm:"not null" json:"name"`
	Key         string `gorm:"not null;uniqueIndex:idx_option_category_key" json:"key"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IconURL     string `json:"icon_url,omitempty"`
	SortOrder   int    `gorm:"default:999" json:"sort_order"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Object type options restrict which door options are offered; empty means unrestricted
	SuitableDoors []Option `gorm:"many2many:option_suitable_doors;" json:"suitable_doors,omitempty"`
}

// BeforeCreate hook to generate UUID
func (o *Option) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Key == "" {
		o.Key = DeriveKey(o.Name)
	}
	return nil
}

// TableName specifies the table name for Option model
func (Option) TableName() string {
	return "options"
}

// OptionRef is the canonical {name, key} reference shape every eligibility relation
// is normalized to at ingestion. Matching compares against both fields.
type OptionRef struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Matches reports whether the reference equals the given criterion value by
// name or key (case-sensitive, no normalization)
func (r OptionRef) Matches(value string) bool {
	return r.Name == value || r.Key == value
}

// Ref returns the option's canonical reference
func (o Option) Ref() OptionRef {
	return OptionRef{Name: o.Name, Key: o.Key}
}

// DeriveKey builds a slug from a display name when the CMS record has none:
// lowercased, whitespace replaced with underscores
func DeriveKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// IsValidCategory checks if the category key is one of the six known categories
func IsValidCategory(category string) bool {
	switch category {
	case CategoryObjectType, CategoryInstallationType, CategoryQuality,
		CategoryTechnology, CategoryDoors, CategoryFeatures:
		return true
	}
	return false
}
