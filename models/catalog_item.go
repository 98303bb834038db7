package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogItem is a sellable cylinder system with eligibility metadata. The six
// eligibility lists are normalized to OptionRef at ingestion; an empty list means
// "unrestricted" for doors and features, "never matches" for the single-valued
// categories (preserved from the source system).
type CatalogItem struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string   `gorm:"not null" json:"name"`
	Key         string   `gorm:"not null;uniqueIndex" json:"key"`
	Description string   `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Price       *float64 `json:"price,omitempty"` // nil means "price on request"
	SortOrder   int      `gorm:"default:999" json:"sort_order"`
	IsActive    bool     `gorm:"default:true" json:"is_active"`

	// Eligibility relations (category-tag references)
	ObjectTypes       []Option `gorm:"many2many:catalog_item_object_types;" json:"object_types,omitempty"`
	InstallationTypes []Option `gorm:"many2many:catalog_item_installation_types;" json:"installation_types,omitempty"`
	QualityTiers      []Option `gorm:"many2many:catalog_item_quality_tiers;" json:"quality_tiers,omitempty"`
	Technologies      []Option `gorm:"many2many:catalog_item_technologies;" json:"technologies,omitempty"`
	DoorTypes         []Option `gorm:"many2many:catalog_item_door_types;" json:"door_types,omitempty"`
	Features          []Option `gorm:"many2many:catalog_item_features;" json:"features,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Key == "" {
		c.Key = DeriveKey(c.Name)
	}
	return nil
}

// TableName specifies the table name for CatalogItem model
func (CatalogItem) TableName() string {
	return "catalog_items"
}

// Eligibility is the normalized, relation-free view of a catalog item that the
// match scorer operates on. Built once per item via Eligibility(); the scorer
// never sees gorm relations or duck-typed shapes.
type Eligibility struct {
	ObjectTypes       []OptionRef
	InstallationTypes []OptionRef
	QualityTiers      []OptionRef
	Technologies      []OptionRef
	DoorTypes         []OptionRef
	Features          []OptionRef
}

// Eligibility returns the item's relations as canonical reference lists
func (c *CatalogItem) Eligibility() Eligibility {
	return Eligibility{
		ObjectTypes:       toRefs(c.ObjectTypes),
		InstallationTypes: toRefs(c.InstallationTypes),
		QualityTiers:      toRefs(c.QualityTiers),
		Technologies:      toRefs(c.Technologies),
		DoorTypes:         toRefs(c.DoorTypes),
		Features:          toRefs(c.Features),
	}
}

func toRefs(options []Option) []OptionRef {
	refs := make([]OptionRef, 0, len(options))
	for _, o := range options {
		refs = append(refs, o.Ref())
	}
	return refs
}

// MatchesSelection reports whether the item is the one named by an explicit
// user selection (name or key equality)
func (c *CatalogItem) MatchesSelection(value string) bool {
	return c.Name == value || c.Key == value
}

// PriceLabel returns a display string for the price, or "Preis auf Anfrage"
// when the catalog carries none
func (c *CatalogItem) PriceLabel() string {
	if c.Price == nil {
		return "Preis auf Anfrage"
	}
	return fmt.Sprintf("€%.2f", *c.Price)
}
