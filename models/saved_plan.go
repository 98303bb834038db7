package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Saved plan status values
const (
	PlanStatusDraft     = "draft"
	PlanStatusCompleted = "completed"
)

// SavedPlan persists one configurator session: the criteria snapshot, the
// selected catalog item and the closing plan itself, serialized as JSON. The
// persistence layer hands the snapshot back unmodified.
type SavedPlan struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`

	Name   string `gorm:"not null" json:"name"`
	Status string `gorm:"not null;default:draft" json:"status"`

	CatalogItemID string `gorm:"type:uuid" json:"catalog_item_id"`

	CriteriaJSON string `gorm:"type:text;not null" json:"-"`
	PlanJSON     string `gorm:"type:text;not null" json:"-"`
}

// BeforeCreate hook to generate UUID
func (s *SavedPlan) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for SavedPlan model
func (SavedPlan) TableName() string {
	return "saved_plans"
}

// SetSnapshot serializes the criteria and plan into the row
func (s *SavedPlan) SetSnapshot(criteria *CriteriaSet, plan *Plan) error {
	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return fmt.Errorf("failed to serialize criteria: %w", err)
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to serialize plan: %w", err)
	}
	s.CriteriaJSON = string(criteriaJSON)
	s.PlanJSON = string(planJSON)
	return nil
}

// Snapshot deserializes the stored criteria and plan
func (s *SavedPlan) Snapshot() (*CriteriaSet, *Plan, error) {
	var criteria CriteriaSet
	if err := json.Unmarshal([]byte(s.CriteriaJSON), &criteria); err != nil {
		return nil, nil, fmt.Errorf("failed to parse stored criteria: %w", err)
	}
	var plan Plan
	if err := json.Unmarshal([]byte(s.PlanJSON), &plan); err != nil {
		return nil, nil, fmt.Errorf("failed to parse stored plan: %w", err)
	}
	return &criteria, &plan, nil
}

// IsValidPlanStatus checks if the status is valid
func IsValidPlanStatus(status string) bool {
	return status == PlanStatusDraft || status == PlanStatusCompleted
}
