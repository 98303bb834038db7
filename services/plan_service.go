package services

import (
	"fmt"
	"strings"

	"schliessplan_app_go/models"

	"gorm.io/gorm"
)

// DefaultPlanName is used when a plan is saved without a name
const DefaultPlanName = "Mein Schließplan"

// CreateSavedPlan persists a configurator session for a user. The criteria and
// plan are stored as an opaque snapshot and handed back unmodified on load.
func CreateSavedPlan(db *gorm.DB, userID, name string, criteria *models.CriteriaSet, plan *models.Plan) (*models.SavedPlan, error) {
	if !plan.CheckShape() {
		return nil, fmt.Errorf("plan matrix is not rectangular")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPlanName
	}

	saved := models.SavedPlan{
		UserID:        userID,
		Name:          name,
		Status:        models.PlanStatusDraft,
		CatalogItemID: primaryItemID(plan),
	}
	if err := saved.SetSnapshot(criteria, plan); err != nil {
		return nil, err
	}

	if err := db.Create(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	return &saved, nil
}

// primaryItemID is the catalog item the plan was built around, taken from the
// first row
func primaryItemID(plan *models.Plan) string {
	if len(plan.Rows) == 0 {
		return ""
	}
	return plan.Rows[0].CatalogItemID
}

// GetSavedPlan loads one saved plan, scoped to its owner
func GetSavedPlan(db *gorm.DB, userID, planID string) (*models.SavedPlan, error) {
	var saved models.SavedPlan
	err := db.Where("id = ? AND user_id = ?", planID, userID).First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListSavedPlans returns a user's saved plans, newest first
func ListSavedPlans(db *gorm.DB, userID string) ([]models.SavedPlan, error) {
	var plans []models.SavedPlan
	err := db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&plans).Error
	return plans, err
}

// UpdateSavedPlan replaces the stored snapshot. Ownership is enforced before
// anything is written.
func UpdateSavedPlan(db *gorm.DB, userID, planID string, criteria *models.CriteriaSet, plan *models.Plan) (*models.SavedPlan, error) {
	if !plan.CheckShape() {
		return nil, fmt.Errorf("plan matrix is not rectangular")
	}

	saved, err := GetSavedPlan(db, userID, planID)
	if err != nil {
		return nil, err
	}
	if err := saved.SetSnapshot(criteria, plan); err != nil {
		return nil, err
	}

	if err := db.Model(saved).Updates(map[string]interface{}{
		"criteria_json": saved.CriteriaJSON,
		"plan_json":     saved.PlanJSON,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return saved, nil
}

// RenameSavedPlan updates the plan's display name. Empty names are rejected.
func RenameSavedPlan(db *gorm.DB, userID, planID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("plan name cannot be empty")
	}

	saved, err := GetSavedPlan(db, userID, planID)
	if err != nil {
		return err
	}
	return db.Model(saved).Update("name", name).Error
}

// SetSavedPlanStatus moves a plan between draft and completed
func SetSavedPlanStatus(db *gorm.DB, userID, planID, status string) error {
	if !models.IsValidPlanStatus(status) {
		return fmt.Errorf("invalid plan status: %s", status)
	}

	saved, err := GetSavedPlan(db, userID, planID)
	if err != nil {
		return err
	}
	return db.Model(saved).Update("status", status).Error
}

// DeleteSavedPlan removes a saved plan, scoped to its owner
func DeleteSavedPlan(db *gorm.DB, userID, planID string) error {
	result := db.Where("id = ? AND user_id = ?", planID, userID).Delete(&models.SavedPlan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
