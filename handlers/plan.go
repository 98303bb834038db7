package handlers

import (
	"errors"
	"net/http"

	"schliessplan_app_go/db"
	"schliessplan_app_go/middleware"
	"schliessplan_app_go/models"
	"schliessplan_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type createPlanRequest struct {
	Name          string              `json:"name"`
	CatalogItemID string              `json:"catalog_item_id"`
	Criteria      *models.CriteriaSet `json:"criteria"`
}

type planOperationRequest struct {
	Op          string `json:"op"`
	RowID       int64  `json:"row_id"`
	ColumnID    int64  `json:"column_id"`
	ColumnIndex int    `json:"column_index"`
	Field       string `json:"field"`
	Value       string `json:"value"`
	FeatureKey  string `json:"feature_key"`
	Enabled     bool   `json:"enabled"`
	Name        string `json:"name"`
	Label       string `json:"label"`
}

// planResponse pairs the stored row with its deserialized snapshot
type planResponse struct {
	*models.SavedPlan
	Criteria *models.CriteriaSet `json:"criteria"`
	Plan     *models.Plan        `json:"plan"`
}

func newPlanResponse(saved *models.SavedPlan) (*planResponse, error) {
	criteria, plan, err := saved.Snapshot()
	if err != nil {
		return nil, err
	}
	return &planResponse{SavedPlan: saved, Criteria: criteria, Plan: plan}, nil
}

// CreatePlanHandler initializes a closing plan from the submitted criteria
// and selected catalog item, and persists it for the current user
func CreatePlanHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req createPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Criteria == nil {
		req.Criteria = &models.CriteriaSet{}
	}

	var item models.CatalogItem
	err := db.DB.Where("(id = ? OR key = ?) AND is_active = ?", req.CatalogItemID, req.CatalogItemID, true).
		First(&item).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Catalog item not found")
	}

	featureOptions, err := services.GetOptions(db.DB, models.CategoryFeatures)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load feature options")
	}

	plan := services.InitializePlan(req.Criteria, &item, featureOptions)
	saved, err := services.CreateSavedPlan(db.DB, user.ID, req.Name, req.Criteria, plan)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save plan")
	}

	response, err := newPlanResponse(saved)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read saved plan")
	}
	return c.JSON(http.StatusCreated, response)
}

// ListPlansHandler returns the current user's saved plans, newest first
func ListPlansHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	plans, err := services.ListSavedPlans(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list plans")
	}
	return c.JSON(http.StatusOK, plans)
}

// GetPlanHandler returns one saved plan with its full snapshot
func GetPlanHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	saved, err := services.GetSavedPlan(db.DB, user.ID, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}

	response, err := newPlanResponse(saved)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read saved plan")
	}
	return c.JSON(http.StatusOK, response)
}

// PlanOperationHandler applies one edit operation to a saved plan's matrix
// and persists the result. Operations referencing stale row or column ids are
// no-ops and return the unchanged plan.
func PlanOperationHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	saved, err := services.GetSavedPlan(db.DB, user.ID, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}

	var req planOperationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	criteria, plan, err := saved.Snapshot()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read saved plan")
	}

	switch req.Op {
	case "add_row":
		services.AddRow(plan, saved.CatalogItemID)
	case "remove_row":
		services.RemoveRow(plan, req.RowID)
	case "add_column":
		services.AddColumn(plan)
	case "toggle_cell":
		services.ToggleCell(plan, req.RowID, req.ColumnIndex)
	case "rename_column":
		services.RenameColumn(plan, req.ColumnID, req.Name)
	case "set_door_label":
		services.SetDoorLabel(plan, req.RowID, req.Label)
	case "set_row_feature":
		services.SetRowFeature(plan, req.RowID, req.FeatureKey, req.Enabled)
	case "update_row_field":
		services.UpdateRowField(plan, req.RowID, req.Field, req.Value)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown operation")
	}

	saved, err = services.UpdateSavedPlan(db.DB, user.ID, saved.ID, criteria, plan)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save plan")
	}

	response, err := newPlanResponse(saved)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read saved plan")
	}
	return c.JSON(http.StatusOK, response)
}

// RenamePlanHandler renames a saved plan
func RenamePlanHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := services.RenameSavedPlan(db.DB, user.ID, c.Param("id"), req.Name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Plan renamed"})
}

// SetPlanStatusHandler updates a saved plan's status
func SetPlanStatusHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := services.SetSavedPlanStatus(db.DB, user.ID, c.Param("id"), req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Status updated"})
}

// DeletePlanHandler removes a saved plan
func DeletePlanHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	if err := services.DeleteSavedPlan(db.DB, user.ID, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Plan deleted"})
}
