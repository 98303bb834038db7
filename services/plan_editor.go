package services

import (
	"fmt"
	"strconv"

	"schliessplan_app_go/models"
)

// Plan editor operations. Every operation preserves the matrix invariant
// (each row carries exactly one assignment per column) and is total over the
// current plan: references to ids that no longer exist are no-ops so a stale
// UI reference cannot corrupt or crash the session.

// Editable scalar row fields accepted by UpdateRowField
const (
	RowFieldVariant       = "typ"
	RowFieldCatalogItemID = "system_id"
	RowFieldTechMode      = "tech_mode"
	RowFieldDimOutside    = "mass_a"
	RowFieldDimInside     = "mass_i"
	RowFieldQuantity      = "anzahl"
)

// AddRow appends a new row: position rows+1, all assignments false, all
// features off, catalog item inherited from the last row (or the given
// default). The new row starts in door-name selection mode.
func AddRow(plan *models.Plan, defaultItemID string) *models.PlanRow {
	itemID := defaultItemID
	techMode := models.TechModeMechanical
	if n := len(plan.Rows); n > 0 {
		itemID = plan.Rows[n-1].CatalogItemID
		techMode = plan.Rows[n-1].TechMode
	}

	features := make(models.FeatureFlags)
	if len(plan.Rows) > 0 {
		for key := range plan.Rows[0].Features {
			features[key] = false
		}
	}

	row := models.PlanRow{
		ID:            plan.NextID(),
		Position:      len(plan.Rows) + 1,
		Variant:       models.VariantDouble,
		CatalogItemID: itemID,
		TechMode:      techMode,
		DimOutside:    models.DefaultDimension,
		DimInside:     models.DefaultDimension,
		Quantity:      1,
		Features:      features,
		Assignments:   make([]bool, len(plan.Columns)),
		DoorEditMode:  models.DoorEditSelect,
	}
	plan.Rows = append(plan.Rows, row)
	return &plan.Rows[len(plan.Rows)-1]
}

// RemoveRow deletes the row and resequences the remaining positions to stay
// contiguous. Unknown ids are ignored.
func RemoveRow(plan *models.Plan, rowID int64) bool {
	for i := range plan.Rows {
		if plan.Rows[i].ID == rowID {
			plan.Rows = append(plan.Rows[:i], plan.Rows[i+1:]...)
			plan.Resequence()
			return true
		}
	}
	return false
}

// AddColumn appends a key group named "Gruppe N" and extends every row's
// assignment array with false, keeping the matrix rectangular
func AddColumn(plan *models.Plan) *models.PlanColumn {
	name := fmt.Sprintf("Gruppe %d", len(plan.Columns)+1)
	plan.Columns = append(plan.Columns, models.PlanColumn{ID: plan.NextID(), Name: name})
	for i := range plan.Rows {
		plan.Rows[i].Assignments = append(plan.Rows[i].Assignments, false)
	}
	return &plan.Columns[len(plan.Columns)-1]
}

// ToggleCell flips one matrix cell. Out-of-range indices and unknown rows are
// ignored.
func ToggleCell(plan *models.Plan, rowID int64, columnIndex int) bool {
	row := plan.RowByID(rowID)
	if row == nil || columnIndex < 0 || columnIndex >= len(row.Assignments) {
		return false
	}
	row.Assignments[columnIndex] = !row.Assignments[columnIndex]
	return true
}

// RenameColumn renames a key group in place. Empty names and unknown ids are
// ignored.
func RenameColumn(plan *models.Plan, columnID int64, name string) bool {
	if name == "" {
		return false
	}
	col := plan.ColumnByID(columnID)
	if col == nil {
		return false
	}
	col.Name = name
	return true
}

// SetDoorLabel commits a door label for the row, covering both the pick-from-
// list and free-text paths. Empty labels are rejected and the row keeps its
// prior label.
func SetDoorLabel(plan *models.Plan, rowID int64, label string) bool {
	row := plan.RowByID(rowID)
	if row == nil {
		return false
	}
	return row.CommitDoorLabel(label)
}

// SetRowFeature updates one entry of the row's feature flag set
func SetRowFeature(plan *models.Plan, rowID int64, featureKey string, enabled bool) bool {
	row := plan.RowByID(rowID)
	if row == nil || featureKey == "" {
		return false
	}
	if row.Features == nil {
		row.Features = make(models.FeatureFlags)
	}
	row.Features[featureKey] = enabled
	return true
}

// UpdateRowField updates one scalar row field. Invalid values (unknown
// variant, non-positive quantity, unparseable number) are rejected and the
// prior value is retained; nothing is ever stored coerced.
func UpdateRowField(plan *models.Plan, rowID int64, field string, value string) bool {
	row := plan.RowByID(rowID)
	if row == nil {
		return false
	}

	switch field {
	case RowFieldVariant:
		if !models.IsValidVariant(value) {
			return false
		}
		row.Variant = value
	case RowFieldCatalogItemID:
		if value == "" {
			return false
		}
		row.CatalogItemID = value
	case RowFieldTechMode:
		if !models.IsValidTechMode(value) {
			return false
		}
		row.TechMode = value
	case RowFieldDimOutside:
		row.DimOutside = value
	case RowFieldDimInside:
		row.DimInside = value
	case RowFieldQuantity:
		qty, err := strconv.Atoi(value)
		if err != nil || qty < 1 {
			return false
		}
		row.Quantity = qty
	default:
		return false
	}
	return true
}
