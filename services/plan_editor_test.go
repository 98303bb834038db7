package services

import (
	"encoding/json"
	"testing"

	"schliessplan_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestPlan(t *testing.T) *models.Plan {
	t.Helper()
	criteria := &models.CriteriaSet{
		InstallationType: "Hauptschlüssel",
		DoorTypes:        []string{"Haustür", "Keller", "Garage"},
	}
	item := officeCylinder()
	return InitializePlan(criteria, &item, featureVocabulary())
}

func TestAddRow(t *testing.T) {
	plan := buildTestPlan(t)

	row := AddRow(plan, "fallback-item")
	require.Len(t, plan.Rows, 4)
	assert.Equal(t, 4, row.Position)
	assert.Equal(t, len(plan.Columns), len(row.Assignments))
	for _, set := range row.Assignments {
		assert.False(t, set)
	}
	for _, enabled := range row.Features {
		assert.False(t, enabled)
	}
	// Inherits the catalog item from the last existing row
	assert.Equal(t, plan.Rows[2].CatalogItemID, row.CatalogItemID)
	assert.Equal(t, models.DoorEditSelect, row.DoorEditMode)
	assert.True(t, plan.CheckShape())
}

func TestAddRowToEmptyPlan(t *testing.T) {
	plan := &models.Plan{}
	row := AddRow(plan, "default-item")
	assert.Equal(t, "default-item", row.CatalogItemID)
	assert.Equal(t, 1, row.Position)
	assert.Empty(t, row.Assignments)
}

func TestRemoveRow(t *testing.T) {
	plan := buildTestPlan(t)

	t.Run("Resequences Positions", func(t *testing.T) {
		removed := RemoveRow(plan, plan.Rows[1].ID)
		assert.True(t, removed)
		require.Len(t, plan.Rows, 2)
		assert.Equal(t, 1, plan.Rows[0].Position)
		assert.Equal(t, 2, plan.Rows[1].Position)
		assert.Equal(t, "Haustür", plan.Rows[0].DoorLabel)
		assert.Equal(t, "Garage", plan.Rows[1].DoorLabel)
	})

	t.Run("Unknown Id Is A No Op", func(t *testing.T) {
		before := len(plan.Rows)
		assert.False(t, RemoveRow(plan, 99999))
		assert.Len(t, plan.Rows, before)
	})
}

func TestAddColumn(t *testing.T) {
	plan := buildTestPlan(t)

	col := AddColumn(plan)
	assert.Equal(t, "Gruppe 4", col.Name)
	require.Len(t, plan.Columns, 4)
	for _, row := range plan.Rows {
		assert.Len(t, row.Assignments, 4)
		assert.False(t, row.Assignments[3])
	}
	assert.True(t, plan.CheckShape())
}

func TestMatrixInvariantUnderMutationSequence(t *testing.T) {
	plan := buildTestPlan(t)

	AddColumn(plan)
	AddRow(plan, "")
	RemoveRow(plan, plan.Rows[0].ID)
	AddColumn(plan)
	AddRow(plan, "")
	assert.True(t, plan.CheckShape())

	positions := make([]int, 0, len(plan.Rows))
	for _, row := range plan.Rows {
		positions = append(positions, row.Position)
	}
	for i, pos := range positions {
		assert.Equal(t, i+1, pos)
	}
}

func TestToggleCell(t *testing.T) {
	plan := buildTestPlan(t)
	rowID := plan.Rows[0].ID

	t.Run("Flips And Restores", func(t *testing.T) {
		assert.False(t, plan.Rows[0].Assignments[1])
		assert.True(t, ToggleCell(plan, rowID, 1))
		assert.True(t, plan.Rows[0].Assignments[1])
		assert.True(t, ToggleCell(plan, rowID, 1))
		assert.False(t, plan.Rows[0].Assignments[1])
	})

	t.Run("Out Of Range Index Is Ignored", func(t *testing.T) {
		assert.False(t, ToggleCell(plan, rowID, -1))
		assert.False(t, ToggleCell(plan, rowID, len(plan.Columns)))
	})

	t.Run("Unknown Row Is Ignored", func(t *testing.T) {
		assert.False(t, ToggleCell(plan, 99999, 0))
	})
}

func TestRenameColumn(t *testing.T) {
	plan := buildTestPlan(t)

	assert.True(t, RenameColumn(plan, plan.Columns[1].ID, "Etage 1"))
	assert.Equal(t, "Etage 1", plan.Columns[1].Name)

	assert.False(t, RenameColumn(plan, plan.Columns[1].ID, ""))
	assert.Equal(t, "Etage 1", plan.Columns[1].Name)

	assert.False(t, RenameColumn(plan, 99999, "Etage 2"))
}

func TestDoorLabelEditing(t *testing.T) {
	t.Run("Select Known Value", func(t *testing.T) {
		plan := buildTestPlan(t)
		row := &plan.Rows[0]
		row.BeginDoorEdit()
		assert.Equal(t, models.DoorEditSelect, row.DoorEditMode)

		assert.True(t, SetDoorLabel(plan, row.ID, "Keller"))
		assert.Equal(t, "Keller", row.DoorLabel)
		assert.Equal(t, models.DoorEditDisplay, row.DoorEditMode)
	})

	t.Run("Custom Entry Commits Value As Entered", func(t *testing.T) {
		plan := buildTestPlan(t)
		row := &plan.Rows[0]
		row.BeginDoorEdit()
		row.BeginCustomDoorEntry()
		assert.Equal(t, models.DoorEditCustom, row.DoorEditMode)

		assert.True(t, SetDoorLabel(plan, row.ID, "Werkstatt"))
		assert.Equal(t, "Werkstatt", row.DoorLabel)
		assert.Equal(t, models.DoorEditDisplay, row.DoorEditMode)
	})

	t.Run("Empty Custom Name Reverts To Prior Label", func(t *testing.T) {
		plan := buildTestPlan(t)
		row := &plan.Rows[0]
		prior := row.DoorLabel
		row.BeginDoorEdit()
		row.BeginCustomDoorEntry()

		assert.False(t, SetDoorLabel(plan, row.ID, ""))
		assert.Equal(t, prior, row.DoorLabel)
		assert.Equal(t, models.DoorEditDisplay, row.DoorEditMode)
	})

	t.Run("Custom Entry Requires Select Mode First", func(t *testing.T) {
		plan := buildTestPlan(t)
		row := &plan.Rows[0]
		row.BeginCustomDoorEntry()
		assert.Equal(t, models.DoorEditDisplay, row.DoorEditMode)
	})

	t.Run("Empty Label After Reload Keeps Committed Label", func(t *testing.T) {
		plan := buildTestPlan(t)
		rowID := plan.Rows[0].ID
		prior := plan.Rows[0].DoorLabel

		// A persisted plan loses all transient edit state
		raw, err := json.Marshal(plan)
		require.NoError(t, err)
		var restored models.Plan
		require.NoError(t, json.Unmarshal(raw, &restored))

		assert.False(t, SetDoorLabel(&restored, rowID, ""))
		assert.Equal(t, prior, restored.Rows[0].DoorLabel)
	})
}

func TestUpdateRowField(t *testing.T) {
	plan := buildTestPlan(t)
	rowID := plan.Rows[0].ID

	t.Run("Variant", func(t *testing.T) {
		assert.True(t, UpdateRowField(plan, rowID, RowFieldVariant, models.VariantKnob))
		assert.Equal(t, models.VariantKnob, plan.Rows[0].Variant)

		assert.False(t, UpdateRowField(plan, rowID, RowFieldVariant, "Fantasiezylinder"))
		assert.Equal(t, models.VariantKnob, plan.Rows[0].Variant)
	})

	t.Run("Quantity Rejects Invalid Input", func(t *testing.T) {
		assert.True(t, UpdateRowField(plan, rowID, RowFieldQuantity, "3"))
		assert.Equal(t, 3, plan.Rows[0].Quantity)

		assert.False(t, UpdateRowField(plan, rowID, RowFieldQuantity, "abc"))
		assert.False(t, UpdateRowField(plan, rowID, RowFieldQuantity, "0"))
		assert.False(t, UpdateRowField(plan, rowID, RowFieldQuantity, "-2"))
		assert.Equal(t, 3, plan.Rows[0].Quantity)
	})

	t.Run("Tech Mode", func(t *testing.T) {
		assert.True(t, UpdateRowField(plan, rowID, RowFieldTechMode, models.TechModeElectronic))
		assert.Equal(t, models.TechModeElectronic, plan.Rows[0].TechMode)
		assert.False(t, UpdateRowField(plan, rowID, RowFieldTechMode, "hybrid"))
	})

	t.Run("Dimensions Accept Free Text", func(t *testing.T) {
		assert.True(t, UpdateRowField(plan, rowID, RowFieldDimOutside, "35"))
		assert.True(t, UpdateRowField(plan, rowID, RowFieldDimInside, "40/10"))
		assert.Equal(t, "35", plan.Rows[0].DimOutside)
		assert.Equal(t, "40/10", plan.Rows[0].DimInside)
	})

	t.Run("Catalog Item Reference", func(t *testing.T) {
		assert.True(t, UpdateRowField(plan, rowID, RowFieldCatalogItemID, "other-item"))
		assert.Equal(t, "other-item", plan.Rows[0].CatalogItemID)
		assert.False(t, UpdateRowField(plan, rowID, RowFieldCatalogItemID, ""))
	})

	t.Run("Unknown Field Or Row", func(t *testing.T) {
		assert.False(t, UpdateRowField(plan, rowID, "farbe", "rot"))
		assert.False(t, UpdateRowField(plan, 99999, RowFieldQuantity, "1"))
	})
}

func TestSetRowFeature(t *testing.T) {
	plan := buildTestPlan(t)
	rowID := plan.Rows[1].ID

	assert.True(t, SetRowFeature(plan, rowID, "rfid", true))
	assert.True(t, plan.Rows[1].Features["rfid"])
	// Other rows keep their own flags
	assert.False(t, plan.Rows[0].Features["rfid"])

	assert.True(t, SetRowFeature(plan, rowID, "rfid", false))
	assert.False(t, plan.Rows[1].Features["rfid"])

	assert.False(t, SetRowFeature(plan, 99999, "rfid", true))
	assert.False(t, SetRowFeature(plan, rowID, "", true))
}
