package services

import (
	"schliessplan_app_go/models"
)

// PlaceholderDoor is used when the criteria carry no door selections
const PlaceholderDoor = "Beispieltür"

// columnTemplates maps installation-type names to the initial key-group names.
// Installation types not in the table fall back to a generic two-group layout.
var columnTemplates = map[string][]string{
	models.InstallationUniform:   {"Alle Türen"},
	models.InstallationCentral:   {"Mieter A", "Mieter B", "Hausmeister"},
	models.InstallationMasterKey: {"Hauptschlüssel", "Gruppe 1", "Gruppe 2"},
}

var fallbackColumns = []string{"Gruppe 1", "Gruppe 2"}

// ColumnTemplateFor returns the initial key-group names for an installation type
func ColumnTemplateFor(installationType string) []string {
	if names, ok := columnTemplates[installationType]; ok {
		return append([]string(nil), names...)
	}
	return append([]string(nil), fallbackColumns...)
}

// DefaultTechMode derives the per-row technology default from the chosen
// technology answer
func DefaultTechMode(technology string) string {
	if technology == models.TechnologyElectronic {
		return models.TechModeElectronic
	}
	return models.TechModeMechanical
}

// SeedFeatureFlags builds the initial per-row flag set from the criteria: a
// flag is on iff the user selected the feature (by display name or key) in the
// questionnaire. featureOptions is the catalog's known feature vocabulary at
// plan-creation time.
func SeedFeatureFlags(criteria *models.CriteriaSet, featureOptions []models.Option) models.FeatureFlags {
	flags := make(models.FeatureFlags, len(featureOptions))
	for _, opt := range featureOptions {
		flags[opt.Key] = criteria.HasFeature(opt.Name) || criteria.HasFeature(opt.Key)
	}
	return flags
}

// InitializePlan builds a new closing plan from the criteria snapshot and the
// selected catalog item: one row per chosen door (a single placeholder row if
// none), key-group columns from the installation-type template, and the full
// matrix prefilled true only for the uniform-keying installation type.
func InitializePlan(criteria *models.CriteriaSet, selectedItem *models.CatalogItem, featureOptions []models.Option) *models.Plan {
	plan := &models.Plan{}

	for _, name := range ColumnTemplateFor(criteria.InstallationType) {
		plan.Columns = append(plan.Columns, models.PlanColumn{ID: plan.NextID(), Name: name})
	}

	doors := criteria.DoorTypes
	if len(doors) == 0 {
		doors = []string{PlaceholderDoor}
	}

	prefill := criteria.InstallationType == models.InstallationUniform
	techMode := DefaultTechMode(criteria.Technology)
	seededFlags := SeedFeatureFlags(criteria, featureOptions)

	itemID := ""
	if selectedItem != nil {
		itemID = selectedItem.ID
	}

	for i, door := range doors {
		assignments := make([]bool, len(plan.Columns))
		for j := range assignments {
			assignments[j] = prefill
		}
		plan.Rows = append(plan.Rows, models.PlanRow{
			ID:            plan.NextID(),
			Position:      i + 1,
			DoorLabel:     door,
			Variant:       models.VariantDouble,
			CatalogItemID: itemID,
			TechMode:      techMode,
			DimOutside:    models.DefaultDimension,
			DimInside:     models.DefaultDimension,
			Quantity:      1,
			Features:      seededFlags.Clone(),
			Assignments:   assignments,
			DoorEditMode:  models.DoorEditDisplay,
		})
	}

	return plan
}
