package services

import (
	"testing"

	"schliessplan_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedQuestionnaire(t *testing.T) *gorm.DB {
	t.Helper()
	db := setupCatalogTestDB()
	require.NoError(t, SeedFallbackCatalog(db))

	doors := []models.Option{
		{Category: models.CategoryDoors, Name: "Haustür", Key: "haustür", SortOrder: 1, IsActive: true},
		{Category: models.CategoryDoors, Name: "Keller", Key: "keller", SortOrder: 2, IsActive: true},
		{Category: models.CategoryDoors, Name: "Serverraum", Key: "serverraum", SortOrder: 3, IsActive: true},
	}
	for i := range doors {
		require.NoError(t, db.Create(&doors[i]).Error)
	}

	office := models.Option{Category: models.CategoryObjectType, Name: "Büro", Key: "buero", SortOrder: 1, IsActive: true}
	require.NoError(t, db.Create(&office).Error)
	require.NoError(t, db.Model(&office).Association("SuitableDoors").Replace([]models.Option{doors[0], doors[2]}))

	home := models.Option{Category: models.CategoryObjectType, Name: "Wohnung", Key: "wohnung", SortOrder: 2, IsActive: true}
	require.NoError(t, db.Create(&home).Error)

	return db
}

func TestGetOptions(t *testing.T) {
	db := seedQuestionnaire(t)

	t.Run("Sorted By Sort Order", func(t *testing.T) {
		options, err := GetOptions(db, models.CategoryInstallationType)
		require.NoError(t, err)
		require.Len(t, options, 3)
		assert.Equal(t, "Gleichschließend", options[0].Name)
		assert.Equal(t, "Zentralschloss", options[2].Name)
	})

	t.Run("Inactive Options Excluded", func(t *testing.T) {
		db.Model(&models.Option{}).
			Where("category = ? AND key = ?", models.CategoryInstallationType, "zentralschloss").
			Update("is_active", false)

		options, err := GetOptions(db, models.CategoryInstallationType)
		require.NoError(t, err)
		assert.Len(t, options, 2)
	})

	t.Run("Unknown Category Rejected", func(t *testing.T) {
		_, err := GetOptions(db, "farben")
		assert.Error(t, err)
	})
}

func TestGetDoorOptions(t *testing.T) {
	db := seedQuestionnaire(t)

	t.Run("Restricted Object Type Narrows Doors", func(t *testing.T) {
		doors, err := GetDoorOptions(db, "Büro")
		require.NoError(t, err)
		require.Len(t, doors, 2)
		assert.Equal(t, "Haustür", doors[0].Name)
		assert.Equal(t, "Serverraum", doors[1].Name)
	})

	t.Run("Lookup By Key Works Too", func(t *testing.T) {
		doors, err := GetDoorOptions(db, "buero")
		require.NoError(t, err)
		assert.Len(t, doors, 2)
	})

	t.Run("Unrestricted Object Type Gets All Doors", func(t *testing.T) {
		doors, err := GetDoorOptions(db, "Wohnung")
		require.NoError(t, err)
		assert.Len(t, doors, 3)
	})

	t.Run("No Object Type Gets All Doors", func(t *testing.T) {
		doors, err := GetDoorOptions(db, "")
		require.NoError(t, err)
		assert.Len(t, doors, 3)
	})

	t.Run("Unknown Object Type Gets All Doors", func(t *testing.T) {
		doors, err := GetDoorOptions(db, "Raumstation")
		require.NoError(t, err)
		assert.Len(t, doors, 3)
	})
}

func TestGetQuestionnaire(t *testing.T) {
	db := seedQuestionnaire(t)

	steps, err := GetQuestionnaire(db, "Büro")
	require.NoError(t, err)
	require.Len(t, steps, 7)

	assert.Equal(t, models.CategoryObjectType, steps[0].CategoryKey)
	assert.Equal(t, 2, len(steps[0].Options))

	// Door step is narrowed by the object type
	doorStep := steps[4]
	assert.Equal(t, models.CategoryDoors, doorStep.CategoryKey)
	assert.Len(t, doorStep.Options, 2)

	// The cylinder step carries no vocabulary of its own
	assert.Equal(t, "zylinder", steps[6].CategoryKey)
	assert.Empty(t, steps[6].Options)
}

func TestGetActiveCatalog(t *testing.T) {
	db := seedQuestionnaire(t)

	active := models.CatalogItem{Name: "System A", Key: "system_a", IsActive: true}
	require.NoError(t, db.Create(&active).Error)
	inactive := models.CatalogItem{Name: "Alt", Key: "alt", IsActive: true}
	require.NoError(t, db.Create(&inactive).Error)
	db.Model(&inactive).Update("is_active", false)

	var office models.Option
	require.NoError(t, db.Where("category = ? AND key = ?", models.CategoryObjectType, "buero").First(&office).Error)
	require.NoError(t, db.Model(&active).Association("ObjectTypes").Replace([]models.Option{office}))

	items, err := GetActiveCatalog(db)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "system_a", items[0].Key)
	require.Len(t, items[0].ObjectTypes, 1)
	assert.Equal(t, "buero", items[0].ObjectTypes[0].Key)
}
