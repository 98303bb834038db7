package services

import (
	"fmt"
	"sort"

	"schliessplan_app_go/models"

	"gorm.io/gorm"
)

// QuestionWithOptions is one questionnaire step together with its answer
// vocabulary
type QuestionWithOptions struct {
	models.Question
	Options []models.Option `json:"options"`
}

// GetOptions fetches the active options of one category, sorted for display
func GetOptions(db *gorm.DB, category string) ([]models.Option, error) {
	if !models.IsValidCategory(category) {
		return nil, fmt.Errorf("unknown option category: %s", category)
	}

	var options []models.Option
	err := db.Where("category = ? AND is_active = ?", category, true).
		Order("sort_order ASC, name ASC").
		Find(&options).Error
	return options, err
}

// GetDoorOptions fetches the door vocabulary, narrowed to the doors suitable
// for the given object type. An object type without door restrictions (or an
// unknown one) yields the full vocabulary.
func GetDoorOptions(db *gorm.DB, objectType string) ([]models.Option, error) {
	if objectType != "" {
		var owner models.Option
		err := db.Preload("SuitableDoors", "is_active = ?", true).
			Where("category = ? AND (name = ? OR key = ?)", models.CategoryObjectType, objectType, objectType).
			First(&owner).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		if err == nil && len(owner.SuitableDoors) > 0 {
			doors := owner.SuitableDoors
			sortOptions(doors)
			return doors, nil
		}
	}
	return GetOptions(db, models.CategoryDoors)
}

func sortOptions(options []models.Option) {
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].SortOrder != options[j].SortOrder {
			return options[i].SortOrder < options[j].SortOrder
		}
		return options[i].Name < options[j].Name
	})
}

// GetQuestionnaire assembles the full questionnaire: every question in order,
// each with its option vocabulary. The door question's options are narrowed by
// the given object type selection.
func GetQuestionnaire(db *gorm.DB, objectType string) ([]QuestionWithOptions, error) {
	var questions []models.Question
	if err := db.Order("\"order\" ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	result := make([]QuestionWithOptions, 0, len(questions))
	for _, question := range questions {
		entry := QuestionWithOptions{Question: question}

		switch question.CategoryKey {
		case models.CategoryDoors:
			doors, err := GetDoorOptions(db, objectType)
			if err != nil {
				return nil, err
			}
			entry.Options = doors
		case "zylinder":
			// The cylinder step is answered from the recommendation
			// ranking, not from the options table
		default:
			if models.IsValidCategory(question.CategoryKey) {
				options, err := GetOptions(db, question.CategoryKey)
				if err != nil {
					return nil, err
				}
				entry.Options = options
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

// GetActiveCatalog loads all catalog items with their eligibility relations,
// ready for ranking
func GetActiveCatalog(db *gorm.DB) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := db.
		Preload("ObjectTypes").
		Preload("InstallationTypes").
		Preload("QualityTiers").
		Preload("Technologies").
		Preload("DoorTypes").
		Preload("Features").
		Where("is_active = ?", true).
		Find(&items).Error
	return items, err
}
