package services

import (
	"log"

	"schliessplan_app_go/models"

	"gorm.io/gorm"
)

// Fallback vocabularies, used when the CMS has no content for a category.
// Object types and door types carry no fallback: without them the
// questionnaire genuinely has nothing to offer.
var fallbackVocabulary = map[string][]models.Option{
	models.CategoryInstallationType: {
		{Name: "Gleichschließend", Key: "gleichschliessend", Description: "Alle Zylinder können mit allen Schlüsseln geöffnet werden", SortOrder: 1},
		{Name: "Hauptschlüssel", Key: "hauptschluessel", Description: "Ein Hauptschlüssel schließt alles", SortOrder: 2},
		{Name: "Zentralschloss", Key: "zentralschloss", Description: "Einzelschlüssel schließen auch Zentraltüren", SortOrder: 3},
	},
	models.CategoryQuality: {
		{Name: "Günstig", Key: "guenstig", Description: "Kostengünstige Lösung", SortOrder: 1},
		{Name: "Mittel (Empfohlen)", Key: "mittel", Description: "Gutes Preis-Leistungs-Verhältnis", SortOrder: 2},
		{Name: "Sehr Gut", Key: "sehr-gut", Description: "Höchste Qualität", SortOrder: 3},
	},
	models.CategoryTechnology: {
		{Name: "Rein Mechanisch", Key: "rein-mechanisch", Description: "Klassische, bewährte Lösung", SortOrder: 1},
		{Name: "Rein Elektronisch", Key: "rein-elektronisch", Description: "Maximale Flexibilität", SortOrder: 2},
		{Name: "Gemischte Anlage", Key: "gemischt", Description: "Kombiniert mechanisch und elektronisch", SortOrder: 3},
	},
	models.CategoryFeatures: {
		{Name: "Erhöhter Bohrschutz", Key: "erhoehter-bohrschutz", Description: "Schutz vor Aufbohrversuchen", SortOrder: 1},
		{Name: "Kopierschutz", Key: "kopierschutz", Description: "Schutz vor unerlaubtem Nachmachen von Schlüsseln", SortOrder: 2},
		{Name: "Panikschloss", Key: "panikschloss", Description: "Im Notfall von innen ohne Schlüssel zu öffnen", SortOrder: 3},
		{Name: "Zentralschloss", Key: "zentralschloss", Description: "Einzelschlüssel schließen auch Zentraltüren", SortOrder: 4},
		{Name: "Hauptschlüssel", Key: "hauptschluessel", Description: "Ein Hauptschlüssel schließt alles", SortOrder: 5},
		{Name: "Gleichschließend", Key: "gleichschliessend", Description: "Alle Zylinder mit allen Schlüsseln", SortOrder: 6},
		{Name: "Elektronisch", Key: "elektronisch", Description: "Elektronische Zusatzfunktionen", SortOrder: 7},
		{Name: "RFID", Key: "rfid", Description: "RFID-Zugangskontrolle", SortOrder: 8},
		{Name: "Fingerprint", Key: "fingerprint", Description: "Fingerabdruck-Erkennung", SortOrder: 9},
		{Name: "Code-Schloss", Key: "code-schloss", Description: "Zahlenkombination", SortOrder: 10},
		{Name: "Fernsteuerung", Key: "fernsteuerung", Description: "Per App oder Fernbedienung steuerbar", SortOrder: 11},
	},
}

var fallbackQuestions = []models.Question{
	{
		CategoryKey:  models.CategoryObjectType,
		QuestionText: "Für welchen Objekttyp ist der Schließplan?",
		Description:  "Die Auswahl hilft uns, Ihnen passende Vorschläge zu machen.",
		Type:         models.QuestionTypeSingle,
		Order:        1,
	},
	{
		CategoryKey:  models.CategoryInstallationType,
		QuestionText: "Welche Art von Schließanlage benötigen Sie?",
		Description:  "Dies bestimmt, wie die Schlüssel und Zylinder zueinander in Beziehung stehen.",
		Type:         models.QuestionTypeSingle,
		Order:        2,
	},
	{
		CategoryKey:  models.CategoryQuality,
		QuestionText: "Welches Qualitäts- und Preisniveau bevorzugen Sie?",
		Description:  "Dies legt die Basis für die Auswahl der Zylinder-Systeme.",
		Type:         models.QuestionTypeSingle,
		Order:        3,
	},
	{
		CategoryKey:  models.CategoryTechnology,
		QuestionText: "Bevorzugen Sie rein mechanische oder elektronische Komponenten?",
		Description:  "Elektronische Komponenten bieten mehr Flexibilität, mechanische sind oft günstiger.",
		Type:         models.QuestionTypeSingle,
		Order:        4,
	},
	{
		CategoryKey:  models.CategoryDoors,
		QuestionText: "Welche Türen und Zylinder benötigen Sie?",
		Description:  "Wählen Sie alle zutreffenden Standardtüren aus. Eigene Türen können Sie später im Schließplan hinzufügen.",
		Type:         models.QuestionTypeMultiple,
		Order:        5,
	},
	{
		CategoryKey:  models.CategoryFeatures,
		QuestionText: "Welche besonderen Zylinder-Funktionen sind Ihnen wichtig?",
		Description:  "Wählen Sie eine oder mehrere Funktionen. Diese werden als Standard für alle Türen übernommen.",
		Type:         models.QuestionTypeMultiple,
		Order:        6,
	},
	{
		CategoryKey:  "zylinder",
		QuestionText: "Welches Zylinder-System bevorzugen Sie?",
		Description:  "Wählen Sie das passende Zylinder-System basierend auf Ihren Anforderungen.",
		Type:         models.QuestionTypeSingle,
		Order:        7,
	},
}

// SeedFallbackCatalog fills empty vocabulary categories and the questionnaire
// with built-in defaults. Categories that already hold options are left
// untouched, so a CMS sync always wins over the fallback.
func SeedFallbackCatalog(db *gorm.DB) error {
	for category, options := range fallbackVocabulary {
		var count int64
		if err := db.Model(&models.Option{}).Where("category = ?", category).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		log.Printf("[SEED] No %s options found, seeding %d defaults", category, len(options))
		for _, opt := range options {
			opt.Category = category
			opt.IsActive = true
			if err := db.Create(&opt).Error; err != nil {
				return err
			}
		}
	}

	var questionCount int64
	if err := db.Model(&models.Question{}).Count(&questionCount).Error; err != nil {
		return err
	}
	if questionCount == 0 {
		log.Printf("[SEED] No questions found, seeding %d defaults", len(fallbackQuestions))
		for _, question := range fallbackQuestions {
			if err := db.Create(&question).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
