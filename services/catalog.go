package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"schliessplan_app_go/models"

	"gorm.io/gorm"
)

const cmsPageSize = 100

// cmsCollections maps the six criteria categories to their CMS collection paths
var cmsCollections = map[string]string{
	models.CategoryObjectType:       "/api/objekttyps",
	models.CategoryInstallationType: "/api/anlagentyps",
	models.CategoryQuality:          "/api/qualitaets",
	models.CategoryTechnology:       "/api/technologies",
	models.CategoryDoors:            "/api/tuerens",
	models.CategoryFeatures:         "/api/funktionens",
}

// CatalogClient talks to the headless CMS hosting the questionnaire content and
// the cylinder catalog
type CatalogClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewCatalogClient creates a configured CMS client
func NewCatalogClient(baseURL, token string) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// cmsEnvelope is the standard list response: a data array plus optional
// pagination metadata
type cmsEnvelope struct {
	Data []cmsEntry `json:"data"`
	Meta struct {
		Pagination struct {
			Page      int `json:"page"`
			PageCount int `json:"pageCount"`
		} `json:"pagination"`
	} `json:"meta"`
}

// cmsEntry is one CMS record. Depending on the CMS version the fields either
// sit next to the id or are nested under "attributes"; both shapes decode into
// the same flat payload.
type cmsEntry struct {
	ID int64
	cmsPayload
}

func (e *cmsEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         int64           `json:"id"`
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = raw.ID
	if len(raw.Attributes) > 0 && !bytes.Equal(bytes.TrimSpace(raw.Attributes), []byte("null")) {
		return json.Unmarshal(raw.Attributes, &e.cmsPayload)
	}
	return json.Unmarshal(data, &e.cmsPayload)
}

// cmsPayload is the union of the record fields used by options, cylinders and
// questions. Absent fields simply stay zero.
type cmsPayload struct {
	Name         string      `json:"name"`
	Key          string      `json:"key"`
	Description  string      `json:"description"`
	Price        *float64    `json:"price"`
	SortOrder    int         `json:"sortOrder"`
	IsActive     *bool       `json:"isActive"`
	Icon         *cmsMedia   `json:"icon"`
	Image        *cmsMedia   `json:"image"`
	QuestionText string      `json:"questionText"`
	QuestionKey  string      `json:"questionKey"`
	Type         string      `json:"type"`
	Order        int         `json:"order"`
	Doors        cmsRelation `json:"tuerens"`
	ObjectTypes  cmsRelation `json:"objekttyps"`
	Installation cmsRelation `json:"anlagentyps"`
	Quality      cmsRelation `json:"qualitaets"`
	Technologies cmsRelation `json:"technologies"`
	Features     cmsRelation `json:"funktionens"`
}

// slug returns the record's key, derived from the name when the CMS carries none
func (p *cmsPayload) slug() string {
	if p.Key != "" {
		return p.Key
	}
	return models.DeriveKey(p.Name)
}

// active treats a missing isActive flag as active
func (p *cmsPayload) active() bool {
	return p.IsActive == nil || *p.IsActive
}

// rank falls back to the default sort order when the CMS carries none
func (p *cmsPayload) rank() int {
	if p.SortOrder == 0 {
		return models.DefaultSortOrder
	}
	return p.SortOrder
}

// cmsRelation is a to-many relation, delivered either as {"data":[...]} or as
// a bare array
type cmsRelation []cmsEntry

func (r *cmsRelation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, (*[]cmsEntry)(r))
	}
	var wrapped struct {
		Data []cmsEntry `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	*r = wrapped.Data
	return nil
}

// cmsMedia is an uploaded file reference, delivered either flat or wrapped in
// {"data":{"attributes":{...}}}
type cmsMedia struct {
	URL string `json:"-"`
}

func (m *cmsMedia) UnmarshalJSON(data []byte) error {
	var flat struct {
		URL  string          `json:"url"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if flat.URL != "" {
		m.URL = flat.URL
		return nil
	}
	if len(flat.Data) > 0 && !bytes.Equal(bytes.TrimSpace(flat.Data), []byte("null")) {
		var nested struct {
			URL        string `json:"url"`
			Attributes struct {
				URL string `json:"url"`
			} `json:"attributes"`
		}
		if err := json.Unmarshal(flat.Data, &nested); err != nil {
			return err
		}
		m.URL = nested.URL
		if m.URL == "" {
			m.URL = nested.Attributes.URL
		}
	}
	return nil
}

// absoluteURL resolves a media URL against the CMS base URL
func (c *CatalogClient) absoluteURL(media *cmsMedia) string {
	if media == nil || media.URL == "" {
		return ""
	}
	if strings.HasPrefix(media.URL, "http") {
		return media.URL
	}
	return c.baseURL + media.URL
}

// fetchPage performs one GET against a CMS collection endpoint
func (c *CatalogClient) fetchPage(path string, query url.Values) (*cmsEnvelope, error) {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build CMS request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach CMS at %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CMS returned status %d for %s", resp.StatusCode, path)
	}

	var envelope cmsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode CMS response for %s: %w", path, err)
	}
	return &envelope, nil
}

// fetchAll walks a collection's pages and concatenates the entries
func (c *CatalogClient) fetchAll(path string, populate []string) ([]cmsEntry, error) {
	var entries []cmsEntry

	for page := 1; ; page++ {
		query := url.Values{}
		for i, field := range populate {
			query.Set(fmt.Sprintf("populate[%d]", i), field)
		}
		query.Set("pagination[page]", fmt.Sprintf("%d", page))
		query.Set("pagination[pageSize]", fmt.Sprintf("%d", cmsPageSize))

		envelope, err := c.fetchPage(path, query)
		if err != nil {
			return nil, err
		}
		entries = append(entries, envelope.Data...)

		if envelope.Meta.Pagination.PageCount == 0 || page >= envelope.Meta.Pagination.PageCount {
			break
		}
	}
	return entries, nil
}

// FetchOptions loads one category's vocabulary from the CMS. Object type
// records additionally carry their suitable-door relation.
func (c *CatalogClient) FetchOptions(category string) ([]models.Option, error) {
	path, ok := cmsCollections[category]
	if !ok {
		return nil, fmt.Errorf("unknown option category: %s", category)
	}

	populate := []string{"icon"}
	if category == models.CategoryObjectType {
		populate = append(populate, "tuerens")
	}

	entries, err := c.fetchAll(path, populate)
	if err != nil {
		return nil, err
	}

	options := make([]models.Option, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			log.Printf("[WARNING] Skipping %s record %d without a name", category, entry.ID)
			continue
		}
		opt := models.Option{
			Category:    category,
			Name:        entry.Name,
			Key:         entry.slug(),
			Description: entry.Description,
			IconURL:     c.absoluteURL(entry.Icon),
			SortOrder:   entry.rank(),
			IsActive:    entry.active(),
		}
		for _, door := range entry.Doors {
			if door.Name == "" {
				continue
			}
			opt.SuitableDoors = append(opt.SuitableDoors, models.Option{
				Category: models.CategoryDoors,
				Name:     door.Name,
				Key:      door.slug(),
			})
		}
		options = append(options, opt)
	}
	return options, nil
}

// FetchCatalogItems loads the cylinder catalog with all six eligibility
// relations populated
func (c *CatalogClient) FetchCatalogItems() ([]models.CatalogItem, error) {
	populate := []string{"image", "objekttyps", "anlagentyps", "technologies", "qualitaets", "funktionens", "tuerens"}
	entries, err := c.fetchAll("/api/zylinders", populate)
	if err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			log.Printf("[WARNING] Skipping cylinder record %d without a name", entry.ID)
			continue
		}
		items = append(items, models.CatalogItem{
			Name:              entry.Name,
			Key:               entry.slug(),
			Description:       entry.Description,
			ImageURL:          c.absoluteURL(entry.Image),
			Price:             entry.Price,
			SortOrder:         entry.rank(),
			IsActive:          entry.active(),
			ObjectTypes:       relationOptions(models.CategoryObjectType, entry.ObjectTypes),
			InstallationTypes: relationOptions(models.CategoryInstallationType, entry.Installation),
			QualityTiers:      relationOptions(models.CategoryQuality, entry.Quality),
			Technologies:      relationOptions(models.CategoryTechnology, entry.Technologies),
			DoorTypes:         relationOptions(models.CategoryDoors, entry.Doors),
			Features:          relationOptions(models.CategoryFeatures, entry.Features),
		})
	}
	return items, nil
}

// FetchQuestions loads the questionnaire steps
func (c *CatalogClient) FetchQuestions() ([]models.Question, error) {
	entries, err := c.fetchAll("/api/questions", nil)
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, len(entries))
	for _, entry := range entries {
		if entry.QuestionKey == "" || entry.QuestionText == "" {
			log.Printf("[WARNING] Skipping question record %d without key or text", entry.ID)
			continue
		}
		qType := entry.Type
		if qType == "" {
			qType = models.QuestionTypeSingle
		}
		order := entry.Order
		if order == 0 {
			order = 1
		}
		questions = append(questions, models.Question{
			CategoryKey:  entry.QuestionKey,
			QuestionText: entry.QuestionText,
			Description:  entry.Description,
			Type:         qType,
			Order:        order,
		})
	}
	return questions, nil
}

// relationOptions normalizes a CMS relation into category-tagged option references
func relationOptions(category string, rel cmsRelation) []models.Option {
	options := make([]models.Option, 0, len(rel))
	for _, entry := range rel {
		if entry.Name == "" {
			continue
		}
		options = append(options, models.Option{
			Category: category,
			Name:     entry.Name,
			Key:      entry.slug(),
		})
	}
	return options
}

// SyncCatalog pulls the questionnaire and cylinder catalog from the CMS and
// upserts everything into the local database. Records that disappeared from
// the CMS are deactivated rather than deleted so saved plans keep resolving
// their catalog references.
func SyncCatalog(db *gorm.DB, client *CatalogClient) error {
	for _, category := range []string{
		models.CategoryObjectType,
		models.CategoryInstallationType,
		models.CategoryQuality,
		models.CategoryTechnology,
		models.CategoryDoors,
		models.CategoryFeatures,
	} {
		options, err := client.FetchOptions(category)
		if err != nil {
			return fmt.Errorf("failed to fetch %s options: %w", category, err)
		}
		if err := upsertOptions(db, category, options); err != nil {
			return fmt.Errorf("failed to store %s options: %w", category, err)
		}
		log.Printf("Synced %d %s options", len(options), category)
	}

	items, err := client.FetchCatalogItems()
	if err != nil {
		return fmt.Errorf("failed to fetch catalog items: %w", err)
	}
	if err := upsertCatalogItems(db, items); err != nil {
		return fmt.Errorf("failed to store catalog items: %w", err)
	}
	log.Printf("Synced %d catalog items", len(items))

	questions, err := client.FetchQuestions()
	if err != nil {
		return fmt.Errorf("failed to fetch questions: %w", err)
	}
	if err := upsertQuestions(db, questions); err != nil {
		return fmt.Errorf("failed to store questions: %w", err)
	}
	log.Printf("Synced %d questions", len(questions))

	return nil
}

func upsertOptions(db *gorm.DB, category string, options []models.Option) error {
	if len(options) == 0 {
		// An empty collection usually means missing CMS content; keep the
		// existing vocabulary instead of deactivating everything.
		return nil
	}

	keys := make([]string, 0, len(options))
	for _, opt := range options {
		keys = append(keys, opt.Key)

		var existing models.Option
		err := db.Where("category = ? AND key = ?", category, opt.Key).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			doors := opt.SuitableDoors
			opt.SuitableDoors = nil
			if err := db.Create(&opt).Error; err != nil {
				return err
			}
			if err := replaceSuitableDoors(db, &opt, doors); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":        opt.Name,
			"description": opt.Description,
			"icon_url":    opt.IconURL,
			"sort_order":  opt.SortOrder,
			"is_active":   opt.IsActive,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		if err := replaceSuitableDoors(db, &existing, opt.SuitableDoors); err != nil {
			return err
		}
	}

	return db.Model(&models.Option{}).
		Where("category = ? AND key NOT IN ?", category, keys).
		Update("is_active", false).Error
}

// replaceSuitableDoors resolves the door references against the stored door
// vocabulary and replaces the association. References the door sync has not
// seen yet are created so the association never dangles.
func replaceSuitableDoors(db *gorm.DB, opt *models.Option, doors []models.Option) error {
	if opt.Category != models.CategoryObjectType {
		return nil
	}

	resolved := make([]models.Option, 0, len(doors))
	for _, door := range doors {
		var stored models.Option
		err := db.Where("category = ? AND key = ?", models.CategoryDoors, door.Key).First(&stored).Error
		if err == gorm.ErrRecordNotFound {
			door.IsActive = true
			if err := db.Create(&door).Error; err != nil {
				return err
			}
			resolved = append(resolved, door)
			continue
		}
		if err != nil {
			return err
		}
		resolved = append(resolved, stored)
	}
	return db.Model(opt).Association("SuitableDoors").Replace(resolved)
}

func upsertCatalogItems(db *gorm.DB, items []models.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)

		var existing models.CatalogItem
		err := db.Where("key = ?", item.Key).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			relations := item.Eligibility()
			stripRelations(&item)
			if err := db.Create(&item).Error; err != nil {
				return err
			}
			if err := replaceEligibility(db, &item, relations); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"image_url":   item.ImageURL,
			"price":       item.Price,
			"sort_order":  item.SortOrder,
			"is_active":   item.IsActive,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		if err := replaceEligibility(db, &existing, item.Eligibility()); err != nil {
			return err
		}
	}

	return db.Model(&models.CatalogItem{}).
		Where("key NOT IN ?", keys).
		Update("is_active", false).Error
}

func stripRelations(item *models.CatalogItem) {
	item.ObjectTypes = nil
	item.InstallationTypes = nil
	item.QualityTiers = nil
	item.Technologies = nil
	item.DoorTypes = nil
	item.Features = nil
}

// replaceEligibility resolves each eligibility reference against the stored
// option vocabulary, creating options the vocabulary sync has not seen, and
// replaces the item's associations
func replaceEligibility(db *gorm.DB, item *models.CatalogItem, refs models.Eligibility) error {
	for _, rel := range []struct {
		association string
		category    string
		refs        []models.OptionRef
	}{
		{"ObjectTypes", models.CategoryObjectType, refs.ObjectTypes},
		{"InstallationTypes", models.CategoryInstallationType, refs.InstallationTypes},
		{"QualityTiers", models.CategoryQuality, refs.QualityTiers},
		{"Technologies", models.CategoryTechnology, refs.Technologies},
		{"DoorTypes", models.CategoryDoors, refs.DoorTypes},
		{"Features", models.CategoryFeatures, refs.Features},
	} {
		resolved := make([]models.Option, 0, len(rel.refs))
		for _, ref := range rel.refs {
			var stored models.Option
			err := db.Where("category = ? AND key = ?", rel.category, ref.Key).First(&stored).Error
			if err == gorm.ErrRecordNotFound {
				stored = models.Option{
					Category: rel.category,
					Name:     ref.Name,
					Key:      ref.Key,
					IsActive: true,
				}
				if err := db.Create(&stored).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			resolved = append(resolved, stored)
		}
		if err := db.Model(item).Association(rel.association).Replace(resolved); err != nil {
			return err
		}
	}
	return nil
}

func upsertQuestions(db *gorm.DB, questions []models.Question) error {
	for _, question := range questions {
		var existing models.Question
		err := db.Where("category_key = ?", question.CategoryKey).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&question).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"question_text": question.QuestionText,
			"description":   question.Description,
			"type":          question.Type,
			"order":         question.Order,
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
	}
	return nil
}
