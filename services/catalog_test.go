package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"schliessplan_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Option{}, &models.CatalogItem{}, &models.Question{})
	return db
}

func cmsTestServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			body = `{"data": []}`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func TestFetchOptions(t *testing.T) {
	t.Run("Flat Records", func(t *testing.T) {
		server := cmsTestServer(t, map[string]string{
			"/api/anlagentyps": `{"data": [
				{"id": 1, "name": "Gleichschließend", "key": "gleichschliessend", "sortOrder": 1},
				{"id": 2, "name": "Hauptschlüssel", "sortOrder": 2}
			]}`,
		})
		defer server.Close()

		client := NewCatalogClient(server.URL, "")
		options, err := client.FetchOptions(models.CategoryInstallationType)
		require.NoError(t, err)
		require.Len(t, options, 2)

		assert.Equal(t, "gleichschliessend", options[0].Key)
		// Missing key is derived from the name
		assert.Equal(t, "hauptschlüssel", options[1].Key)
		assert.True(t, options[0].IsActive)
	})

	t.Run("Nested Attributes Records", func(t *testing.T) {
		server := cmsTestServer(t, map[string]string{
			"/api/qualitaets": `{"data": [
				{"id": 7, "attributes": {"name": "Mittel (Empfohlen)", "key": "mittel", "sortOrder": 2}}
			]}`,
		})
		defer server.Close()

		client := NewCatalogClient(server.URL, "")
		options, err := client.FetchOptions(models.CategoryQuality)
		require.NoError(t, err)
		require.Len(t, options, 1)
		assert.Equal(t, "Mittel (Empfohlen)", options[0].Name)
		assert.Equal(t, 2, options[0].SortOrder)
	})

	t.Run("Missing Sort Order Defaults To Last", func(t *testing.T) {
		server := cmsTestServer(t, map[string]string{
			"/api/funktionens": `{"data": [{"id": 1, "name": "RFID"}]}`,
		})
		defer server.Close()

		client := NewCatalogClient(server.URL, "")
		options, err := client.FetchOptions(models.CategoryFeatures)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultSortOrder, options[0].SortOrder)
	})

	t.Run("Object Types Carry Suitable Doors", func(t *testing.T) {
		server := cmsTestServer(t, map[string]string{
			"/api/objekttyps": `{"data": [
				{"id": 1, "name": "Büro", "key": "buero",
				 "tuerens": {"data": [{"id": 5, "attributes": {"name": "Haustür"}}]}},
				{"id": 2, "name": "Wohnung", "key": "wohnung", "tuerens": [{"id": 6, "name": "Keller", "key": "keller"}]}
			]}`,
		})
		defer server.Close()

		client := NewCatalogClient(server.URL, "")
		options, err := client.FetchOptions(models.CategoryObjectType)
		require.NoError(t, err)
		require.Len(t, options, 2)

		// Wrapped and bare relation arrays normalize identically
		require.Len(t, options[0].SuitableDoors, 1)
		assert.Equal(t, "haustür", options[0].SuitableDoors[0].Key)
		require.Len(t, options[1].SuitableDoors, 1)
		assert.Equal(t, "keller", options[1].SuitableDoors[0].Key)
	})

	t.Run("Unknown Category Is Rejected", func(t *testing.T) {
		client := NewCatalogClient("http://localhost:1", "")
		_, err := client.FetchOptions("farben")
		assert.Error(t, err)
	})

	t.Run("Server Error Propagates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewCatalogClient(server.URL, "")
		_, err := client.FetchOptions(models.CategoryDoors)
		assert.Error(t, err)
	})
}

func TestFetchCatalogItems(t *testing.T) {
	t.Run("Normalizes Both Record Shapes", func(t *testing.T) {
		server := cmsTestServer(t, map[string]string{
			"/api/zylinders": `{"data": [
				{"id": 1, "name": "System A", "key": "system_a", "price": 49.9, "sortOrder": 1,
				 "objekttyps": [{"id": 10, "name": "Büro", "key": "buero"}],
				 "funktionens": {"data": [{"id": 11, "attributes": {"name": "Kopierschutz"}}]}},
				{"id": 2, "attributes": {"name": "System B", "isActive": false}}
			]}`,
		})
		defer server.Close()

		client := NewCatalogClient(server.URL, "")
		items, err := client.FetchCatalogItems()
		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, "system_a", items[0].Key)
		require.NotNil(t, items[0].Price)
		assert.Equal(t, 49.9, *items[0].Price)
		require.Len(t, items[0].ObjectTypes, 1)
		assert.Equal(t, "buero", items[0].ObjectTypes[0].Key)
		require.Len(t, items[0].Features, 1)
		assert.Equal(t, "kopierschutz", items[0].Features[0].Key)

		// Only an explicit false deactivates
		assert.True(t, items[0].IsActive)
		assert.False(t, items[1].IsActive)
		assert.Equal(t, "system_b", items[1].Key)
		assert.Nil(t, items[1].Price)
	})

	t.Run("Follows Pagination", func(t *testing.T) {
		pagesServed := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pagesServed++
			page := r.URL.Query().Get("pagination[page]")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"data": [{"id": %s, "name": "System %s"}],
				"meta": {"pagination": {"page": %s, "pageCount": 3}}}`, page, page, page)
		}))
		defer server.Close()

		client := NewCatalogClient(server.URL, "")
		items, err := client.FetchCatalogItems()
		require.NoError(t, err)
		assert.Equal(t, 3, pagesServed)
		assert.Len(t, items, 3)
	})

	t.Run("Sends Bearer Token", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{"data": []}`)
		}))
		defer server.Close()

		client := NewCatalogClient(server.URL, "secret-token")
		_, err := client.FetchCatalogItems()
		require.NoError(t, err)
		assert.Equal(t, "Bearer secret-token", gotAuth)
	})
}

func TestFetchQuestions(t *testing.T) {
	server := cmsTestServer(t, map[string]string{
		"/api/questions": `{"data": [
			{"id": 1, "questionKey": "objekttyp", "questionText": "Für welchen Objekttyp ist der Schließplan?", "order": 1},
			{"id": 2, "questionKey": "tueren", "questionText": "Welche Türen benötigen Sie?", "type": "multiple", "order": 5},
			{"id": 3, "questionKey": "qualitaet", "questionText": "Welches Niveau?"},
			{"id": 4, "questionText": "Kaputt"}
		]}`,
	})
	defer server.Close()

	client := NewCatalogClient(server.URL, "")
	questions, err := client.FetchQuestions()
	require.NoError(t, err)
	require.Len(t, questions, 3) // record without a key is skipped

	assert.Equal(t, models.QuestionTypeSingle, questions[0].Type)
	assert.Equal(t, models.QuestionTypeMultiple, questions[1].Type)
	// Missing order defaults to the first position
	assert.Equal(t, 1, questions[2].Order)
}

func TestSyncCatalog(t *testing.T) {
	responses := map[string]string{
		"/api/anlagentyps": `{"data": [
			{"id": 1, "name": "Gleichschließend", "key": "gleichschliessend", "sortOrder": 1}
		]}`,
		"/api/tuerens": `{"data": [
			{"id": 2, "name": "Haustür", "key": "haustür", "sortOrder": 1}
		]}`,
		"/api/objekttyps": `{"data": [
			{"id": 3, "name": "Büro", "key": "buero", "tuerens": [{"id": 2, "name": "Haustür", "key": "haustür"}]}
		]}`,
		"/api/zylinders": `{"data": [
			{"id": 4, "name": "System A", "key": "system_a", "sortOrder": 1,
			 "objekttyps": [{"id": 3, "name": "Büro", "key": "buero"}]}
		]}`,
		"/api/questions": `{"data": [
			{"id": 5, "questionKey": "objekttyp", "questionText": "Für welchen Objekttyp?", "order": 1}
		]}`,
	}

	server := cmsTestServer(t, responses)
	defer server.Close()

	db := setupCatalogTestDB()
	client := NewCatalogClient(server.URL, "")

	require.NoError(t, SyncCatalog(db, client))

	t.Run("Stores Options", func(t *testing.T) {
		var opt models.Option
		require.NoError(t, db.Where("category = ? AND key = ?", models.CategoryInstallationType, "gleichschliessend").First(&opt).Error)
		assert.Equal(t, "Gleichschließend", opt.Name)
	})

	t.Run("Links Suitable Doors", func(t *testing.T) {
		var objectType models.Option
		require.NoError(t, db.Preload("SuitableDoors").
			Where("category = ? AND key = ?", models.CategoryObjectType, "buero").
			First(&objectType).Error)
		require.Len(t, objectType.SuitableDoors, 1)
		assert.Equal(t, "Haustür", objectType.SuitableDoors[0].Name)
	})

	t.Run("Stores Catalog Items With Eligibility", func(t *testing.T) {
		var item models.CatalogItem
		require.NoError(t, db.Preload("ObjectTypes").Where("key = ?", "system_a").First(&item).Error)
		require.Len(t, item.ObjectTypes, 1)
		assert.Equal(t, "buero", item.ObjectTypes[0].Key)
	})

	t.Run("Stores Questions", func(t *testing.T) {
		var question models.Question
		require.NoError(t, db.Where("category_key = ?", "objekttyp").First(&question).Error)
		assert.Equal(t, 1, question.Order)
	})

	t.Run("Resync Updates Instead Of Duplicating", func(t *testing.T) {
		responses["/api/zylinders"] = `{"data": [
			{"id": 4, "name": "System A Plus", "key": "system_a", "sortOrder": 2}
		]}`

		require.NoError(t, SyncCatalog(db, client))

		var count int64
		db.Model(&models.CatalogItem{}).Count(&count)
		assert.Equal(t, int64(1), count)

		var item models.CatalogItem
		require.NoError(t, db.Where("key = ?", "system_a").First(&item).Error)
		assert.Equal(t, "System A Plus", item.Name)
		assert.Equal(t, 2, item.SortOrder)
	})

	t.Run("Vanished Items Are Deactivated", func(t *testing.T) {
		responses["/api/zylinders"] = `{"data": [
			{"id": 9, "name": "System C", "key": "system_c"}
		]}`

		require.NoError(t, SyncCatalog(db, client))

		var item models.CatalogItem
		require.NoError(t, db.Where("key = ?", "system_a").First(&item).Error)
		assert.False(t, item.IsActive)
	})
}
