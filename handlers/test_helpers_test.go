package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"schliessplan_app_go/config"
	"schliessplan_app_go/db"
	"schliessplan_app_go/models"
	"schliessplan_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.Exec("PRAGMA journal_mode=WAL;").Error
	assert.NoError(t, err)

	if services.Storage == nil {
		services.Storage = services.NewLocalStorage("tmp/test_uploads")
	}

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Option{},
		&models.CatalogItem{},
		&models.Question{},
		&models.SavedPlan{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
		EmailFrom:     "noreply@test.local",
		EmailFromName: "Testversand",
	})

	return e, c, rec
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string) *models.User {
	t.Helper()
	user, err := services.RegisterUser(testDB, email, "geheim123", "Max", "Muster")
	assert.NoError(t, err)
	return user
}

func seedTestCatalog(t *testing.T, testDB *gorm.DB) *models.CatalogItem {
	t.Helper()
	assert.NoError(t, services.SeedFallbackCatalog(testDB))

	item := &models.CatalogItem{
		Name:     "System Alpha",
		Key:      "system_alpha",
		IsActive: true,
	}
	assert.NoError(t, testDB.Create(item).Error)
	return item
}
