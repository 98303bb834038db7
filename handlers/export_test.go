package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportPlanXLSXHandler(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "kunde@example.com")
	item := seedTestCatalog(t, testDB)
	created := createPlanViaHandler(t, testDB, user, item)

	t.Run("Download", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/plans/"+created.ID+"/export.xlsx", nil)
		c.Set("user", user)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)

		require.NoError(t, ExportPlanXLSXHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxMIME, rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".xlsx")

		workbook, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer workbook.Close()

		title, err := workbook.GetCellValue("Schließplan", "A1")
		require.NoError(t, err)
		assert.Equal(t, "Bürogebäude", title)
	})

	t.Run("Stored", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/plans/"+created.ID+"/export.xlsx?store=true", nil)
		c.Set("user", user)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)

		require.NoError(t, ExportPlanXLSXHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "users/"+user.ID+"/plans/"+created.ID+"/exports")
	})

	t.Run("ForeignPlanNotFound", func(t *testing.T) {
		intruder := createTestUser(t, testDB, "fremd@example.com")
		_, c, _ := setupEcho(http.MethodGet, "/api/plans/"+created.ID+"/export.xlsx", nil)
		c.Set("user", intruder)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)

		err := ExportPlanXLSXHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}

func TestExportPlanHTMLHandler(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "kunde@example.com")
	item := seedTestCatalog(t, testDB)
	created := createPlanViaHandler(t, testDB, user, item)

	_, c, rec := setupEcho(http.MethodGet, "/api/plans/"+created.ID+"/export.html", nil)
	c.Set("user", user)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)

	require.NoError(t, ExportPlanHTMLHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "Bürogebäude")
	assert.Contains(t, rec.Body.String(), "System Alpha")
}

func TestSendPlanHandler(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "kunde@example.com")
	item := seedTestCatalog(t, testDB)
	created := createPlanViaHandler(t, testDB, user, item)

	t.Run("QueuedInTestMode", func(t *testing.T) {
		body := `{"recipient":"empfaenger@example.com","recipient_name":"Frau Beispiel"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/plans/"+created.ID+"/send", strings.NewReader(body))
		c.Set("user", user)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)

		require.NoError(t, SendPlanHandler(c))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("DefaultsToAccountEmail", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/plans/"+created.ID+"/send", strings.NewReader(`{}`))
		c.Set("user", user)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)

		require.NoError(t, SendPlanHandler(c))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}
