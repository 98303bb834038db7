package handlers

import (
	"net/http"

	"schliessplan_app_go/db"
	"schliessplan_app_go/models"
	"schliessplan_app_go/services"

	"github.com/labstack/echo/v4"
)

// GetQuestionsHandler returns the questionnaire with option vocabularies.
// The door step is narrowed by the objekttyp query parameter when present.
func GetQuestionsHandler(c echo.Context) error {
	objectType := c.QueryParam("objekttyp")

	questions, err := services.GetQuestionnaire(db.DB, objectType)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load questionnaire")
	}
	return c.JSON(http.StatusOK, questions)
}

// GetOptionsHandler returns the active options of one category
func GetOptionsHandler(c echo.Context) error {
	category := c.Param("category")

	if category == models.CategoryDoors {
		doors, err := services.GetDoorOptions(db.DB, c.QueryParam("objekttyp"))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load door options")
		}
		return c.JSON(http.StatusOK, doors)
	}

	options, err := services.GetOptions(db.DB, category)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, options)
}

// RecommendationsHandler scores the active catalog against the submitted
// criteria and returns the ranked result
func RecommendationsHandler(c echo.Context) error {
	var criteria models.CriteriaSet
	if err := c.Bind(&criteria); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	catalog, err := services.GetActiveCatalog(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load catalog")
	}

	ranked := services.RankCatalog(&criteria, catalog)
	return c.JSON(http.StatusOK, ranked)
}
