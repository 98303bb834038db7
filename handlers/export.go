package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"schliessplan_app_go/config"
	"schliessplan_app_go/db"
	"schliessplan_app_go/middleware"
	"schliessplan_app_go/models"
	"schliessplan_app_go/services"

	"github.com/labstack/echo/v4"
)

const (
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfMIME  = "application/pdf"
)

func loadPlanForExport(c echo.Context) (*models.SavedPlan, *services.PlanExport, error) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	saved, err := services.GetSavedPlan(db.DB, user.ID, c.Param("id"))
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}

	export, err := services.BuildPlanExport(db.DB, saved)
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to build export")
	}
	return saved, export, nil
}

// storeExport uploads an export artifact when the store query parameter is
// set, returning the storage key or an empty string
func storeExport(c echo.Context, saved *models.SavedPlan, filename, contentType string, content []byte) (string, error) {
	if c.QueryParam("store") != "true" {
		return "", nil
	}
	key := services.GeneratePlanExportKey(saved.UserID, saved.ID, filename)
	_, err := services.Storage.UploadReader(c.Request().Context(), bytes.NewReader(content), key, contentType, int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to store export: %w", err)
	}
	return key, nil
}

// ExportPlanXLSXHandler streams the plan as an Excel workbook
func ExportPlanXLSXHandler(c echo.Context) error {
	saved, export, err := loadPlanForExport(c)
	if err != nil {
		return err
	}

	buf, err := services.ExportPlanXLSX(export)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate workbook")
	}

	filename := fmt.Sprintf("schliessplan_%s.xlsx", saved.ID)
	if key, err := storeExport(c, saved, filename, xlsxMIME, buf.Bytes()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	} else if key != "" {
		return c.JSON(http.StatusOK, map[string]string{"key": key, "url": services.Storage.GetPublicURL(key)})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

// ExportPlanHTMLHandler renders the plan as a printable HTML page
func ExportPlanHTMLHandler(c echo.Context) error {
	_, export, err := loadPlanForExport(c)
	if err != nil {
		return err
	}

	html, err := services.RenderPlanHTML(export)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render plan")
	}
	return c.HTML(http.StatusOK, html)
}

// ExportPlanPDFHandler renders the plan to PDF via headless Chrome
func ExportPlanPDFHandler(c echo.Context) error {
	saved, export, err := loadPlanForExport(c)
	if err != nil {
		return err
	}

	pdf, err := services.GeneratePlanPDF(export)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	filename := fmt.Sprintf("schliessplan_%s.pdf", saved.ID)
	if key, err := storeExport(c, saved, filename, pdfMIME, pdf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	} else if key != "" {
		return c.JSON(http.StatusOK, map[string]string{"key": key, "url": services.Storage.GetPublicURL(key)})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, pdfMIME, pdf)
}

type sendPlanRequest struct {
	Recipient     string `json:"recipient"`
	RecipientName string `json:"recipient_name"`
}

// SendPlanHandler emails the plan to a recipient with the Excel export
// attached. PDF generation requires a Chrome binary and is skipped when
// unavailable.
func SendPlanHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	saved, export, err := loadPlanForExport(c)
	if err != nil {
		return err
	}

	var req sendPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Recipient == "" {
		req.Recipient = user.Email
		req.RecipientName = user.FullName()
	}

	buf, err := services.ExportPlanXLSX(export)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate workbook")
	}

	attachments := []services.EmailAttachment{
		{
			Filename:    fmt.Sprintf("schliessplan_%s.xlsx", saved.ID),
			Content:     buf.Bytes(),
			ContentType: xlsxMIME,
		},
	}

	if pdf, err := services.GeneratePlanPDF(export); err == nil {
		attachments = append(attachments, services.EmailAttachment{
			Filename:    fmt.Sprintf("schliessplan_%s.pdf", saved.ID),
			Content:     pdf,
			ContentType: pdfMIME,
		})
	} else {
		c.Logger().Warnf("PDF attachment skipped: %v", err)
	}

	cfg := c.Get("config").(*config.Config)
	email, err := services.BuildPlanEmail(cfg, req.Recipient, services.PlanEmailData{
		PlanName:      export.Name,
		ItemName:      export.ItemName,
		RecipientName: req.RecipientName,
		SenderName:    user.FullName(),
	}, attachments)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build email")
	}

	services.SendEmailAsync(cfg, email)
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Email queued"})
}
