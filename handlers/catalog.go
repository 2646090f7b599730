package handlers

import (
	"net/http"

	"claim_flow_app_go/middleware"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"

	"github.com/labstack/echo/v4"
)

// GetFileTypesHandler returns the case categories with their required documents
// GET /api/catalog/file-types
func GetFileTypesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, casefile.FileTypes())
}

// GetResultDocumentsHandler returns the outcome documents the caller may see.
// Staff may ask for another audience with ?audience=customer|dealer|admin.
// GET /api/catalog/result-documents
func GetResultDocumentsHandler(c echo.Context) error {
	audience, err := audienceFor(c)
	if err != nil {
		return respondError(c, err)
	}
	if requested := casefile.Audience(c.QueryParam("audience")); requested != "" && audience == casefile.AudienceAdmin {
		switch requested {
		case casefile.AudienceCustomer, casefile.AudienceDealer, casefile.AudienceAdmin:
			audience = requested
		default:
			return badRequest(c, "Geçersiz hedef kitle")
		}
	}
	return c.JSON(http.StatusOK, casefile.VisibleResultDocuments(audience))
}

// GetStatusesHandler returns the ordered case stages with labels
// GET /api/catalog/statuses
func GetStatusesHandler(c echo.Context) error {
	type status struct {
		ID        casefile.Status `json:"id"`
		Label     string          `json:"label"`
		Automatic bool            `json:"automatic"`
	}
	out := make([]status, 0, len(casefile.Statuses()))
	for _, s := range casefile.Statuses() {
		out = append(out, status{ID: s, Label: s.Label(), Automatic: s.IsAutomatic()})
	}
	return c.JSON(http.StatusOK, out)
}

// GetMyPermissionsHandler returns the capabilities of the caller on one page
// GET /api/permissions/:page
func GetMyPermissionsHandler(c echo.Context) error {
	page := c.Param("page")
	if !permissions.IsPage(page) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Sayfa bulunamadı"})
	}
	return c.JSON(http.StatusOK, middleware.Capabilities(c, page))
}
