package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"
	"claim_flow_app_go/templates/components"

	"github.com/labstack/echo/v4"
)

// documentCase loads the :id case for a document operation along with the
// caller's audience
func documentCase(c echo.Context) (*models.Case, casefile.Audience, error) {
	caseRecord, err := loadCase(c, permissions.PageDocuments)
	if err != nil {
		return nil, "", err
	}
	audience, err := audienceFor(c)
	if err != nil {
		return nil, "", err
	}
	return caseRecord, audience, nil
}

// afterDocumentChange notifies on a status change and answers with the
// refreshed checklist
func afterDocumentChange(c echo.Context, caseRecord *models.Case, result *services.UploadResult, status int) error {
	user := middleware.GetCurrentUser(c)
	if result.StatusChanged && notificationService != nil {
		notificationService.NotifyCaseStatusChange(caseRecord, result.PreviousState, user.ID)
	}

	if isHTMX(c) {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusOK)
	}

	checklist, err := services.CaseChecklist(db.DB, caseRecord)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status, map[string]interface{}{
		"document":       result.Document,
		"status":         caseRecord.Status,
		"status_changed": result.StatusChanged,
		"checklist":      checklist,
	})
}

// UploadCaseDocumentHandler stores an uploaded file on a case
// POST /api/cases/:id/documents (multipart: kind, file)
func UploadCaseDocumentHandler(c echo.Context) error {
	caseRecord, audience, err := documentCase(c)
	if err != nil {
		return respondError(c, err)
	}
	kind := casefile.Kind(c.FormValue("kind"))
	if kind == "" {
		return badRequest(c, "Evrak türü seçilmelidir")
	}
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Dosya seçilmelidir")
	}

	user := middleware.GetCurrentUser(c)
	result, err := services.UploadCaseDocument(c.Request().Context(), db.DB, services.Storage, caseRecord, user, audience, kind, file)
	if err != nil {
		return respondError(c, err)
	}

	doc := result.Document
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate,
		"CaseDocument", doc.ID, doc.FileOriginalName, "Evrak yüklendi: "+casefile.KindLabel(kind), nil, doc)

	if doc.IsResult && notificationService != nil && casefile.CanSeeDocument(casefile.AudienceDealer, kind) {
		caseID := caseRecord.ID
		if err := notificationService.CreateNotification(&models.Notification{
			DealerID: caseRecord.DealerID,
			CaseID:   &caseID,
			Type:     models.NotificationTypeResultDocument,
			Title:    caseRecord.CaseNumber + " sonuç evrakı eklendi",
			Message:  casefile.KindLabel(kind),
			LinkURL:  "/cases/" + caseRecord.ID,
		}); err != nil {
			c.Logger().Warnf("Failed to create notification: %v", err)
		}
	}

	return afterDocumentChange(c, caseRecord, result, http.StatusCreated)
}

// GetCaseDocumentsHandler lists the documents of a case visible to the caller
// GET /api/cases/:id/documents
func GetCaseDocumentsHandler(c echo.Context) error {
	caseRecord, audience, err := documentCase(c)
	if err != nil {
		return respondError(c, err)
	}
	docs, err := services.ListCaseDocuments(db.DB, caseRecord, audience)
	if err != nil {
		return respondError(c, err)
	}
	if isHTMX(c) {
		return render(c, http.StatusOK, components.DocumentRows(documentDisplays(c, docs, audience)))
	}
	return c.JSON(http.StatusOK, docs)
}

// DownloadCaseDocumentHandler streams one document, resolving legacy paths
// GET /api/cases/:id/documents/:docId/download
func DownloadCaseDocumentHandler(c echo.Context) error {
	caseRecord, audience, err := documentCase(c)
	if err != nil {
		return respondError(c, err)
	}
	doc, err := services.GetCaseDocument(db.DB, caseRecord, c.Param("docId"), audience)
	if err != nil {
		return respondError(c, err)
	}

	rc, err := services.OpenCaseDocument(c.Request().Context(), services.Storage, doc)
	if err != nil {
		return respondError(c, err)
	}
	defer rc.Close()

	name := services.DocumentDisplayName(doc)
	contentType := doc.MimeType
	if contentType == "" {
		contentType = services.ContentTypeForName(name)
	}

	disposition := "attachment"
	if c.QueryParam("inline") == "1" {
		disposition = "inline"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("%s; filename*=UTF-8''%s", disposition, url.PathEscape(name)))

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDownload,
		"CaseDocument", doc.ID, name, "Evrak indirildi", nil, nil)

	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), rc)
	return err
}

// DeleteCaseDocumentHandler soft deletes a document and re-derives the status
// DELETE /api/cases/:id/documents/:docId
func DeleteCaseDocumentHandler(c echo.Context) error {
	caseRecord, audience, err := documentCase(c)
	if err != nil {
		return respondError(c, err)
	}
	result, err := services.DeleteCaseDocument(db.DB, caseRecord, c.Param("docId"), audience)
	if err != nil {
		return respondError(c, err)
	}

	doc := result.Document
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDelete,
		"CaseDocument", doc.ID, services.DocumentDisplayName(doc), "Evrak silindi", doc, nil)

	return afterDocumentChange(c, caseRecord, result, http.StatusOK)
}

// GetCaseChecklistHandler returns the required document checklist
// GET /api/cases/:id/checklist
func GetCaseChecklistHandler(c echo.Context) error {
	caseRecord, err := loadCase(c, permissions.PageCases)
	if err != nil {
		return respondError(c, err)
	}
	checklist, err := services.CaseChecklist(db.DB, caseRecord)
	if err != nil {
		return respondError(c, err)
	}
	if isHTMX(c) {
		return render(c, http.StatusOK, components.Checklist(checklist))
	}
	return c.JSON(http.StatusOK, checklist)
}
