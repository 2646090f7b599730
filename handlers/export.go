package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/archive"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"
	"claim_flow_app_go/templates/pages"

	"github.com/labstack/echo/v4"
)

// streamArchive writes a prepared archive straight to the response. Once the
// headers are out, failures can only be logged and the connection dropped.
func streamArchive(c echo.Context, a *archive.Archive, fileName string) error {
	for _, s := range a.Skipped() {
		log.Printf("[EXPORT] Skipped %q, tried %v", s.Entry.Name, s.Tried)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/zip")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
	res.WriteHeader(http.StatusOK)

	if err := a.WriteTo(c.Request().Context(), res); err != nil {
		log.Printf("[EXPORT] %s aborted: %v", fileName, err)
		// abort the connection so the client sees a failed download
		panic(http.ErrAbortHandler)
	}
	return nil
}

// ExportCaseArchiveHandler streams every visible document of one case as ZIP
// GET /api/cases/:id/export.zip
func ExportCaseArchiveHandler(c echo.Context) error {
	caseRecord, err := loadCase(c, permissions.PageExports)
	if err != nil {
		return respondError(c, err)
	}
	audience, err := audienceFor(c)
	if err != nil {
		return respondError(c, err)
	}

	a, err := services.PrepareCaseArchive(c.Request().Context(), db.DB, services.Storage, caseRecord, audience)
	if err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionExport,
		"Case", caseRecord.ID, caseRecord.CaseNumber, fmt.Sprintf("%d evrak arşivlendi", a.Len()), nil, nil)

	return streamArchive(c, a, services.ArchiveFileName(caseRecord.CaseNumber, time.Now()))
}

// ExportBulkArchiveHandler streams the documents of every case in scope as
// ZIP, one folder per case
// GET /api/exports/documents.zip?category=&status=
func ExportBulkArchiveHandler(c echo.Context) error {
	scope, err := scopeFor(c, permissions.PageExports)
	if err != nil {
		return respondError(c, err)
	}
	audience, err := audienceFor(c)
	if err != nil {
		return respondError(c, err)
	}

	filters := services.BulkArchiveFilters{
		Category: casefile.Category(c.QueryParam("category")),
		Status:   casefile.Status(c.QueryParam("status")),
	}
	a, err := services.PrepareBulkArchive(c.Request().Context(), db.DB, services.Storage, scope, audience, filters)
	if err != nil {
		return respondError(c, err)
	}

	prefix := "evraklar"
	if filters.Category != "" {
		prefix = "evraklar_" + string(filters.Category)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionExport,
		"Case", "", prefix, fmt.Sprintf("Toplu arşiv: %d evrak", a.Len()), nil, filters)

	return streamArchive(c, a, services.ArchiveFileName(prefix, time.Now()))
}

// ExportCasesXLSXHandler downloads the case list as a spreadsheet. The case
// scope is taken from page, so the reports and exports pages can both serve it.
// GET /api/exports/cases.xlsx, GET /api/reports/cases.xlsx
func ExportCasesXLSXHandler(page string) echo.HandlerFunc {
	return func(c echo.Context) error {
		scope, err := scopeFor(c, page)
		if err != nil {
			return respondError(c, err)
		}
		buf, err := services.ExportCasesXLSX(db.DB, scope, caseFilters(c))
		if err != nil {
			return respondError(c, err)
		}

		services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionExport,
			"Case", "", "dosyalar.xlsx", "Dosya listesi dışa aktarıldı", nil, nil)

		fileName := fmt.Sprintf("dosyalar_%s.xlsx", time.Now().Format("20060102_1504"))
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
		return c.Stream(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf)
	}
}

// CaseSummaryPDFHandler renders the case summary page to PDF with headless Chrome
// GET /cases/:id/summary.pdf
func CaseSummaryPDFHandler(c echo.Context) error {
	caseRecord, err := loadCase(c, permissions.PageExports)
	if err != nil {
		return respondError(c, err)
	}
	audience, err := audienceFor(c)
	if err != nil {
		return respondError(c, err)
	}
	checklist, err := services.CaseChecklist(db.DB, caseRecord)
	if err != nil {
		return respondError(c, err)
	}
	docs, err := services.ListCaseDocuments(db.DB, caseRecord, audience)
	if err != nil {
		return respondError(c, err)
	}

	var html bytes.Buffer
	component := pages.CaseSummary(caseRecord, checklist, documentDisplays(c, docs, audience), time.Now())
	if err := component.Render(c.Request().Context(), &html); err != nil {
		return respondError(c, err)
	}

	if pdfRenderer == nil {
		return respondError(c, services.ErrPDFBusy)
	}
	pdf, err := pdfRenderer.Render(c.Request().Context(), html.String(), caseRecord.CaseNumber+" "+caseRecord.CustomerName)
	if err != nil {
		if c.Request().Context().Err() != nil {
			// client went away
			return nil
		}
		return respondError(c, err)
	}

	fileName := caseRecord.CaseNumber + "_ozet.pdf"
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, fileName))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
