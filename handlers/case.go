package handlers

import (
	"net/http"
	"strings"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"
	"claim_flow_app_go/templates/components"
	"claim_flow_app_go/templates/pages"

	"github.com/labstack/echo/v4"
)

// loadCase fetches the :id case inside the caller's scope on page
func loadCase(c echo.Context, page string) (*models.Case, error) {
	scope, err := scopeFor(c, page)
	if err != nil {
		return nil, err
	}
	return services.GetCase(db.DB, scope, c.Param("id"))
}

func caseFilters(c echo.Context) services.CaseFilters {
	return services.CaseFilters{
		Category:    casefile.Category(c.QueryParam("category")),
		Status:      casefile.Status(c.QueryParam("status")),
		DealerID:    c.QueryParam("dealer_id"),
		SearchQuery: strings.TrimSpace(c.QueryParam("q")),
	}
}

// CasesPageHandler renders the case list
// GET /cases
func CasesPageHandler(c echo.Context) error {
	scope, err := scopeFor(c, permissions.PageCases)
	if err != nil {
		return respondError(c, err)
	}
	filters := caseFilters(c)
	page, pageSize := pageParams(c)

	cases, total, err := services.ListCases(db.DB, scope, filters, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	data := pages.CaseListData{
		Cases:     cases,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
		Category:  string(filters.Category),
		Status:    string(filters.Status),
		Search:    filters.SearchQuery,
		CanCreate: middleware.Capabilities(c, permissions.PageCases).Create,
		CanExport: middleware.Capabilities(c, permissions.PageExports).Export,
	}
	return renderPage(c, "Dosyalar", permissions.PageCases, pages.CaseList(data))
}

// documentDisplays attaches display names and delete rights to documents
func documentDisplays(c echo.Context, docs []models.CaseDocument, audience casefile.Audience) []components.DocumentDisplay {
	canDelete := middleware.Capabilities(c, permissions.PageDocuments).Delete
	out := make([]components.DocumentDisplay, 0, len(docs))
	for i := range docs {
		out = append(out, components.DocumentDisplay{
			Document:  docs[i],
			Name:      services.DocumentDisplayName(&docs[i]),
			CanDelete: canDelete && (!docs[i].IsResult || audience == casefile.AudienceAdmin),
		})
	}
	return out
}

// nextStages lists the stages a case may be moved to manually
func nextStages(current casefile.Status) []casefile.Status {
	var out []casefile.Status
	for _, s := range casefile.Statuses() {
		if casefile.CanTransition(current, s) == nil {
			out = append(out, s)
		}
	}
	return out
}

// CaseDetailPageHandler renders one case
// GET /cases/:id
func CaseDetailPageHandler(c echo.Context) error {
	caseRecord, err := loadCase(c, permissions.PageCases)
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

	data := pages.CaseDetailData{
		Case:       caseRecord,
		Checklist:  checklist,
		Documents:  documentDisplays(c, docs, audience),
		Cases:      middleware.Capabilities(c, permissions.PageCases),
		Exports:    middleware.Capabilities(c, permissions.PageExports),
		CanUpload:  middleware.Capabilities(c, permissions.PageDocuments).Create,
		CanSMS:     middleware.Capabilities(c, permissions.PageSMS).Create,
		NextStages: nextStages(caseRecord.Status),
	}
	data.UploadKinds, _ = casefile.RequiredDocuments(caseRecord.Category)
	if audience == casefile.AudienceAdmin {
		data.ResultKinds = casefile.ResultDocuments()
	}

	return renderPage(c, caseRecord.CaseNumber, permissions.PageCases, pages.CaseDetail(data))
}

// GetCasesHandler lists cases as JSON
// GET /api/cases?category=&status=&dealer_id=&q=&page=&page_size=
func GetCasesHandler(c echo.Context) error {
	scope, err := scopeFor(c, permissions.PageCases)
	if err != nil {
		return respondError(c, err)
	}
	page, pageSize := pageParams(c)
	cases, total, err := services.ListCases(db.DB, scope, caseFilters(c), page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, Paginated{Items: cases, Total: total, Page: page, PageSize: pageSize})
}

// CaseDetailResponse is the JSON view of one case
type CaseDetailResponse struct {
	Case      *models.Case             `json:"case"`
	Checklist []casefile.ChecklistItem `json:"checklist"`
	Documents []models.CaseDocument    `json:"documents"`
	Next      []casefile.Status        `json:"next_statuses"`
}

// GetCaseHandler returns one case with its checklist and visible documents
// GET /api/cases/:id
func GetCaseHandler(c echo.Context) error {
	caseRecord, err := loadCase(c, permissions.PageCases)
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
	return c.JSON(http.StatusOK, CaseDetailResponse{
		Case:      caseRecord,
		Checklist: checklist,
		Documents: docs,
		Next:      nextStages(caseRecord.Status),
	})
}

// CreateCaseRequest is the intake form
type CreateCaseRequest struct {
	DealerID       string `json:"dealer_id" form:"dealer_id"`
	Category       string `json:"category" form:"category"`
	CustomerName   string `json:"customer_name" form:"customer_name"`
	CustomerPhone  string `json:"customer_phone" form:"customer_phone"`
	CustomerEmail  string `json:"customer_email" form:"customer_email"`
	PlateNumber    string `json:"plate_number" form:"plate_number"`
	Notes          string `json:"notes" form:"notes"`
	CustomerUserID string `json:"customer_user_id" form:"customer_user_id"`
}

// CreateCaseHandler registers a new case
// POST /api/cases
func CreateCaseHandler(c echo.Context) error {
	var req CreateCaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}
	user := middleware.GetCurrentUser(c)

	caseRecord, err := services.CreateCase(db.DB, user, services.CreateCaseInput{
		DealerID:       req.DealerID,
		Category:       casefile.Category(req.Category),
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		PlateNumber:    req.PlateNumber,
		Notes:          req.Notes,
		CustomerUserID: req.CustomerUserID,
	})
	if err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate,
		"Case", caseRecord.ID, caseRecord.CaseNumber, "Dosya oluşturuldu", nil, caseRecord)

	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/cases/"+caseRecord.ID)
		return c.NoContent(http.StatusCreated)
	}
	return c.JSON(http.StatusCreated, caseRecord)
}

// UpdateCaseRequest holds editable fields; omitted fields stay unchanged
type UpdateCaseRequest struct {
	Category      *string `json:"category"`
	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`
	CustomerEmail *string `json:"customer_email"`
	PlateNumber   *string `json:"plate_number"`
	Notes         *string `json:"notes"`
}

// UpdateCaseHandler edits customer data of a case
// PUT /api/cases/:id
func UpdateCaseHandler(c echo.Context) error {
	caseRecord, err := loadCase(c, permissions.PageCases)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateCaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}

	in := services.UpdateCaseInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		PlateNumber:   req.PlateNumber,
		Notes:         req.Notes,
	}
	if req.Category != nil {
		category := casefile.Category(*req.Category)
		in.Category = &category
	}

	old := *caseRecord
	updates, err := services.UpdateCase(db.DB, caseRecord, in)
	if err != nil {
		return respondError(c, err)
	}
	if len(updates) > 0 {
		services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate,
			"Case", caseRecord.ID, caseRecord.CaseNumber, "Dosya güncellendi", old, updates)
	}
	return c.JSON(http.StatusOK, caseRecord)
}

// changeStatus applies to, audits it and notifies dealer and customer
func changeStatus(c echo.Context, caseRecord *models.Case, to casefile.Status) error {
	user := middleware.GetCurrentUser(c)
	from, err := services.ChangeCaseStatus(db.DB, caseRecord, to, user)
	if err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionStatusChange,
		"Case", caseRecord.ID, caseRecord.CaseNumber, from.Label()+" → "+to.Label(),
		map[string]string{"status": string(from)}, map[string]string{"status": string(to)})

	if notificationService != nil {
		notificationService.NotifyCaseStatusChange(caseRecord, from, user.ID)
	}

	if isHTMX(c) {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, caseRecord)
}

// ChangeCaseStatusHandler moves a case to a later manual stage
// POST /api/cases/:id/status
func ChangeCaseStatusHandler(c echo.Context) error {
	caseRecord, err := loadCase(c, permissions.PageCases)
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return badRequest(c, "Durum seçilmelidir")
	}
	return changeStatus(c, caseRecord, casefile.Status(req.Status))
}

// CloseCaseHandler closes a case; closed cases are read-only
// POST /api/cases/:id/close
func CloseCaseHandler(c echo.Context) error {
	caseRecord, err := loadCase(c, permissions.PageCases)
	if err != nil {
		return respondError(c, err)
	}
	return changeStatus(c, caseRecord, casefile.StatusClosed)
}
