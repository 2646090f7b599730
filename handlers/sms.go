package handlers

import (
	"net/http"
	"strings"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/permissions"
	"claim_flow_app_go/templates/components"

	"github.com/labstack/echo/v4"
)

// SendSMSRequest is a manual message to a case customer. Phone defaults to
// the customer phone on the case.
type SendSMSRequest struct {
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
}

// SendCaseSMSHandler sends a message to the customer of a case
// POST /api/cases/:id/sms
func SendCaseSMSHandler(c echo.Context) error {
	if smsService == nil {
		return respondError(c, services.ErrSMSNotConfigured)
	}
	kase, err := loadCase(c, permissions.PageSMS)
	if err != nil {
		return respondError(c, err)
	}
	var req SendSMSRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = kase.CustomerPhone
	}

	user := middleware.GetCurrentUser(c)
	msg, err := smsService.Send(c.Request().Context(), services.SMSRequest{
		DealerID: kase.DealerID,
		CaseID:   kase.ID,
		SentByID: user.ID,
		Phone:    phone,
		Message:  req.Message,
	})
	if msg == nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionSMS,
		"Case", kase.ID, kase.CaseNumber, "SMS gönderildi: "+msg.Phone, nil, msg)

	if err != nil {
		// recorded as failed
		return respondError(c, err)
	}
	if isHTMX(c) {
		return render(c, http.StatusOK, components.Notice("SMS gönderildi"))
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetSMSHandler lists sent messages, optionally for one case
// GET /api/sms?case_id=&page=&page_size=
func GetSMSHandler(c echo.Context) error {
	scope, err := scopeFor(c, permissions.PageSMS)
	if err != nil {
		return respondError(c, err)
	}
	page, pageSize := pageParams(c)
	messages, total, err := services.ListSMS(db.DB, scope, c.QueryParam("case_id"), page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, Paginated{Items: messages, Total: total, Page: page, PageSize: pageSize})
}
