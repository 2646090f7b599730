package handlers

import (
	"net/http"
	"time"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/permissions"

	"github.com/labstack/echo/v4"
)

// auditDealerScope limits non-system users to their dealer's entries
func auditDealerScope(c echo.Context) (string, error) {
	scope, err := scopeFor(c, permissions.PageAuditLogs)
	if err != nil {
		return "", err
	}
	if scope.All {
		return c.QueryParam("dealer_id"), nil
	}
	if scope.DealerID == "" {
		return "", services.ErrForbidden
	}
	return scope.DealerID, nil
}

// GetAuditLogsHandler returns filtered and paginated audit logs
// GET /api/audit-logs?user_id=&resource_type=&resource_id=&action=&date_from=&date_to=&q=
func GetAuditLogsHandler(c echo.Context) error {
	dealerID, err := auditDealerScope(c)
	if err != nil {
		return respondError(c, err)
	}
	page, pageSize := pageParams(c)

	filters := services.AuditLogFilters{
		UserID:       c.QueryParam("user_id"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		Action:       c.QueryParam("action"),
		RequestID:    c.QueryParam("request_id"),
		SearchQuery:  c.QueryParam("q"),
	}
	loc := time.UTC
	if appConfig != nil {
		loc = services.LoadLocation(appConfig.Timezone)
	}
	if dateFrom := c.QueryParam("date_from"); dateFrom != "" {
		t, err := services.ParseDate(dateFrom, loc)
		if err != nil {
			return badRequest(c, "Geçersiz başlangıç tarihi")
		}
		filters.DateFrom = t
	}
	if dateTo := c.QueryParam("date_to"); dateTo != "" {
		t, err := services.ParseDate(dateTo, loc)
		if err != nil {
			return badRequest(c, "Geçersiz bitiş tarihi")
		}
		filters.DateTo = services.EndOfDay(t)
	}

	logs, total, err := services.GetAuditLogs(db.DB, dealerID, filters, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, Paginated{Items: logs, Total: total, Page: page, PageSize: pageSize})
}

// GetResourceHistoryHandler returns the audit trail of one resource. Only
// users with system-wide audit access may read it.
// GET /api/audit-logs/:type/:id
func GetResourceHistoryHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if !middleware.GetRegistry(c).Can(user.Role, permissions.PageAuditLogs, permissions.CapViewAll) {
		return respondError(c, services.ErrForbidden)
	}
	logs, err := services.GetResourceAuditHistory(db.DB, c.Param("type"), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// GetSecurityAlertsHandler lists the brute-force alerts raised since start.
// GET /api/security/alerts
func GetSecurityAlertsHandler(c echo.Context) error {
	alerts := []services.SecurityAlert{}
	if services.Monitor != nil {
		alerts = services.Monitor.GetRecentAlerts()
	}
	return c.JSON(http.StatusOK, alerts)
}
