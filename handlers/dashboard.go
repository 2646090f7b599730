package handlers

import (
	"net/http"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"
	"claim_flow_app_go/templates/components"
	"claim_flow_app_go/templates/pages"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// renderPage wraps body in the application shell of the current user
func renderPage(c echo.Context, title, active string, body templ.Component) error {
	user := middleware.GetCurrentUser(c)
	p := components.Page{
		Title:     title + " | Hasar Portal",
		CSRFToken: middleware.GetCSRFToken(c),
		User:      user,
		Active:    active,
	}
	if user != nil {
		p.Nav = middleware.GetRegistry(c).PagesFor(user.Role)
		if notificationService != nil && user.HasDealer() {
			if n, err := notificationService.GetNotificationCount(*user.DealerID, user.ID); err == nil {
				p.Unread = n
			}
		}
	}
	return render(c, http.StatusOK, components.Layout(p, body))
}

// DashboardHandler renders the main dashboard
func DashboardHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	stats := pages.DashboardStats{}

	if scope, err := scopeFor(c, permissions.PageCases); err == nil {
		counts, err := services.CaseStatusCounts(db.DB, scope)
		if err != nil {
			return respondError(c, err)
		}
		stats.StatusCounts = counts
		for _, n := range counts {
			stats.TotalCases += n
		}
		recent, _, err := services.ListCases(db.DB, scope, services.CaseFilters{}, 1, 10)
		if err != nil {
			return respondError(c, err)
		}
		stats.RecentCases = recent
	}

	if notificationService != nil && user.HasDealer() {
		stats.Notifications, _ = notificationService.GetUnreadNotifications(*user.DealerID, user.ID)
		stats.UnreadCount, _ = notificationService.GetNotificationCount(*user.DealerID, user.ID)
	}

	return renderPage(c, "Gösterge Paneli", permissions.PageDashboard, pages.Dashboard(stats))
}

// DashboardStatsHandler returns case counts per status as JSON
// GET /api/dashboard
func DashboardStatsHandler(c echo.Context) error {
	scope, err := scopeFor(c, permissions.PageCases)
	if err != nil {
		return respondError(c, err)
	}
	counts, err := services.CaseStatusCounts(db.DB, scope)
	if err != nil {
		return respondError(c, err)
	}

	type statusCount struct {
		Status string `json:"status"`
		Label  string `json:"label"`
		Count  int64  `json:"count"`
	}
	var total int64
	out := make([]statusCount, 0, len(counts))
	for _, status := range append(casefile.Statuses(), casefile.StatusUnderReview) {
		n := counts[status]
		total += n
		out = append(out, statusCount{Status: string(status), Label: status.Label(), Count: n})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"total": total, "statuses": out})
}
