package handlers

import (
	"net/http"

	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/templates/components"

	"github.com/labstack/echo/v4"
)

// notificationOwner returns the dealer and user the notifications belong to.
// Users without a dealer have no notifications.
func notificationOwner(c echo.Context) (dealerID, userID string, ok bool) {
	user := middleware.GetCurrentUser(c)
	if notificationService == nil || user == nil || !user.HasDealer() {
		return "", "", false
	}
	return *user.DealerID, user.ID, true
}

// GetNotificationsHandler returns the unread notifications, as a partial for
// HTMX and JSON otherwise
// GET /notifications
func GetNotificationsHandler(c echo.Context) error {
	notifications := []models.Notification{}
	if dealerID, userID, ok := notificationOwner(c); ok {
		list, err := notificationService.GetUnreadNotifications(dealerID, userID)
		if err != nil {
			return respondError(c, err)
		}
		notifications = list
	}
	if isHTMX(c) {
		return render(c, http.StatusOK, components.NotificationList(notifications))
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkNotificationReadHandler marks one notification read
// POST /notifications/:id/read
func MarkNotificationReadHandler(c echo.Context) error {
	dealerID, userID, ok := notificationOwner(c)
	if ok {
		if err := notificationService.MarkAsRead(c.Param("id"), userID, dealerID); err != nil {
			return respondError(c, err)
		}
	}
	// Empty body removes the item (hx-swap="outerHTML")
	return c.String(http.StatusOK, "")
}

// MarkAllNotificationsReadHandler marks every visible notification read
// POST /notifications/read-all
func MarkAllNotificationsReadHandler(c echo.Context) error {
	dealerID, userID, ok := notificationOwner(c)
	if ok {
		if err := notificationService.MarkAllAsRead(dealerID, userID); err != nil {
			return respondError(c, err)
		}
	}
	if isHTMX(c) {
		return render(c, http.StatusOK, components.NotificationList(nil))
	}
	return c.NoContent(http.StatusNoContent)
}

// GetNotificationCountHandler returns the unread count for the bell badge
// GET /api/notifications/count
func GetNotificationCountHandler(c echo.Context) error {
	var count int64
	if dealerID, userID, ok := notificationOwner(c); ok {
		n, err := notificationService.GetNotificationCount(dealerID, userID)
		if err != nil {
			return respondError(c, err)
		}
		count = n
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": count})
}
