package handlers

import (
	"errors"
	"net/http"
	"strings"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/permissions"
	"claim_flow_app_go/templates/components"
	"claim_flow_app_go/templates/pages"

	"github.com/labstack/echo/v4"
)

// loginFailed answers a rejected login the way the form expects
func loginFailed(c echo.Context, message string) error {
	if isHTMX(c) {
		return render(c, http.StatusOK, components.Alert(message))
	}
	if isAPIRequest(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": message})
	}
	return render(c, http.StatusUnauthorized, pages.Login("Giriş | Hasar Portal", middleware.GetCSRFToken(c), message))
}

// isAPIRequest reports whether the client wants JSON back
func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/") ||
		strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// LoginHandler renders the login page
func LoginHandler(c echo.Context) error {
	return render(c, http.StatusOK, pages.Login("Giriş | Hasar Portal", middleware.GetCSRFToken(c), ""))
}

// LoginPostHandler handles the login form submission
func LoginPostHandler(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	if email == "" || password == "" {
		return loginFailed(c, "E-posta ve parola zorunludur")
	}

	user, err := services.Authenticate(db.DB, email, password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			services.LogSecurityEvent(db.DB, "LOGIN_FAILED", "", "Failed login for "+email+" from "+c.RealIP())
			if services.Monitor != nil {
				services.Monitor.TrackFailedLogin(c.RealIP())
			}
			return loginFailed(c, "E-posta veya parola hatalı")
		case errors.Is(err, services.ErrUserInactive):
			return loginFailed(c, "Hesabınız pasif durumda")
		}
		return respondError(c, err)
	}

	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()

	session, err := services.CreateSession(db.DB, user.ID, user.DealerIDValue(), ipAddress, userAgent)
	if err != nil {
		return respondError(c, err)
	}

	middleware.SetSessionCookie(c, session.Token, services.DefaultSessionDuration)

	auditCtx := services.AuditContextFor(user, ipAddress, userAgent)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogin, "User", user.ID, user.Name, "Kullanıcı giriş yaptı", nil, nil)

	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/dashboard")
		return c.NoContent(http.StatusOK)
	}
	if isAPIRequest(c) {
		return c.JSON(http.StatusOK, user)
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// LogoutHandler handles user logout
func LogoutHandler(c echo.Context) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionLogout, "User", user.ID, user.Name, "Kullanıcı çıkış yaptı", nil, nil)
	}

	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := services.DeleteSession(db.DB, cookie.Value); err != nil {
			c.Logger().Warnf("Failed to delete session: %v", err)
		}
	}

	middleware.ClearSessionCookie(c)

	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// MeResponse is the payload of /api/me
type MeResponse struct {
	User   *models.User             `json:"user"`
	Dealer *models.Dealer           `json:"dealer,omitempty"`
	Pages  []permissions.PageAccess `json:"pages"`
}

// GetCurrentUserHandler returns the current user, dealer and navigable pages
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, MeResponse{
		User:   user,
		Dealer: middleware.GetCurrentDealer(c),
		Pages:  middleware.GetRegistry(c).PagesFor(user.Role),
	})
}
