package middleware

import (
	"net/http"
	"strings"
	"time"

	"claim_flow_app_go/config"
	"claim_flow_app_go/db"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/permissions"

	"github.com/labstack/echo/v4"
)

const (
	SessionCookieName = "claim_flow_session"

	ContextKeyUser     = "user"
	ContextKeyDealer   = "dealer"
	ContextKeyRegistry = "permissions"
)

// RegistrySource publishes the current permission registry
type RegistrySource interface {
	Registry() *permissions.Registry
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/") ||
		strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// unauthenticated sends the caller back to the login page in whatever form
// the client understands.
func unauthenticated(c echo.Context) error {
	switch {
	case c.Request().Header.Get("HX-Request") == "true":
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusUnauthorized)
	case isAPIRequest(c):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Oturum açmanız gerekiyor"})
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// RequireAuth resolves the session cookie into the acting user and dealer.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return unauthenticated(c)
			}

			session, err := services.ValidateSession(db.DB, cookie.Value)
			if err != nil {
				ClearSessionCookie(c)
				return unauthenticated(c)
			}

			c.Set(ContextKeyUser, &session.User)
			if session.User.Dealer != nil {
				c.Set(ContextKeyDealer, session.User.Dealer)
			}
			return next(c)
		}
	}
}

// LoadPermissions pins one registry snapshot for the rest of the request so
// a concurrent role edit cannot split a request across two rule sets.
func LoadPermissions(src RegistrySource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyRegistry, src.Registry())
			return next(c)
		}
	}
}

// RequirePermission lets the request through when the user's role holds
// capability on page.
func RequirePermission(page string, capability permissions.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			if !GetRegistry(c).Can(user.Role, page, capability) {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

func GetCurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(ContextKeyUser).(*models.User)
	return user
}

func GetCurrentDealer(c echo.Context) *models.Dealer {
	dealer, _ := c.Get(ContextKeyDealer).(*models.Dealer)
	return dealer
}

// GetRegistry returns the pinned registry, or the built-in grants outside
// LoadPermissions.
func GetRegistry(c echo.Context) *permissions.Registry {
	if reg, ok := c.Get(ContextKeyRegistry).(*permissions.Registry); ok && reg != nil {
		return reg
	}
	return permissions.Default()
}

// Capabilities returns what the current user may do on page
func Capabilities(c echo.Context, page string) permissions.Capabilities {
	user := GetCurrentUser(c)
	if user == nil {
		return permissions.Capabilities{}
	}
	return GetRegistry(c).CapabilitiesFor(user.Role, page)
}

// SetSessionCookie hands the raw session token to the browser.
func SetSessionCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(sessionCookie(c, token, int(ttl.Seconds())))
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(sessionCookie(c, "", -1))
}

func sessionCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	var secure bool
	if cfg, ok := c.Get("config").(*config.Config); ok {
		secure = cfg.IsProduction()
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
