package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type nonceKey struct{}

// ScriptSources lists the external script origins allowed besides 'self'.
// htmx is served from unpkg.
var ScriptSources = []string{"https://unpkg.com"}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func contentSecurityPolicy(nonce string) string {
	directives := []string{
		"default-src 'self'",
		"script-src 'self' 'nonce-" + nonce + "' " + strings.Join(ScriptSources, " "),
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: blob:",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"form-action 'self'",
		"base-uri 'none'",
	}
	return strings.Join(directives, "; ")
}

// SecureHeaders sets the per-request CSP nonce and the response security
// headers. Pages read the nonce through GetNonce. HSTS is only sent when
// secure is true.
func SecureHeaders(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			nonce, err := newNonce()
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "nonce unavailable").SetInternal(err)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), nonceKey{}, nonce)))

			h := c.Response().Header()
			h.Set("Content-Security-Policy", contentSecurityPolicy(nonce))
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "same-origin")
			h.Set("X-Frame-Options", "DENY")
			if secure {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			return next(c)
		}
	}
}

// GetNonce returns the CSP nonce of the request, or "" outside SecureHeaders
func GetNonce(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}
