package middleware

import (
	"claim_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

const ContextKeyAuditContext = "audit_context"

// AuditContext captures who is acting for the audit trail. It runs after
// RequireAuth; the request id comes from echo's RequestID middleware.
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := services.AuditContextFor(GetCurrentUser(c), c.RealIP(), c.Request().UserAgent())
			if dealer := GetCurrentDealer(c); dealer != nil && actor.DealerName == "" {
				actor.DealerName = dealer.Name
			}
			actor.RequestID = requestID(c)
			c.Set(ContextKeyAuditContext, actor)
			return next(c)
		}
	}
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// GetAuditContext returns the actor of the request. Outside AuditContext it
// still carries the client address so login events can be attributed.
func GetAuditContext(c echo.Context) services.AuditContext {
	if actor, ok := c.Get(ContextKeyAuditContext).(services.AuditContext); ok {
		return actor
	}
	actor := services.AuditContext{RequestID: requestID(c)}
	if c.Request() != nil {
		actor.IPAddress = c.RealIP()
		actor.UserAgent = c.Request().UserAgent()
	}
	return actor
}
