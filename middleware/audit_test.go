package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditContext(t *testing.T) {
	e := echo.New()

	t.Run("actor and request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "test-agent")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		dealerID := "dealer-456"
		c.Set(ContextKeyUser, &models.User{ID: "user-123", Name: "Ali Veli", Role: "bayi", DealerID: &dealerID})
		c.Set(ContextKeyDealer, &models.Dealer{ID: dealerID, Name: "Yıldız Otomotiv"})

		var actor services.AuditContext
		handler := echomiddleware.RequestID()(AuditContext()(func(c echo.Context) error {
			actor = GetAuditContext(c)
			return c.NoContent(http.StatusOK)
		}))
		require.NoError(t, handler(c))

		assert.Equal(t, "user-123", actor.UserID)
		assert.Equal(t, "Ali Veli", actor.UserName)
		assert.Equal(t, "bayi", actor.UserRole)
		assert.Equal(t, "dealer-456", actor.DealerID)
		assert.Equal(t, "Yıldız Otomotiv", actor.DealerName)
		assert.Equal(t, "test-agent", actor.UserAgent)
		assert.NotEmpty(t, actor.RequestID)
		assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), actor.RequestID)
	})

	t.Run("anonymous", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		handler := AuditContext()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))

		actor := GetAuditContext(c)
		assert.Empty(t, actor.UserID)
		assert.Empty(t, actor.DealerID)
		assert.NotEmpty(t, actor.IPAddress)
	})
}

func TestGetAuditContextWithoutMiddleware(t *testing.T) {
	e := echo.New()

	t.Run("stored value wins", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		expected := services.AuditContext{UserID: "123"}
		c.Set(ContextKeyAuditContext, expected)
		assert.Equal(t, expected, GetAuditContext(c))
	})

	t.Run("falls back to the client", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("User-Agent", "curl")
		req.Header.Set(echo.HeaderXRequestID, "req-1")
		actor := GetAuditContext(e.NewContext(req, httptest.NewRecorder()))
		assert.Equal(t, "curl", actor.UserAgent)
		assert.Equal(t, "req-1", actor.RequestID)
		assert.NotEmpty(t, actor.IPAddress)
	})
}
