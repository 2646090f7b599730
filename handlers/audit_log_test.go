package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuditLogsHandler(t *testing.T) {
	database := setupTestDB(t)
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	dealer := createDealer(t, database, "Yıldız Oto")
	for _, entry := range []models.AuditLog{
		{UserName: "Ali", UserRole: "admin", ResourceType: "case", ResourceID: "c1", Action: models.AuditActionCreate, DealerID: &dealer.ID, RequestID: "req-1"},
		{UserName: "Ali", UserRole: "admin", ResourceType: "case", ResourceID: "c2", Action: models.AuditActionExport},
	} {
		require.NoError(t, database.Create(&entry).Error)
	}

	list := func(query string) (*Paginated, int) {
		_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs"+query, nil)
		asUser(c, admin)
		require.NoError(t, GetAuditLogsHandler(c))
		if rec.Code != http.StatusOK {
			return nil, rec.Code
		}
		var page Paginated
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		return &page, rec.Code
	}

	t.Run("all entries", func(t *testing.T) {
		page, _ := list("")
		require.NotNil(t, page)
		assert.EqualValues(t, 2, page.Total)
	})

	t.Run("dealer and request filters", func(t *testing.T) {
		page, _ := list("?dealer_id=" + dealer.ID)
		require.NotNil(t, page)
		assert.EqualValues(t, 1, page.Total)

		page, _ = list("?request_id=req-1")
		require.NotNil(t, page)
		assert.EqualValues(t, 1, page.Total)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, code := list("?date_from=19-10-2026")
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestGetResourceHistoryHandler(t *testing.T) {
	database := setupTestDB(t)
	staff := createUser(t, database, permissions.RoleStaff, nil)

	_, c, rec := setupEcho(http.MethodGet, "/api/audit-logs/case/c1", nil)
	c.SetParamNames("type", "id")
	c.SetParamValues("case", "c1")
	asUser(c, staff)

	require.NoError(t, GetResourceHistoryHandler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetSecurityAlertsHandler(t *testing.T) {
	setupTestDB(t)
	prev := services.Monitor
	t.Cleanup(func() { services.Monitor = prev })

	services.Monitor = services.NewSecurityMonitor(nil)
	for i := 0; i < services.FailedLoginThreshold; i++ {
		services.Monitor.TrackFailedLogin("10.0.0.9")
	}

	_, c, rec := setupEcho(http.MethodGet, "/api/security/alerts", nil)
	require.NoError(t, GetSecurityAlertsHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var alerts []services.SecurityAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "10.0.0.9", alerts[0].IP)
}
