package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardHandler(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	dealerUser := createUser(t, database, permissions.RoleDealer, dealer)
	kase := createCase(t, database, dealerUser, dealer, casefile.CategoryValueLoss)

	_, c, rec := setupEcho(http.MethodGet, "/dashboard", nil)
	asUser(c, dealerUser)

	require.NoError(t, DashboardHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Gösterge Paneli")
	assert.Contains(t, body, kase.CaseNumber)
}

func TestDashboardStatsHandler(t *testing.T) {
	database := setupTestDB(t)
	d1 := createDealer(t, database, "Yıldız Oto")
	d2 := createDealer(t, database, "Kaya Otomotiv")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	dealerUser := createUser(t, database, permissions.RoleDealer, d1)

	createCase(t, database, admin, d1, casefile.CategoryValueLoss)
	complete := createCase(t, database, admin, d1, casefile.CategoryVehicleDeprived)
	completeDocuments(t, database, complete)
	createCase(t, database, admin, d2, casefile.CategoryValueLoss)

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var resp struct {
		Total    int64         `json:"total"`
		Statuses []statusCount `json:"statuses"`
	}

	_, c, rec := setupEcho(http.MethodGet, "/api/dashboard", nil)
	asUser(c, dealerUser)
	require.NoError(t, DashboardStatsHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.EqualValues(t, 2, resp.Total)
	require.Len(t, resp.Statuses, len(casefile.Statuses())+1)
	assert.Equal(t, string(casefile.StatusDocumentsPending), resp.Statuses[0].Status)
	assert.EqualValues(t, 1, resp.Statuses[0].Count)
	assert.EqualValues(t, 1, resp.Statuses[1].Count)
}
