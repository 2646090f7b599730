package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/permissions"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleHandlers(t *testing.T) {
	database := setupTestDB(t)
	admin := createUser(t, database, permissions.RoleAdmin, nil)

	call := func(h echo.HandlerFunc, method, id, body string) (int, string) {
		_, c, rec := setupEcho(method, "/api/roles", strings.NewReader(body))
		if id != "" {
			c.SetParamNames("id")
			c.SetParamValues(id)
		}
		asUser(c, admin)
		require.NoError(t, h(c))
		return rec.Code, rec.Body.String()
	}

	t.Run("list has system roles first", func(t *testing.T) {
		code, body := call(GetRolesHandler, http.MethodGet, "", "")
		require.Equal(t, http.StatusOK, code)
		var resp RolesResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		require.GreaterOrEqual(t, len(resp.Roles), 4)
		assert.Equal(t, permissions.RoleAdmin, resp.Roles[0].ID)
		assert.Len(t, resp.Pages, len(permissions.Pages()))
	})

	t.Run("create then grant takes effect on the next snapshot", func(t *testing.T) {
		code, body := call(CreateRoleHandler, http.MethodPost, "",
			`{"id":"muhasebe","label":"Muhasebe","permissions":{"reports":{"view":true,"export":true}}}`)
		require.Equal(t, http.StatusCreated, code, body)

		before := roleService.Registry()
		assert.False(t, before.Can("muhasebe", permissions.PageCases, permissions.CapView))

		code, body = call(SetRolePermissionsHandler, http.MethodPut, "muhasebe",
			`{"permissions":{"cases":{"view":true,"view_all":true}}}`)
		require.Equal(t, http.StatusOK, code, body)

		assert.False(t, before.Can("muhasebe", permissions.PageCases, permissions.CapView), "old snapshot is immutable")
		assert.True(t, roleService.Registry().Can("muhasebe", permissions.PageCases, permissions.CapViewAll))
		assert.False(t, roleService.Registry().Can("muhasebe", permissions.PageReports, permissions.CapView))
	})

	t.Run("duplicate and reserved ids", func(t *testing.T) {
		code, _ := call(CreateRoleHandler, http.MethodPost, "", `{"id":"muhasebe","label":"Tekrar"}`)
		assert.Equal(t, http.StatusConflict, code)
		code, _ = call(CreateRoleHandler, http.MethodPost, "", `{"id":"bayi","label":"Bayi 2"}`)
		assert.Equal(t, http.StatusConflict, code)
		code, _ = call(CreateRoleHandler, http.MethodPost, "", `{"id":"X Y","label":"Hatalı"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("admin grants are read only", func(t *testing.T) {
		code, _ := call(SetRolePermissionsHandler, http.MethodPut, permissions.RoleAdmin, `{"permissions":{}}`)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("rename", func(t *testing.T) {
		code, body := call(RenameRoleHandler, http.MethodPut, "muhasebe", `{"label":"Finans"}`)
		require.Equal(t, http.StatusOK, code, body)
		role, ok := roleService.Registry().Role("muhasebe")
		require.True(t, ok)
		assert.Equal(t, "Finans", role.Label)

		code, _ = call(RenameRoleHandler, http.MethodPut, permissions.RoleDealer, `{"label":"Satıcı"}`)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("role in use cannot be deleted", func(t *testing.T) {
		holder := createUser(t, database, "muhasebe", nil)
		code, _ := call(DeleteRoleHandler, http.MethodDelete, "muhasebe", "")
		assert.Equal(t, http.StatusConflict, code)

		require.NoError(t, database.Delete(&models.User{}, "id = ?", holder.ID).Error)
		require.NoError(t, database.Unscoped().Delete(&models.User{}, "id = ?", holder.ID).Error)
		code, _ = call(DeleteRoleHandler, http.MethodDelete, "muhasebe", "")
		assert.Equal(t, http.StatusNoContent, code)
		_, ok := roleService.Registry().Role("muhasebe")
		assert.False(t, ok)
	})

	t.Run("system roles cannot be deleted", func(t *testing.T) {
		code, _ := call(DeleteRoleHandler, http.MethodDelete, permissions.RoleCustomer, "")
		assert.Equal(t, http.StatusForbidden, code)
	})
}
