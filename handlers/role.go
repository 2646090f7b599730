package handlers

import (
	"net/http"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/permissions"

	"github.com/labstack/echo/v4"
)

// RoleRequest creates or renames a role
type RoleRequest struct {
	ID          string                              `json:"id"`
	Label       string                              `json:"label"`
	Permissions map[string]permissions.Capabilities `json:"permissions"`
}

// PermissionsRequest replaces the grants of a role
type PermissionsRequest struct {
	Permissions map[string]permissions.Capabilities `json:"permissions"`
}

// RolesResponse is the role management view model
type RolesResponse struct {
	Roles []permissions.RoleDefinition `json:"roles"`
	Pages []permissions.Page           `json:"pages"`
}

// GetRolesHandler lists every role with its grants and the page catalog
// GET /api/roles
func GetRolesHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, RolesResponse{
		Roles: roleService.Registry().Roles(),
		Pages: permissions.Pages(),
	})
}

// CreateRoleHandler adds a custom role
// POST /api/roles
func CreateRoleHandler(c echo.Context) error {
	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}
	role, err := roleService.CreateRole(req.ID, req.Label, req.Permissions)
	if err != nil {
		return respondError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate, "Role", role.ID, role.Label, "Rol oluşturuldu", nil, role)
	return c.JSON(http.StatusCreated, role)
}

// RenameRoleHandler changes the label of a custom role
// PUT /api/roles/:id
func RenameRoleHandler(c echo.Context) error {
	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}
	id := c.Param("id")
	if err := roleService.RenameRole(id, req.Label); err != nil {
		return respondError(c, err)
	}
	role, _ := roleService.Registry().Role(id)
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Role", role.ID, role.Label, "Rol adı değiştirildi", nil, role)
	return c.JSON(http.StatusOK, role)
}

// DeleteRoleHandler removes a custom role no user holds
// DELETE /api/roles/:id
func DeleteRoleHandler(c echo.Context) error {
	id := c.Param("id")
	old, _ := roleService.Registry().Role(id)
	if err := roleService.DeleteRole(id); err != nil {
		return respondError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDelete, "Role", id, old.Label, "Rol silindi", old, nil)
	return c.NoContent(http.StatusNoContent)
}

// SetRolePermissionsHandler replaces the page grants of a role. The new
// table applies from the next request on.
// PUT /api/roles/:id/permissions
func SetRolePermissionsHandler(c echo.Context) error {
	var req PermissionsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}
	id := c.Param("id")
	old, _ := roleService.Registry().Role(id)
	if err := roleService.SetPermissions(id, req.Permissions); err != nil {
		return respondError(c, err)
	}
	role, _ := roleService.Registry().Role(id)
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Role", role.ID, role.Label, "Rol yetkileri güncellendi", old.Permissions, role.Permissions)
	return c.JSON(http.StatusOK, role)
}
