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

// UserRequest is the user form. Password may be empty on update.
type UserRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
	DealerID string `json:"dealer_id" form:"dealer_id"`
}

func (r UserRequest) input() services.UserInput {
	return services.UserInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Password: r.Password,
		Role:     r.Role,
		DealerID: r.DealerID,
	}
}

// userDealerScope returns the dealer the current user is limited to on the
// users page, or "" for system-wide access.
func userDealerScope(c echo.Context) (string, error) {
	user := middleware.GetCurrentUser(c)
	caps := middleware.GetRegistry(c).CapabilitiesFor(user.Role, permissions.PageUsers)
	switch {
	case caps.ViewAll:
		return "", nil
	case caps.ViewOwn && user.HasDealer():
		return *user.DealerID, nil
	}
	return "", services.ErrForbidden
}

// GetUsersHandler lists users visible to the current user
// GET /api/users?role=&q=
func GetUsersHandler(c echo.Context) error {
	dealerID, err := userDealerScope(c)
	if err != nil {
		return respondError(c, err)
	}
	if dealerID == "" {
		dealerID = c.QueryParam("dealer_id")
	}
	users, err := services.ListUsers(db.DB, dealerID, c.QueryParam("role"), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUserHandler returns one user
// GET /api/users/:id
func GetUserHandler(c echo.Context) error {
	dealerID, err := userDealerScope(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := services.GetUser(db.DB, c.Param("id"), dealerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUserHandler registers a user and mails the initial credentials
// POST /api/users
func CreateUserHandler(c echo.Context) error {
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}
	actor := middleware.GetCurrentUser(c)
	user, err := services.CreateUser(db.DB, middleware.GetRegistry(c), actor, req.input())
	if err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate,
		"User", user.ID, user.Name, "Kullanıcı oluşturuldu", nil, user)

	if appConfig != nil {
		email := services.BuildWelcomeEmail(user.Email, user.Name, req.Password, appConfig.AppURL+"/login")
		services.SendEmailAsync(appConfig, email)
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUserHandler edits a user. A password or role change signs the user out.
// PUT /api/users/:id
func UpdateUserHandler(c echo.Context) error {
	dealerID, err := userDealerScope(c)
	if err != nil {
		return respondError(c, err)
	}
	target, err := services.GetUser(db.DB, c.Param("id"), dealerID)
	if err != nil {
		return respondError(c, err)
	}
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}

	old := *target
	if err := services.UpdateUser(db.DB, middleware.GetRegistry(c), middleware.GetCurrentUser(c), target, req.input()); err != nil {
		return respondError(c, err)
	}
	updated, err := services.GetUser(db.DB, target.ID, "")
	if err != nil {
		return respondError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate,
		"User", updated.ID, updated.Name, "Kullanıcı güncellendi", old, updated)
	return c.JSON(http.StatusOK, updated)
}

// SetUserActiveHandler activates or deactivates a user
// POST /api/users/:id/activate, POST /api/users/:id/deactivate
func SetUserActiveHandler(active bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		dealerID, err := userDealerScope(c)
		if err != nil {
			return respondError(c, err)
		}
		target, err := services.GetUser(db.DB, c.Param("id"), dealerID)
		if err != nil {
			return respondError(c, err)
		}
		if err := services.SetUserActive(db.DB, middleware.GetCurrentUser(c), target, active); err != nil {
			return respondError(c, err)
		}
		target.IsActive = active

		description := "Kullanıcı aktifleştirildi"
		if !active {
			description = "Kullanıcı pasifleştirildi"
		}
		services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate,
			"User", target.ID, target.Name, description, nil, map[string]bool{"is_active": active})
		return c.JSON(http.StatusOK, target)
	}
}
