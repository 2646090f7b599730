package handlers

import (
	"net/http"

	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// DealerRequest is the dealer form
type DealerRequest struct {
	Name      string `json:"name" form:"name"`
	TaxNumber string `json:"tax_number" form:"tax_number"`
	Phone     string `json:"phone" form:"phone"`
	Email     string `json:"email" form:"email"`
	City      string `json:"city" form:"city"`
	Address   string `json:"address" form:"address"`
}

func (r DealerRequest) input() services.DealerInput {
	return services.DealerInput{
		Name:      r.Name,
		TaxNumber: r.TaxNumber,
		Phone:     r.Phone,
		Email:     r.Email,
		City:      r.City,
		Address:   r.Address,
	}
}

// GetDealersHandler lists dealers
// GET /api/dealers?inactive=1&q=
func GetDealersHandler(c echo.Context) error {
	dealers, err := services.ListDealers(db.DB, c.QueryParam("inactive") == "1", c.QueryParam("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dealers)
}

// GetDealerHandler returns one dealer
// GET /api/dealers/:id
func GetDealerHandler(c echo.Context) error {
	dealer, err := services.GetDealer(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dealer)
}

// CreateDealerHandler registers a dealer
// POST /api/dealers
func CreateDealerHandler(c echo.Context) error {
	var req DealerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}
	dealer, err := services.CreateDealer(db.DB, req.input())
	if err != nil {
		return respondError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate,
		"Dealer", dealer.ID, dealer.Name, "Bayi oluşturuldu", nil, dealer)
	return c.JSON(http.StatusCreated, dealer)
}

// UpdateDealerHandler edits a dealer
// PUT /api/dealers/:id
func UpdateDealerHandler(c echo.Context) error {
	dealer, err := services.GetDealer(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	var req DealerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Geçersiz istek")
	}
	old := *dealer
	if err := services.UpdateDealer(db.DB, dealer, req.input()); err != nil {
		return respondError(c, err)
	}
	if dealer, err = services.GetDealer(db.DB, dealer.ID); err != nil {
		return respondError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate,
		"Dealer", dealer.ID, dealer.Name, "Bayi güncellendi", old, dealer)
	return c.JSON(http.StatusOK, dealer)
}

// SetDealerActiveHandler activates or deactivates a dealer. Deactivation
// keeps cases and history but ends every session of its users.
// POST /api/dealers/:id/activate, POST /api/dealers/:id/deactivate
func SetDealerActiveHandler(active bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		dealer, err := services.GetDealer(db.DB, c.Param("id"))
		if err != nil {
			return respondError(c, err)
		}
		if err := services.SetDealerActive(db.DB, dealer, active); err != nil {
			return respondError(c, err)
		}
		dealer.IsActive = active
		description := "Bayi aktifleştirildi"
		if !active {
			description = "Bayi pasifleştirildi"
		}
		services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate,
			"Dealer", dealer.ID, dealer.Name, description, nil, map[string]bool{"is_active": active})
		return c.JSON(http.StatusOK, dealer)
	}
}
