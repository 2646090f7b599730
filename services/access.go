package services

import (
	"errors"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"

	"gorm.io/gorm"
)

// ErrForbidden is returned when the caller's role grants no access to a record set
var ErrForbidden = errors.New("forbidden")

// CaseScope restricts case queries to what a caller may see.
// All wins over DealerID, DealerID over CustomerUserID.
type CaseScope struct {
	All            bool
	DealerID       string
	CustomerUserID string
}

// ScopeFor derives the case scope of user from the registry grants on page
func ScopeFor(reg *permissions.Registry, user *models.User, page string) (CaseScope, error) {
	if user == nil {
		return CaseScope{}, ErrForbidden
	}
	caps := reg.CapabilitiesFor(user.Role, page)
	switch {
	case caps.ViewAll:
		return CaseScope{All: true}, nil
	case !caps.ViewOwn:
		return CaseScope{}, ErrForbidden
	case user.Role == permissions.RoleCustomer:
		return CaseScope{CustomerUserID: user.ID}, nil
	case user.HasDealer():
		return CaseScope{DealerID: *user.DealerID}, nil
	}
	return CaseScope{}, ErrForbidden
}

// Cases applies the scope to a query over the cases table
func (s CaseScope) Cases(q *gorm.DB) *gorm.DB {
	switch {
	case s.All:
		return q
	case s.DealerID != "":
		return q.Where("cases.dealer_id = ?", s.DealerID)
	case s.CustomerUserID != "":
		return q.Where("cases.customer_user_id = ?", s.CustomerUserID)
	}
	return q.Where("1 = 0")
}

// Allows reports whether c is inside the scope
func (s CaseScope) Allows(c *models.Case) bool {
	switch {
	case s.All:
		return true
	case s.DealerID != "":
		return c.DealerID == s.DealerID
	case s.CustomerUserID != "":
		return c.CustomerUserID != nil && *c.CustomerUserID == s.CustomerUserID
	}
	return false
}

// AudienceFor maps a user to a result document audience. Custom roles with
// system-wide document access see everything; dealer-bound custom roles see
// what a dealer sees.
func AudienceFor(reg *permissions.Registry, user *models.User) (casefile.Audience, error) {
	if user == nil {
		return "", ErrForbidden
	}
	if aud, ok := casefile.AudienceForRole(user.Role); ok {
		return aud, nil
	}
	if reg.CapabilitiesFor(user.Role, permissions.PageDocuments).ViewAll {
		return casefile.AudienceAdmin, nil
	}
	if user.HasDealer() {
		return casefile.AudienceDealer, nil
	}
	return "", ErrForbidden
}
