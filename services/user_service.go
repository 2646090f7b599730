package services

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/permissions"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet the policy")
	ErrUnknownRole        = errors.New("unknown role")
	ErrRoleNotAssignable  = errors.New("role cannot be assigned by this user")
	ErrDealerMismatch     = errors.New("dealer users and customers must belong to a dealer")
	ErrCannotDeactivateMe = errors.New("you cannot deactivate your own account")
	ErrNameRequired       = errors.New("name is required")
)

// UserInput carries the fields of a user form
type UserInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
	DealerID string
}

// dealerBoundRoles must carry a dealer
func dealerBoundRole(role string) bool {
	return role == permissions.RoleDealer || role == permissions.RoleCustomer
}

// checkAssignable applies the role assignment rules of actor. Staff with
// system-wide user access may assign any registered role; dealer users may
// only create customers inside their own dealer.
func checkAssignable(reg *permissions.Registry, actor *models.User, role, dealerID string) (string, error) {
	if _, ok := reg.Role(role); !ok {
		return "", ErrUnknownRole
	}

	caps := reg.CapabilitiesFor(actor.Role, permissions.PageUsers)
	if !caps.ViewAll {
		if role != permissions.RoleCustomer || !actor.HasDealer() {
			return "", ErrRoleNotAssignable
		}
		dealerID = *actor.DealerID
	}

	if dealerBoundRole(role) && dealerID == "" {
		return "", ErrDealerMismatch
	}
	if role == permissions.RoleAdmin || role == permissions.RoleStaff {
		dealerID = ""
	}
	return dealerID, nil
}

// ListUsers returns users; a non-empty dealerID limits the list to that dealer
func ListUsers(db *gorm.DB, dealerID, role, search string) ([]models.User, error) {
	query := db.Model(&models.User{}).Preload("Dealer")
	if dealerID != "" {
		query = query.Where("dealer_id = ?", dealerID)
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}
	var users []models.User
	if err := query.Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser loads a user; a non-empty dealerID requires the user to belong to it
func GetUser(db *gorm.DB, id, dealerID string) (*models.User, error) {
	query := db.Preload("Dealer").Where("id = ?", id)
	if dealerID != "" {
		query = query.Where("dealer_id = ?", dealerID)
	}
	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// CreateUser registers a user on behalf of actor
func CreateUser(db *gorm.DB, reg *permissions.Registry, actor *models.User, in UserInput) (*models.User, error) {
	name := SanitizeText(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	dealerID, err := checkAssignable(reg, actor, in.Role, in.DealerID)
	if err != nil {
		return nil, err
	}
	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		if phone, err = NormalizePhone(phone); err != nil {
			return nil, err
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: hash,
		Role:     in.Role,
		DealerID: ptrIfNotEmpty(dealerID),
		IsActive: true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if dealerID != "" {
			if _, err := GetDealer(tx, dealerID); err != nil {
				return err
			}
		}
		var count int64
		if err := tx.Unscoped().Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser edits name, phone, role and optionally the password of target
func UpdateUser(db *gorm.DB, reg *permissions.Registry, actor, target *models.User, in UserInput) error {
	name := SanitizeText(in.Name)
	if name == "" {
		return ErrNameRequired
	}
	role := in.Role
	if role == "" {
		role = target.Role
	}
	dealerID := in.DealerID
	if dealerID == "" {
		dealerID = target.DealerIDValue()
	}
	if role != target.Role || dealerID != target.DealerIDValue() {
		var err error
		if dealerID, err = checkAssignable(reg, actor, role, dealerID); err != nil {
			return err
		}
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		var err error
		if phone, err = NormalizePhone(phone); err != nil {
			return err
		}
	}

	updates := map[string]interface{}{
		"name":      name,
		"phone":     phone,
		"role":      role,
		"dealer_id": ptrIfNotEmpty(dealerID),
	}
	if in.Password != "" {
		if err := ValidatePassword(in.Password); err != nil {
			return err
		}
		hash, err := HashPassword(in.Password)
		if err != nil {
			return err
		}
		updates["password"] = hash
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(target).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if in.Password != "" || role != target.Role {
			return DeleteAllUserSessions(tx, target.ID)
		}
		return nil
	})
}

// SetUserActive toggles a user; deactivation ends all sessions
func SetUserActive(db *gorm.DB, actor, target *models.User, active bool) error {
	if !active && actor.ID == target.ID {
		return ErrCannotDeactivateMe
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(target).Update("is_active", active).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		if !active {
			return DeleteAllUserSessions(tx, target.ID)
		}
		return nil
	})
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
