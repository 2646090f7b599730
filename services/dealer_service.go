package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"claim_flow_app_go/models"

	"gorm.io/gorm"
)

var (
	ErrDealerNameRequired = errors.New("dealer name is required")
	ErrInvalidTaxNumber   = errors.New("tax number must be 10 or 11 digits")
)

var taxNumberPattern = regexp.MustCompile(`^\d{10,11}$`)

// DealerInput carries the editable dealer fields
type DealerInput struct {
	Name      string
	TaxNumber string
	Phone     string
	Email     string
	City      string
	Address   string
}

func (in DealerInput) validate() (DealerInput, error) {
	in.Name = SanitizeText(in.Name)
	in.TaxNumber = strings.TrimSpace(in.TaxNumber)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.City = SanitizeText(in.City)
	in.Address = SanitizeText(in.Address)
	if in.Name == "" {
		return in, ErrDealerNameRequired
	}
	if in.TaxNumber != "" && !taxNumberPattern.MatchString(in.TaxNumber) {
		return in, ErrInvalidTaxNumber
	}
	if in.Phone = strings.TrimSpace(in.Phone); in.Phone != "" {
		normalized, err := NormalizePhone(in.Phone)
		if err != nil {
			return in, err
		}
		in.Phone = normalized
	}
	return in, nil
}

// ListDealers returns dealers ordered by name
func ListDealers(db *gorm.DB, includeInactive bool, search string) ([]models.Dealer, error) {
	query := db.Model(&models.Dealer{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR tax_number LIKE ? OR city LIKE ?", pattern, pattern, pattern)
	}
	var dealers []models.Dealer
	if err := query.Order("name ASC").Find(&dealers).Error; err != nil {
		return nil, fmt.Errorf("failed to list dealers: %w", err)
	}
	return dealers, nil
}

// GetDealer loads one dealer, active or not
func GetDealer(db *gorm.DB, id string) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := db.First(&dealer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealerNotFound
		}
		return nil, fmt.Errorf("failed to load dealer: %w", err)
	}
	return &dealer, nil
}

// CreateDealer registers a new active dealer
func CreateDealer(db *gorm.DB, in DealerInput) (*models.Dealer, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	dealer := &models.Dealer{
		Name:      in.Name,
		TaxNumber: in.TaxNumber,
		Phone:     in.Phone,
		Email:     in.Email,
		City:      in.City,
		Address:   in.Address,
		IsActive:  true,
	}
	if err := db.Create(dealer).Error; err != nil {
		return nil, fmt.Errorf("failed to create dealer: %w", err)
	}
	return dealer, nil
}

// UpdateDealer replaces the editable fields of a dealer
func UpdateDealer(db *gorm.DB, dealer *models.Dealer, in DealerInput) error {
	in, err := in.validate()
	if err != nil {
		return err
	}
	err = db.Model(dealer).Updates(map[string]interface{}{
		"name":       in.Name,
		"tax_number": in.TaxNumber,
		"phone":      in.Phone,
		"email":      in.Email,
		"city":       in.City,
		"address":    in.Address,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update dealer: %w", err)
	}
	return nil
}

// SetDealerActive toggles a dealer. Deactivation also signs out its users;
// cases and documents are kept.
func SetDealerActive(db *gorm.DB, dealer *models.Dealer, active bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(dealer).Update("is_active", active).Error; err != nil {
			return fmt.Errorf("failed to update dealer: %w", err)
		}
		if active {
			return nil
		}
		if err := tx.Where("dealer_id = ?", dealer.ID).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("failed to revoke dealer sessions: %w", err)
		}
		return nil
	})
}
