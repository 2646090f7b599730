package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"

	"gorm.io/gorm"
)

// CaseNumberPrefix is the fixed prefix of every case number
const CaseNumberPrefix = "HSR"

var (
	ErrCaseNotFound         = errors.New("case not found")
	ErrCaseClosed           = errors.New("case is closed")
	ErrInvalidCategory      = errors.New("invalid case category")
	ErrCategoryImmutable    = errors.New("case category cannot be changed")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrDealerRequired       = errors.New("dealer is required")
	ErrDealerNotFound       = errors.New("dealer not found")
	ErrInvalidCustomer      = errors.New("customer user must be an active customer of the same dealer")
)

// GenerateCaseNumber generates the next case number of the current year
// Format: HSR-{YEAR}-{SEQUENCE}
// Example: HSR-2026-00042
func GenerateCaseNumber(db *gorm.DB) (string, error) {
	currentYear := time.Now().Year()
	prefix := fmt.Sprintf("%s-%d-", CaseNumberPrefix, currentYear)

	// Soft-deleted cases keep their numbers
	var maxCase models.Case
	err := db.Unscoped().Where("case_number LIKE ?", prefix+"%").
		Order("case_number DESC").
		First(&maxCase).Error

	sequence := 1
	if err == nil {
		var parsedSeq int
		_, scanErr := fmt.Sscanf(strings.TrimPrefix(maxCase.CaseNumber, prefix), "%d", &parsedSeq)
		if scanErr == nil {
			sequence = parsedSeq + 1
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to query max case number: %w", err)
	}

	return fmt.Sprintf("%s%05d", prefix, sequence), nil
}

// EnsureUniqueCaseNumber generates a unique case number with retry logic
// Retries up to maxRetries times if a collision occurs
func EnsureUniqueCaseNumber(db *gorm.DB) (string, error) {
	const maxRetries = 10

	for i := 0; i < maxRetries; i++ {
		caseNumber, err := GenerateCaseNumber(db)
		if err != nil {
			return "", err
		}

		var count int64
		if err := db.Unscoped().Model(&models.Case{}).Where("case_number = ?", caseNumber).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check case number uniqueness: %w", err)
		}

		if count == 0 {
			return caseNumber, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique case number after %d retries", maxRetries)
}

// CreateCaseInput carries the intake form fields
type CreateCaseInput struct {
	DealerID       string
	Category       casefile.Category
	CustomerName   string
	CustomerPhone  string
	CustomerEmail  string
	PlateNumber    string
	Notes          string
	CustomerUserID string
}

// CreateCase registers a new case. Dealer-bound actors always create cases
// under their own dealer.
func CreateCase(db *gorm.DB, actor *models.User, in CreateCaseInput) (*models.Case, error) {
	if !casefile.IsValidCategory(in.Category) {
		return nil, ErrInvalidCategory
	}
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, ErrCustomerNameRequired
	}

	dealerID := in.DealerID
	if actor.HasDealer() {
		dealerID = *actor.DealerID
	}
	if dealerID == "" {
		return nil, ErrDealerRequired
	}

	phone := strings.TrimSpace(in.CustomerPhone)
	if phone != "" {
		normalized, err := NormalizePhone(phone)
		if err != nil {
			return nil, err
		}
		phone = normalized
	}

	c := &models.Case{
		DealerID:      dealerID,
		Category:      in.Category,
		CustomerName:  SanitizeText(name),
		CustomerPhone: phone,
		CustomerEmail: strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		PlateNumber:   NormalizePlate(in.PlateNumber),
		Notes:         SanitizeText(in.Notes),
		Status:        casefile.DeriveStatus(in.Category, nil),
		CreatedByID:   ptrIfNotEmpty(actor.ID),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var dealer models.Dealer
		if err := tx.Where("id = ? AND is_active = ?", dealerID, true).First(&dealer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDealerNotFound
			}
			return fmt.Errorf("failed to load dealer: %w", err)
		}

		if in.CustomerUserID != "" {
			if err := checkCustomerUser(tx, in.CustomerUserID, dealerID); err != nil {
				return err
			}
			c.CustomerUserID = &in.CustomerUserID
		}

		number, err := EnsureUniqueCaseNumber(tx)
		if err != nil {
			return err
		}
		c.CaseNumber = number

		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func checkCustomerUser(db *gorm.DB, userID, dealerID string) error {
	var count int64
	err := db.Model(&models.User{}).
		Where("id = ? AND role = ? AND dealer_id = ? AND is_active = ?", userID, permissions.RoleCustomer, dealerID, true).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check customer user: %w", err)
	}
	if count == 0 {
		return ErrInvalidCustomer
	}
	return nil
}

// NormalizePlate upper-cases a plate number and collapses whitespace
func NormalizePlate(plate string) string {
	return strings.Join(strings.Fields(strings.ToUpper(plate)), " ")
}

// CaseFilters contains filter options for case listings
type CaseFilters struct {
	Category    casefile.Category
	Status      casefile.Status
	DealerID    string
	SearchQuery string
}

func applyCaseFilters(query *gorm.DB, filters CaseFilters) *gorm.DB {
	if filters.Category != "" {
		query = query.Where("cases.category = ?", filters.Category)
	}
	if filters.Status != "" {
		query = query.Where("cases.status = ?", filters.Status)
	}
	if filters.DealerID != "" {
		query = query.Where("cases.dealer_id = ?", filters.DealerID)
	}
	if filters.SearchQuery != "" {
		searchPattern := "%" + filters.SearchQuery + "%"
		query = query.Where(
			"cases.case_number LIKE ? OR cases.customer_name LIKE ? OR cases.plate_number LIKE ?",
			searchPattern, searchPattern, strings.ToUpper(searchPattern),
		)
	}
	return query
}

// ListCases returns one page of cases visible in scope, newest first
func ListCases(db *gorm.DB, scope CaseScope, filters CaseFilters, page, pageSize int) ([]models.Case, int64, error) {
	query := applyCaseFilters(scope.Cases(db.Model(&models.Case{})), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	page, pageSize = NormalizePage(page, pageSize)

	var cases []models.Case
	err := query.Preload("Dealer").
		Order("cases.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cases).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, total, nil
}

// GetCase loads one case inside scope
func GetCase(db *gorm.DB, scope CaseScope, caseID string) (*models.Case, error) {
	var c models.Case
	err := scope.Cases(db.Model(&models.Case{})).
		Preload("Dealer").
		Where("cases.id = ?", caseID).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	return &c, nil
}

// UpdateCaseInput holds editable case fields; nil leaves a field unchanged
type UpdateCaseInput struct {
	Category      *casefile.Category
	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
	PlateNumber   *string
	Notes         *string
}

// UpdateCase edits customer details and notes. The category is fixed at intake.
func UpdateCase(db *gorm.DB, c *models.Case, in UpdateCaseInput) (map[string]interface{}, error) {
	if c.IsClosed() {
		return nil, ErrCaseClosed
	}
	if in.Category != nil && *in.Category != c.Category {
		return nil, ErrCategoryImmutable
	}

	updates := map[string]interface{}{}
	if in.CustomerName != nil {
		name := SanitizeText(*in.CustomerName)
		if name == "" {
			return nil, ErrCustomerNameRequired
		}
		updates["customer_name"] = name
	}
	if in.CustomerPhone != nil {
		phone := strings.TrimSpace(*in.CustomerPhone)
		if phone != "" {
			normalized, err := NormalizePhone(phone)
			if err != nil {
				return nil, err
			}
			phone = normalized
		}
		updates["customer_phone"] = phone
	}
	if in.CustomerEmail != nil {
		updates["customer_email"] = strings.ToLower(strings.TrimSpace(*in.CustomerEmail))
	}
	if in.PlateNumber != nil {
		updates["plate_number"] = NormalizePlate(*in.PlateNumber)
	}
	if in.Notes != nil {
		updates["notes"] = SanitizeText(*in.Notes)
	}
	if len(updates) == 0 {
		return updates, nil
	}

	if err := db.Model(c).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}
	return updates, nil
}

// ChangeCaseStatus applies a manual stage change and returns the previous status
func ChangeCaseStatus(db *gorm.DB, c *models.Case, to casefile.Status, actor *models.User) (casefile.Status, error) {
	from := c.Status
	if c.IsClosed() {
		return from, ErrCaseClosed
	}
	if err := casefile.CanTransition(from, to); err != nil {
		return from, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":            to,
		"status_changed_at": now,
		"status_changed_by": ptrIfNotEmpty(actor.ID),
	}
	if to.IsTerminal() {
		updates["closed_at"] = now
	}

	// Guard against a concurrent change of the same case
	result := db.Model(&models.Case{}).
		Where("id = ? AND status = ?", c.ID, from).
		Updates(updates)
	if result.Error != nil {
		return from, fmt.Errorf("failed to change case status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return from, fmt.Errorf("%w: status changed concurrently", casefile.ErrInvalidTransition)
	}

	c.Status = to
	c.StatusChangedAt = &now
	c.StatusChangedBy = ptrIfNotEmpty(actor.ID)
	if to.IsTerminal() {
		c.ClosedAt = &now
	}
	return from, nil
}

// UploadedKinds returns the kinds present among the live documents of a case
// together with their counts. Result documents are excluded.
func UploadedKinds(db *gorm.DB, caseID string) (casefile.KindSet, map[casefile.Kind]int, error) {
	var rows []struct {
		Kind  casefile.Kind
		Count int
	}
	err := db.Model(&models.CaseDocument{}).
		Select("kind, COUNT(*) AS count").
		Where("case_id = ? AND is_result = ?", caseID, false).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count case documents: %w", err)
	}

	counts := make(map[casefile.Kind]int, len(rows))
	kinds := make([]casefile.Kind, 0, len(rows))
	for _, r := range rows {
		counts[r.Kind] = r.Count
		kinds = append(kinds, r.Kind)
	}
	return casefile.NewKindSet(kinds...), counts, nil
}

// RecomputeCaseStatus re-derives the automatic status of c from its documents
// and persists it when it changed. Manual stages are left alone. The stored
// status is re-read first so a stale c cannot move a case out of closed.
func RecomputeCaseStatus(db *gorm.DB, c *models.Case) (bool, error) {
	current, err := currentCaseStatus(db, c.ID)
	if err != nil {
		return false, err
	}
	c.Status = current
	if current.IsTerminal() {
		return false, ErrCaseClosed
	}

	set, _, err := UploadedKinds(db, c.ID)
	if err != nil {
		return false, err
	}

	next := casefile.Recompute(current, c.Category, set)
	if next == current {
		return false, nil
	}

	now := time.Now()
	result := db.Model(&models.Case{}).
		Where("id = ? AND status = ?", c.ID, current).
		Updates(map[string]interface{}{
			"status":            next,
			"status_changed_at": now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update case status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		latest, err := currentCaseStatus(db, c.ID)
		if err != nil {
			return false, err
		}
		c.Status = latest
		if latest.IsTerminal() {
			return false, ErrCaseClosed
		}
		return false, fmt.Errorf("%w: status changed concurrently", casefile.ErrInvalidTransition)
	}
	c.Status = next
	c.StatusChangedAt = &now
	return true, nil
}

func currentCaseStatus(db *gorm.DB, caseID string) (casefile.Status, error) {
	var row models.Case
	err := db.Select("id", "status").Where("id = ?", caseID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCaseNotFound
		}
		return "", fmt.Errorf("failed to load case status: %w", err)
	}
	return row.Status, nil
}

// CaseStatusCounts returns the number of cases per status inside scope
func CaseStatusCounts(db *gorm.DB, scope CaseScope) (map[casefile.Status]int64, error) {
	var rows []struct {
		Status casefile.Status
		Count  int64
	}
	err := scope.Cases(db.Model(&models.Case{})).
		Select("cases.status AS status, COUNT(*) AS count").
		Group("cases.status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count cases by status: %w", err)
	}
	counts := make(map[casefile.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
