package services

import (
	"encoding/json"
	"log"
	"time"

	"claim_flow_app_go/models"

	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	UserID     string
	UserName   string
	UserRole   string
	DealerID   string
	DealerName string
	IPAddress  string
	UserAgent  string
	RequestID  string
}

// AuditContextFor builds an AuditContext from the acting user
func AuditContextFor(user *models.User, ipAddress, userAgent string) AuditContext {
	ctx := AuditContext{IPAddress: ipAddress, UserAgent: userAgent}
	if user == nil {
		return ctx
	}
	ctx.UserID = user.ID
	ctx.UserName = user.Name
	ctx.UserRole = user.Role
	ctx.DealerID = user.DealerIDValue()
	if user.Dealer != nil {
		ctx.DealerName = user.Dealer.Name
	}
	return ctx
}

// LogAuditEvent records one action. The row is written in the background;
// oldValues and newValues are stored as JSON.
func LogAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) {
	entry := buildAuditLog(ctx, action, resourceType, resourceID, resourceName, description, oldValues, newValues)
	go writeAuditLog(db, &entry)
}

func writeAuditLog(db *gorm.DB, entry *models.AuditLog) {
	if err := db.Create(entry).Error; err != nil {
		log.Printf("[AUDIT] Failed to record %s %s/%s: %v", entry.Action, entry.ResourceType, entry.ResourceID, err)
	}
}

func buildAuditLog(
	ctx AuditContext,
	action models.AuditAction,
	resourceType, resourceID, resourceName, description string,
	oldValues, newValues interface{},
) models.AuditLog {
	return models.AuditLog{
		UserID:       ptrIfNotEmpty(ctx.UserID),
		UserName:     ctx.UserName,
		UserRole:     ctx.UserRole,
		DealerID:     ptrIfNotEmpty(ctx.DealerID),
		DealerName:   ctx.DealerName,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: resourceName,
		Action:       action,
		Description:  description,
		OldValues:    auditJSON(oldValues),
		NewValues:    auditJSON(newValues),
		IPAddress:    ctx.IPAddress,
		UserAgent:    ctx.UserAgent,
		RequestID:    ctx.RequestID,
	}
}

// auditJSON encodes a snapshot; values that cannot be encoded are dropped.
func auditJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[AUDIT] Unencodable snapshot %T: %v", v, err)
		return ""
	}
	return string(b)
}

func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// GetResourceAuditHistory retrieves the audit history for a specific resource
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// AuditLogFilters narrows an audit listing. Zero fields do not filter.
type AuditLogFilters struct {
	UserID       string
	ResourceType string
	ResourceID   string
	Action       string
	RequestID    string
	DateFrom     time.Time
	DateTo       time.Time
	SearchQuery  string
}

func (f AuditLogFilters) apply(q *gorm.DB) *gorm.DB {
	for column, value := range map[string]string{
		"user_id":       f.UserID,
		"resource_type": f.ResourceType,
		"resource_id":   f.ResourceID,
		"action":        f.Action,
		"request_id":    f.RequestID,
	} {
		if value != "" {
			q = q.Where(column+" = ?", value)
		}
	}
	if !f.DateFrom.IsZero() {
		q = q.Where("created_at >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		q = q.Where("created_at <= ?", f.DateTo)
	}
	if f.SearchQuery != "" {
		like := "%" + f.SearchQuery + "%"
		q = q.Where("resource_name LIKE ? OR description LIKE ? OR user_name LIKE ?", like, like, like)
	}
	return q
}

// GetAuditLogs pages through the audit trail, newest first. An empty
// dealerID spans every dealer.
func GetAuditLogs(db *gorm.DB, dealerID string, filters AuditLogFilters, page, pageSize int) ([]models.AuditLog, int64, error) {
	query := db.Model(&models.AuditLog{})
	if dealerID != "" {
		query = query.Where("dealer_id = ?", dealerID)
	}
	query = filters.apply(query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = NormalizePage(page, pageSize)
	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}

// LogSecurityEvent records a security event under the system actor and
// mirrors it to the process log.
func LogSecurityEvent(db *gorm.DB, eventType, userID, details string) {
	log.Printf("[SECURITY] %s | User: %s | Details: %s", eventType, userID, details)

	entry := buildAuditLog(AuditContext{UserID: userID, UserName: "system", UserRole: "system"},
		models.AuditActionSecurity, "SECURITY_EVENT", eventType, "", details, nil, nil)
	go writeAuditLog(db, &entry)
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage clamps pagination parameters to sane bounds
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
