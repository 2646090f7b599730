package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// AuditAction represents the type of operation performed
type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionDownload     AuditAction = "DOWNLOAD"      // Document downloaded
	AuditActionStatusChange AuditAction = "STATUS_CHANGE" // Case stage changed
	AuditActionExport       AuditAction = "EXPORT"        // Archive or spreadsheet exported
	AuditActionSMS          AuditAction = "SMS"           // SMS dispatched
	AuditActionLogin        AuditAction = "LOGIN"         // User logged in
	AuditActionLogout       AuditAction = "LOGOUT"        // User logged out
	AuditActionSecurity     AuditAction = "SECURITY"      // Security relevant event
)

// AuditLog represents an immutable record of a data operation
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`

	// Actor identification
	UserID   *string `gorm:"type:uuid;index:idx_audit_user" json:"user_id,omitempty"`
	UserName string  `gorm:"not null" json:"user_name"` // Denormalized for historical accuracy
	UserRole string  `gorm:"not null" json:"user_role"` // Denormalized

	// Dealer scope
	DealerID   *string `gorm:"type:uuid;index:idx_audit_dealer" json:"dealer_id,omitempty"`
	DealerName string  `json:"dealer_name,omitempty"` // Denormalized

	// Target resource
	ResourceType string `gorm:"not null;index:idx_audit_resource" json:"resource_type"` // e.g., "Case", "CaseDocument"
	ResourceID   string `gorm:"not null;index:idx_audit_resource" json:"resource_id"`
	ResourceName string `json:"resource_name,omitempty"` // Human-readable identifier (e.g., case number)

	// Operation details
	Action      AuditAction `gorm:"not null;index:idx_audit_action" json:"action"`
	Description string      `gorm:"type:text" json:"description,omitempty"` // Human-readable summary

	// Change tracking (for UPDATE operations)
	OldValues string `gorm:"type:text" json:"old_values,omitempty"` // JSON encoded
	NewValues string `gorm:"type:text" json:"new_values,omitempty"` // JSON encoded

	// Request metadata; RequestID matches the X-Request-Id response header
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	RequestID string `gorm:"index" json:"request_id,omitempty"`

	// Relationships (for reading, not for data integrity)
	User   *User   `gorm:"foreignKey:UserID" json:"-"`
	Dealer *Dealer `gorm:"foreignKey:DealerID" json:"-"`
}

// BeforeCreate generates the UUID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// ErrAuditLogImmutable is returned by any attempt to change a stored entry
var ErrAuditLogImmutable = errors.New("audit log entries are append-only")

// BeforeUpdate rejects updates
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

// BeforeDelete rejects deletes
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}
