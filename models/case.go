package models

import (
	"time"

	"claim_flow_app_go/services/casefile"

	"gorm.io/gorm"
)

// Case is one claimant's insurance application. Status is a cached label:
// the automatic stages are re-derived from documents, later stages are set
// by administrative actions.
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Dealer relationship
	DealerID string  `gorm:"type:uuid;not null;index:idx_case_dealer_status" json:"dealer_id"`
	Dealer   *Dealer `gorm:"foreignKey:DealerID" json:"dealer,omitempty"`

	// Case identification
	CaseNumber string            `gorm:"not null;uniqueIndex" json:"case_number"`
	Category   casefile.Category `gorm:"type:varchar(32);not null;index" json:"category"`

	// Customer
	CustomerName   string  `gorm:"not null" json:"customer_name"`
	CustomerPhone  string  `json:"customer_phone"`
	CustomerEmail  string  `json:"customer_email"`
	PlateNumber    string  `gorm:"size:16" json:"plate_number"`
	CustomerUserID *string `gorm:"type:uuid;index" json:"customer_user_id,omitempty"`
	CustomerUser   *User   `gorm:"foreignKey:CustomerUserID" json:"-"`

	Notes string `gorm:"type:text" json:"notes"`

	// Status and lifecycle
	Status          casefile.Status `gorm:"type:varchar(32);not null;default:documents_pending;index:idx_case_dealer_status" json:"status"`
	StatusChangedAt *time.Time      `json:"status_changed_at,omitempty"`
	StatusChangedBy *string         `gorm:"type:uuid" json:"status_changed_by,omitempty"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
	LastReminderAt  *time.Time      `json:"last_reminder_at,omitempty"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy   *User   `gorm:"foreignKey:CreatedByID" json:"-"`

	Documents []CaseDocument `gorm:"foreignKey:CaseID" json:"documents,omitempty"`
}

// BeforeCreate hook to generate UUID and default status
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	if c.Status == "" {
		c.Status = casefile.StatusDocumentsPending
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsClosed checks if the case reached the terminal stage
func (c *Case) IsClosed() bool {
	return c.Status.IsTerminal()
}

// StatusLabel returns the display label of the current status
func (c *Case) StatusLabel() string {
	return c.Status.Label()
}

// CategoryLabel returns the display label of the category
func (c *Case) CategoryLabel() string {
	return casefile.CategoryLabel(c.Category)
}
