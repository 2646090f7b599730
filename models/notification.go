package models

import (
	"time"

	"gorm.io/gorm"
)

// In-app notification kinds
const (
	NotificationTypeCaseUpdate     = "CASE_UPDATE"
	NotificationTypeDocumentUpload = "DOCUMENT_UPLOAD"
	NotificationTypeResultDocument = "RESULT_DOCUMENT"
	NotificationTypeSystem         = "SYSTEM"
)

// Notification is shown in the bell menu of a dealer's users. A nil UserID
// broadcasts to the whole dealer; ReadAt is then shared by everyone there.
type Notification struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	DealerID string  `gorm:"type:uuid;not null;index:idx_notification_inbox" json:"dealer_id"`
	UserID   *string `gorm:"type:uuid;index:idx_notification_inbox" json:"user_id,omitempty"`
	CaseID   *string `gorm:"type:uuid" json:"case_id,omitempty"`

	Type    string     `gorm:"not null;size:32" json:"type"`
	Title   string     `gorm:"not null" json:"title"`
	Message string     `gorm:"type:text" json:"message"`
	LinkURL string     `json:"link_url,omitempty"`
	ReadAt  *time.Time `json:"read_at,omitempty"`

	Case *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	assignID(&n.ID)
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

// Broadcast reports whether every user of the dealer sees n.
func (n *Notification) Broadcast() bool {
	return n.UserID == nil
}
