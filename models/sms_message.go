package models

import (
	"time"

	"gorm.io/gorm"
)

// SMS delivery states
const (
	SmsStatusPending = "pending"
	SmsStatusSent    = "sent"
	SmsStatusFailed  = "failed"
	SmsStatusSkipped = "skipped" // test mode or missing phone
)

// SmsMessage is the outbox record of one SMS sent to a customer
type SmsMessage struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	DealerID string  `gorm:"type:uuid;not null;index" json:"dealer_id"`
	CaseID   *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	SentByID *string `gorm:"type:uuid" json:"sent_by_id,omitempty"`

	Phone   string `gorm:"not null" json:"phone"`
	Message string `gorm:"type:text;not null" json:"message"`

	Status     string     `gorm:"not null;default:pending;index" json:"status"`
	ProviderID string     `json:"provider_id,omitempty"`
	Error      string     `gorm:"type:text" json:"error,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}

func (m *SmsMessage) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}

func (SmsMessage) TableName() string {
	return "sms_messages"
}
