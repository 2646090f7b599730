package models

import (
	"time"

	"gorm.io/gorm"
)

// Dealer (bayi) is the tenant that brings cases in. Users with role "bayi"
// or "musteri" belong to exactly one dealer.
type Dealer struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string `gorm:"not null" json:"name"`
	TaxNumber string `gorm:"size:11;index" json:"tax_number"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	City      string `json:"city"`
	Address   string `gorm:"type:text" json:"address"`
	IsActive  bool   `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Users []User `gorm:"foreignKey:DealerID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (d *Dealer) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	return nil
}

// TableName specifies the table name for Dealer model
func (Dealer) TableName() string {
	return "dealers"
}
