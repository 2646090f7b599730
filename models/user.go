package models

import (
	"time"

	"gorm.io/gorm"
)

// User is anyone who can sign in. Admin and staff have no dealer; dealer and
// customer accounts always do. Role names a row of the permission registry.
type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string  `gorm:"not null" json:"name"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Phone    string  `gorm:"size:20" json:"phone"`
	Password string  `gorm:"not null" json:"-"`
	Role     string  `gorm:"not null;size:64;default:bayi;index" json:"role"`
	DealerID *string `gorm:"type:uuid;index" json:"dealer_id"`
	Dealer   *Dealer `gorm:"foreignKey:DealerID" json:"dealer,omitempty"`

	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

func (User) TableName() string {
	return "users"
}

// HasDealer reports whether the user is scoped to a dealer.
func (u *User) HasDealer() bool {
	return u.DealerIDValue() != ""
}

// DealerIDValue dereferences DealerID, empty for admin and staff.
func (u *User) DealerIDValue() string {
	if u.DealerID == nil {
		return ""
	}
	return *u.DealerID
}
