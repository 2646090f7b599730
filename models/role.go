package models

import (
	"time"

	"gorm.io/gorm"
)

// RoleRecord persists a role definition. System roles are seeded on startup
// and cannot be deleted.
type RoleRecord struct {
	ID        string    `gorm:"primarykey;size:64" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Label    string `gorm:"not null" json:"label"`
	System   bool   `gorm:"not null;default:false" json:"system"`
	ReadOnly bool   `gorm:"not null;default:false" json:"read_only"`

	Permissions []RolePermissionRecord `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

func (RoleRecord) TableName() string {
	return "roles"
}

// BeforeDelete blocks removal of system roles
func (r *RoleRecord) BeforeDelete(tx *gorm.DB) error {
	if r.System {
		return gorm.ErrInvalidData
	}
	return nil
}

// RolePermissionRecord is one role/page capability row
type RolePermissionRecord struct {
	RoleID string `gorm:"primarykey;size:64" json:"role_id"`
	PageID string `gorm:"primarykey;size:64" json:"page_id"`

	CanView    bool `gorm:"not null;default:false" json:"view"`
	CanCreate  bool `gorm:"not null;default:false" json:"create"`
	CanEdit    bool `gorm:"not null;default:false" json:"edit"`
	CanDelete  bool `gorm:"not null;default:false" json:"delete"`
	CanViewAll bool `gorm:"not null;default:false" json:"view_all"`
	CanViewOwn bool `gorm:"not null;default:false" json:"view_own"`
	CanExport  bool `gorm:"not null;default:false" json:"export"`
}

func (RolePermissionRecord) TableName() string {
	return "role_permissions"
}
