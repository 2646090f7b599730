package models

import (
	"time"

	"claim_flow_app_go/services/casefile"

	"gorm.io/gorm"
)

// CaseDocument represents one stored file attached to a case
type CaseDocument struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Dealer relationship (for scoping)
	DealerID string `gorm:"type:uuid;not null;index" json:"dealer_id"`

	CaseID string `gorm:"type:uuid;not null;index:idx_doc_case_kind" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"-"`

	Kind     casefile.Kind `gorm:"type:varchar(48);not null;index:idx_doc_case_kind" json:"kind"`
	IsResult bool          `gorm:"not null;default:false" json:"is_result"`

	// File metadata
	FileName         string `json:"file_name"`
	FileOriginalName string `json:"file_original_name"`
	// LegacyDisplayName is the name column of rows imported from the previous system
	LegacyDisplayName string `gorm:"column:display_name" json:"-"`
	FilePath          string `gorm:"not null" json:"-"` // Not exposed in JSON for security
	FileSize          int64  `gorm:"not null;default:0" json:"file_size"`
	MimeType          string `json:"mime_type,omitempty"`

	// Upload tracking
	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
	UploadedBy   *User   `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *CaseDocument) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	d.IsResult = casefile.IsResultKind(d.Kind)
	return nil
}

// TableName specifies the table name for CaseDocument model
func (CaseDocument) TableName() string {
	return "case_documents"
}

// GetDownloadURL returns a safe download URL for this document
func (d *CaseDocument) GetDownloadURL() string {
	return "/api/cases/" + d.CaseID + "/documents/" + d.ID + "/download"
}

// KindLabel returns the display label of the document kind
func (d *CaseDocument) KindLabel() string {
	return casefile.KindLabel(d.Kind)
}
