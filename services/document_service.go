package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path"
	"strings"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/archive"
	"claim_flow_app_go/services/casefile"

	"gorm.io/gorm"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentFileMissing = errors.New("document file not found in storage")
	ErrKindNotAllowed      = errors.New("document kind is not valid for this case category")
	ErrResultKindForbidden = errors.New("only staff can upload result documents")
)

// DocumentDisplayName is the single adapter over the historical name
// columns of a document row.
func DocumentDisplayName(doc *models.CaseDocument) string {
	if name := strings.TrimSpace(doc.FileOriginalName); name != "" {
		return name
	}
	if name := strings.TrimSpace(doc.LegacyDisplayName); name != "" {
		return name
	}
	if doc.FilePath != "" {
		if base := path.Base(strings.ReplaceAll(doc.FilePath, "\\", "/")); base != "." && base != "/" {
			return base
		}
	}
	if doc.FileName != "" {
		return doc.FileName
	}
	return doc.ID
}

// UploadResult describes a stored upload and its effect on the case
type UploadResult struct {
	Document      *models.CaseDocument
	PreviousState casefile.Status
	StatusChanged bool
}

// CheckUploadKind validates kind against the case category and the audience
func CheckUploadKind(c *models.Case, kind casefile.Kind, audience casefile.Audience) error {
	if casefile.IsResultKind(kind) {
		if audience != casefile.AudienceAdmin {
			return ErrResultKindForbidden
		}
		return nil
	}
	if !casefile.IsRequiredKind(c.Category, kind) {
		return ErrKindNotAllowed
	}
	return nil
}

// UploadCaseDocument stores a file for c and recomputes the case status
func UploadCaseDocument(
	ctx context.Context,
	db *gorm.DB,
	store StorageProvider,
	c *models.Case,
	actor *models.User,
	audience casefile.Audience,
	kind casefile.Kind,
	file *multipart.FileHeader,
) (*UploadResult, error) {
	if c.IsClosed() {
		return nil, ErrCaseClosed
	}
	if err := CheckUploadKind(c, kind, audience); err != nil {
		return nil, err
	}
	if err := ValidateDocumentUpload(file); err != nil {
		return nil, err
	}

	key := GenerateCaseDocumentKey(c.ID, string(kind), file.Filename)
	stored, err := StoreUpload(ctx, store, file, key)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.CaseDocument{
		DealerID:         c.DealerID,
		CaseID:           c.ID,
		Kind:             kind,
		FileName:         stored.FileName,
		FileOriginalName: SanitizeText(file.Filename),
		FilePath:         stored.Key,
		FileSize:         stored.Size,
		MimeType:         UploadContentType(file),
		UploadedByID:     ptrIfNotEmpty(actor.ID),
	}

	result := &UploadResult{Document: doc, PreviousState: c.Status}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create case document: %w", err)
		}
		changed, err := RecomputeCaseStatus(tx, c)
		if err != nil {
			return err
		}
		result.StatusChanged = changed
		return nil
	})
	if err != nil {
		if delErr := store.Delete(ctx, stored.Key); delErr != nil {
			log.Printf("[WARNING] Failed to remove orphaned upload %s: %v", stored.Key, delErr)
		}
		return nil, err
	}
	return result, nil
}

// ListCaseDocuments returns the live documents of a case the audience may see
func ListCaseDocuments(db *gorm.DB, c *models.Case, audience casefile.Audience) ([]models.CaseDocument, error) {
	var documents []models.CaseDocument
	if err := db.Where("case_id = ?", c.ID).
		Preload("UploadedBy").
		Order("created_at DESC").
		Find(&documents).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch case documents: %w", err)
	}

	visible := documents[:0]
	for _, d := range documents {
		if casefile.CanSeeDocument(audience, d.Kind) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

// GetCaseDocument loads one live document of c. Documents hidden from the
// audience are reported as not found.
func GetCaseDocument(db *gorm.DB, c *models.Case, documentID string, audience casefile.Audience) (*models.CaseDocument, error) {
	var doc models.CaseDocument
	err := db.Where("id = ? AND case_id = ?", documentID, c.ID).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if !casefile.CanSeeDocument(audience, doc.Kind) {
		return nil, ErrDocumentNotFound
	}
	return &doc, nil
}

// OpenCaseDocument resolves the stored path of doc, including legacy
// layouts, and opens it for reading.
func OpenCaseDocument(ctx context.Context, store StorageProvider, doc *models.CaseDocument) (io.ReadCloser, error) {
	res := archive.Resolve(doc.FilePath, func(key string) bool {
		return store.Exists(ctx, key)
	})
	if !res.Found {
		log.Printf("[WARNING] Document %s not found in storage, tried %v", doc.ID, res.Tried)
		return nil, ErrDocumentFileMissing
	}
	rc, err := store.Open(ctx, res.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return rc, nil
}

// DeleteCaseDocument soft deletes a document and recomputes the case status.
// The stored file is kept.
func DeleteCaseDocument(db *gorm.DB, c *models.Case, documentID string, audience casefile.Audience) (*UploadResult, error) {
	if c.IsClosed() {
		return nil, ErrCaseClosed
	}
	doc, err := GetCaseDocument(db, c, documentID, audience)
	if err != nil {
		return nil, err
	}
	if doc.IsResult && audience != casefile.AudienceAdmin {
		return nil, ErrResultKindForbidden
	}

	result := &UploadResult{Document: doc, PreviousState: c.Status}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(doc).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		changed, err := RecomputeCaseStatus(tx, c)
		if err != nil {
			return err
		}
		result.StatusChanged = changed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CaseChecklist returns the required document checklist of c
func CaseChecklist(db *gorm.DB, c *models.Case) ([]casefile.ChecklistItem, error) {
	_, counts, err := UploadedKinds(db, c.ID)
	if err != nil {
		return nil, err
	}
	return casefile.Checklist(c.Category, counts), nil
}

// MissingDocumentLabels lists the labels of required kinds not yet uploaded
func MissingDocumentLabels(db *gorm.DB, c *models.Case) ([]string, error) {
	set, _, err := UploadedKinds(db, c.ID)
	if err != nil {
		return nil, err
	}
	return casefile.MissingLabels(c.Category, set), nil
}
