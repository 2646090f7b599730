package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/archive"
	"claim_flow_app_go/services/casefile"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// bulkBatchSize is the number of document rows read per query of a bulk export
var bulkBatchSize = 1000

// CaseArchiveEntries maps the documents of a single case to archive entries
func CaseArchiveEntries(docs []models.CaseDocument) []archive.Entry {
	entries := make([]archive.Entry, 0, len(docs))
	for i := range docs {
		entries = append(entries, archive.Entry{
			Ref:      docs[i].FilePath,
			Name:     DocumentDisplayName(&docs[i]),
			Modified: docs[i].CreatedAt,
		})
	}
	return entries
}

// PrepareCaseArchive resolves the visible documents of one case
func PrepareCaseArchive(ctx context.Context, db *gorm.DB, store StorageProvider, c *models.Case, audience casefile.Audience) (*archive.Archive, error) {
	docs, err := ListCaseDocuments(db, c, audience)
	if err != nil {
		return nil, err
	}
	return archive.NewBuilder(store).Prepare(ctx, CaseArchiveEntries(docs))
}

// BulkArchiveFilters narrows a bulk export
type BulkArchiveFilters struct {
	Category casefile.Category
	Status   casefile.Status
}

type bulkRow struct {
	models.CaseDocument
	CaseNumber   string
	CustomerName string
}

// PrepareBulkArchive resolves every visible document in scope, one folder per case
func PrepareBulkArchive(
	ctx context.Context,
	db *gorm.DB,
	store StorageProvider,
	scope CaseScope,
	audience casefile.Audience,
	filters BulkArchiveFilters,
) (*archive.Archive, error) {
	if filters.Category != "" && !casefile.IsValidCategory(filters.Category) {
		return nil, ErrInvalidCategory
	}

	query := scope.Cases(db.Model(&models.CaseDocument{}).
		Select("case_documents.*, cases.case_number AS case_number, cases.customer_name AS customer_name").
		Joins("JOIN cases ON cases.id = case_documents.case_id AND cases.deleted_at IS NULL"))
	if filters.Category != "" {
		query = query.Where("cases.category = ?", filters.Category)
	}
	if filters.Status != "" {
		query = query.Where("cases.status = ?", filters.Status)
	}

	query = query.Order("cases.case_number ASC, case_documents.created_at ASC, case_documents.id ASC")

	var entries []archive.Entry
	for offset := 0; ; offset += bulkBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rows []bulkRow
		if err := query.Session(&gorm.Session{}).Offset(offset).Limit(bulkBatchSize).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load documents for export: %w", err)
		}
		for i := range rows {
			doc := &rows[i].CaseDocument
			if !casefile.CanSeeDocument(audience, doc.Kind) {
				continue
			}
			entries = append(entries, archive.Entry{
				Ref:      doc.FilePath,
				Name:     DocumentDisplayName(doc),
				Group:    rows[i].CaseNumber + " " + rows[i].CustomerName,
				Modified: doc.CreatedAt,
			})
		}
		if len(rows) < bulkBatchSize {
			break
		}
	}
	return archive.NewBuilder(store).Prepare(ctx, entries)
}

// ArchiveFileName builds the download name of an export
func ArchiveFileName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.zip", archive.SanitizeName(prefix), now.Format("20060102_1504"))
}

var caseSheetHeaders = []string{
	"Dosya No", "Bayi", "Kategori", "Durum", "Müşteri", "Telefon", "E-posta", "Plaka", "Oluşturulma", "Kapanış",
}

// ExportCasesXLSX writes the cases in scope to a spreadsheet
func ExportCasesXLSX(db *gorm.DB, scope CaseScope, filters CaseFilters) (*bytes.Buffer, error) {
	query := applyCaseFilters(scope.Cases(db.Model(&models.Case{})), filters)

	var cases []models.Case
	if err := query.Preload("Dealer").Order("cases.created_at DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to load cases for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Dosyalar"
	f.SetSheetName("Sheet1", sheet)

	for i, header := range caseSheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(caseSheetHeaders), 1)
	f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)
	f.SetColWidth(sheet, "A", "J", 20)

	for i, c := range cases {
		row := i + 2
		dealerName := ""
		if c.Dealer != nil {
			dealerName = c.Dealer.Name
		}
		closedAt := ""
		if c.ClosedAt != nil {
			closedAt = c.ClosedAt.Format("02.01.2006")
		}
		values := []interface{}{
			c.CaseNumber,
			dealerName,
			c.CategoryLabel(),
			c.StatusLabel(),
			c.CustomerName,
			c.CustomerPhone,
			c.CustomerEmail,
			c.PlateNumber,
			c.CreatedAt.Format("02.01.2006"),
			closedAt,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return buf, nil
}
