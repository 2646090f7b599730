package services

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"claim_flow_app_go/services/archive"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func zipNames(t *testing.T, a *archive.Archive) []string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, a.WriteTo(context.Background(), &buf))
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestPrepareCaseArchive(t *testing.T) {
	db := newTestDB(t)
	store := newMemStorage()
	dealer := createTestDealer(t, db, "Oto Ekspres")
	admin := createTestUser(t, db, permissions.RoleAdmin, nil)
	c := createTestCase(t, db, admin, dealer, casefile.CategoryValueLoss)
	ctx := context.Background()

	store.files["cases/c/iban.pdf"] = "iban"
	store.files["cases/c/vekalet.pdf"] = "vekalet"
	store.files["cases/c/cevap.pdf"] = "cevap"
	addTestDocument(t, db, c, casefile.KindIBAN, "/uploads/cases/c/iban.pdf")
	addTestDocument(t, db, c, casefile.KindPowerOfAttorney, "cases/c/vekalet.pdf")
	addTestDocument(t, db, c, casefile.KindInsurerResponse, "cases/c/cevap.pdf")
	addTestDocument(t, db, c, casefile.KindScenePhoto, "cases/c/kayip.jpg")

	a, err := PrepareCaseArchive(ctx, db, store, c, casefile.AudienceAdmin)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Len())
	assert.Len(t, a.Skipped(), 1)

	a, err = PrepareCaseArchive(ctx, db, store, c, casefile.AudienceDealer)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"iban-bilgisi.pdf", "vekalet.pdf"}, zipNames(t, a))

	t.Run("nothing to archive", func(t *testing.T) {
		empty := createTestCase(t, db, admin, dealer, casefile.CategoryValueLoss)
		_, err := PrepareCaseArchive(ctx, db, store, empty, casefile.AudienceAdmin)
		assert.ErrorIs(t, err, archive.ErrNothingToArchive)
	})
}

func TestPrepareBulkArchive(t *testing.T) {
	db := newTestDB(t)
	store := newMemStorage()
	dealerA := createTestDealer(t, db, "A Oto")
	dealerB := createTestDealer(t, db, "B Oto")
	admin := createTestUser(t, db, permissions.RoleAdmin, nil)
	ctx := context.Background()

	caseA := createTestCase(t, db, admin, dealerA, casefile.CategoryValueLoss)
	caseB := createTestCase(t, db, admin, dealerB, casefile.CategoryPartsLabor)
	store.files["a/iban.pdf"] = "a"
	store.files["b/iban.pdf"] = "b"
	store.files["b/bilirkisi.pdf"] = "w"
	addTestDocument(t, db, caseA, casefile.KindIBAN, "a/iban.pdf")
	addTestDocument(t, db, caseB, casefile.KindIBAN, "b/iban.pdf")
	addTestDocument(t, db, caseB, casefile.KindWitnessReport, "b/bilirkisi.pdf")

	a, err := PrepareBulkArchive(ctx, db, store, CaseScope{All: true}, casefile.AudienceAdmin, BulkArchiveFilters{})
	require.NoError(t, err)
	names := zipNames(t, a)
	assert.ElementsMatch(t, []string{
		caseA.CaseNumber + " Mehmet Demir/iban-bilgisi.pdf",
		caseB.CaseNumber + " Mehmet Demir/iban-bilgisi.pdf",
		caseB.CaseNumber + " Mehmet Demir/bilirkisi-raporu.pdf",
	}, names)

	t.Run("scope and filters narrow the export", func(t *testing.T) {
		a, err := PrepareBulkArchive(ctx, db, store, CaseScope{DealerID: dealerB.ID}, casefile.AudienceCustomer, BulkArchiveFilters{})
		require.NoError(t, err)
		assert.Equal(t, []string{caseB.CaseNumber + " Mehmet Demir/iban-bilgisi.pdf"}, zipNames(t, a))

		_, err = PrepareBulkArchive(ctx, db, store, CaseScope{All: true}, casefile.AudienceAdmin, BulkArchiveFilters{Status: casefile.StatusEnforcement})
		assert.ErrorIs(t, err, archive.ErrNothingToArchive)

		_, err = PrepareBulkArchive(ctx, db, store, CaseScope{All: true}, casefile.AudienceAdmin, BulkArchiveFilters{Category: "kasko"})
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("soft deleted cases are left out", func(t *testing.T) {
		require.NoError(t, db.Delete(caseA).Error)
		a, err := PrepareBulkArchive(ctx, db, store, CaseScope{All: true}, casefile.AudienceAdmin, BulkArchiveFilters{Category: casefile.CategoryValueLoss})
		assert.Nil(t, a)
		assert.ErrorIs(t, err, archive.ErrNothingToArchive)
	})
}

func TestPrepareBulkArchiveReadsEveryBatch(t *testing.T) {
	db := newTestDB(t)
	store := newMemStorage()
	dealer := createTestDealer(t, db, "Oto Ekspres")
	admin := createTestUser(t, db, permissions.RoleAdmin, nil)
	c := createTestCase(t, db, admin, dealer, casefile.CategoryValueLoss)

	prev := bulkBatchSize
	bulkBatchSize = 2
	t.Cleanup(func() { bulkBatchSize = prev })

	kinds := []casefile.Kind{
		casefile.KindIBAN,
		casefile.KindPowerOfAttorney,
		casefile.KindScenePhoto,
		casefile.KindAccidentReport,
		casefile.KindVictimRegistration,
	}
	for _, k := range kinds {
		path := "cases/c/" + string(k) + ".pdf"
		store.files[path] = string(k)
		addTestDocument(t, db, c, k, path)
	}

	a, err := PrepareBulkArchive(context.Background(), db, store, CaseScope{All: true}, casefile.AudienceAdmin, BulkArchiveFilters{})
	require.NoError(t, err)
	assert.Equal(t, len(kinds), a.Len())
	assert.Empty(t, a.Skipped())
}

func TestArchivesLeaveOutDeletedDocuments(t *testing.T) {
	db := newTestDB(t)
	store := newMemStorage()
	dealer := createTestDealer(t, db, "Oto Ekspres")
	admin := createTestUser(t, db, permissions.RoleAdmin, nil)
	c := createTestCase(t, db, admin, dealer, casefile.CategoryValueLoss)
	ctx := context.Background()

	store.files["cases/c/iban.pdf"] = "iban"
	store.files["cases/c/vekalet.pdf"] = "vekalet"
	addTestDocument(t, db, c, casefile.KindIBAN, "cases/c/iban.pdf")
	poa := addTestDocument(t, db, c, casefile.KindPowerOfAttorney, "cases/c/vekalet.pdf")
	require.NoError(t, db.Delete(poa).Error)

	single, err := PrepareCaseArchive(ctx, db, store, c, casefile.AudienceAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"iban-bilgisi.pdf"}, zipNames(t, single))
	assert.Empty(t, single.Skipped())

	bulk, err := PrepareBulkArchive(ctx, db, store, CaseScope{All: true}, casefile.AudienceAdmin, BulkArchiveFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{c.CaseNumber + " Mehmet Demir/iban-bilgisi.pdf"}, zipNames(t, bulk))
	assert.Empty(t, bulk.Skipped())
}

func TestArchiveFileName(t *testing.T) {
	now := time.Date(2026, 3, 9, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "HSR-2026-00001 Ali_Veli_20260309_1405.zip", ArchiveFileName("HSR-2026-00001 Ali/Veli", now))
}

func TestExportCasesXLSX(t *testing.T) {
	db := newTestDB(t)
	dealer := createTestDealer(t, db, "Oto Ekspres")
	admin := createTestUser(t, db, permissions.RoleAdmin, nil)
	c := createTestCase(t, db, admin, dealer, casefile.CategoryValueLoss)

	buf, err := ExportCasesXLSX(db, CaseScope{All: true}, CaseFilters{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Dosyalar")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dosya No", rows[0][0])
	assert.Equal(t, c.CaseNumber, rows[1][0])
	assert.Equal(t, "Oto Ekspres", rows[1][1])
	assert.Equal(t, "Değer Kaybı", rows[1][2])
	assert.Equal(t, "Evrak Bekleniyor", rows[1][3])
}
