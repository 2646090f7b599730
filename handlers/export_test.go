package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"testing"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestExportCaseArchiveHandler(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	dealerUser := createUser(t, database, permissions.RoleDealer, dealer)
	kase := createCase(t, database, admin, dealer, casefile.CategoryValueLoss)

	storeDocument(t, database, kase, casefile.KindIBAN, "cases/"+kase.ID+"/iban.pdf", pdfContent)
	storeDocument(t, database, kase, casefile.KindPowerOfAttorney, "cases/"+kase.ID+"/vekalet.pdf", pdfContent)
	storeDocument(t, database, kase, casefile.KindInsurerResponse, "cases/"+kase.ID+"/cevap.pdf", pdfContent)
	// Row whose file is gone is left out of the archive
	storeDocument(t, database, kase, casefile.KindScenePhoto, "", "")

	export := func(user *models.User) (*http.Response, []byte) {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+kase.ID+"/export.zip", nil)
		c.SetParamNames("id")
		c.SetParamValues(kase.ID)
		asUser(c, user)
		require.NoError(t, ExportCaseArchiveHandler(c))
		return rec.Result(), rec.Body.Bytes()
	}

	t.Run("staff get every document", func(t *testing.T) {
		res, body := export(admin)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "application/zip", res.Header.Get(echo.HeaderContentType))
		assert.Contains(t, res.Header.Get(echo.HeaderContentDisposition), kase.CaseNumber)
		assert.Equal(t, []string{"iban-bilgisi.pdf", "sigorta-cevabi.pdf", "vekalet.pdf"}, zipNames(t, body))
	})

	t.Run("dealer archive omits hidden results", func(t *testing.T) {
		res, body := export(dealerUser)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, []string{"iban-bilgisi.pdf", "vekalet.pdf"}, zipNames(t, body))
	})
}

func TestExportCaseArchiveNothingToArchive(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	kase := createCase(t, database, admin, dealer, casefile.CategoryValueLoss)
	storeDocument(t, database, kase, casefile.KindIBAN, "", "")

	_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+kase.ID+"/export.zip", nil)
	c.SetParamNames("id")
	c.SetParamValues(kase.ID)
	asUser(c, admin)

	require.NoError(t, ExportCaseArchiveHandler(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, echo.MIMEApplicationJSON, strings.Split(rec.Header().Get(echo.HeaderContentType), ";")[0])

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Arşivlenecek evrak bulunamadı", resp["error"])
}

func TestExportBulkArchiveHandler(t *testing.T) {
	database := setupTestDB(t)
	d1 := createDealer(t, database, "Yıldız Oto")
	d2 := createDealer(t, database, "Kaya Otomotiv")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	dealerUser := createUser(t, database, permissions.RoleDealer, d1)

	k1 := createCase(t, database, admin, d1, casefile.CategoryValueLoss)
	k2 := createCase(t, database, admin, d1, casefile.CategoryPartsLabor)
	k3 := createCase(t, database, admin, d2, casefile.CategoryValueLoss)
	for _, k := range []*models.Case{k1, k2, k3} {
		storeDocument(t, database, k, casefile.KindIBAN, "cases/"+k.ID+"/iban.pdf", pdfContent)
	}

	t.Run("dealer scope and category filter", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/exports/documents.zip?category=deger-kaybi", nil)
		asUser(c, dealerUser)

		require.NoError(t, ExportBulkArchiveHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "evraklar_deger-kaybi_")
		assert.Equal(t, []string{k1.CaseNumber + " Mehmet Demir/iban-bilgisi.pdf"}, zipNames(t, rec.Body.Bytes()))
	})

	t.Run("admin gets one folder per case", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/exports/documents.zip", nil)
		asUser(c, admin)

		require.NoError(t, ExportBulkArchiveHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, zipNames(t, rec.Body.Bytes()), 3)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/exports/documents.zip?category=kasko", nil)
		asUser(c, admin)

		require.NoError(t, ExportBulkArchiveHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportCasesXLSXHandler(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	kase := createCase(t, database, admin, dealer, casefile.CategoryValueLoss)

	_, c, rec := setupEcho(http.MethodGet, "/api/exports/cases.xlsx", nil)
	asUser(c, admin)

	require.NoError(t, ExportCasesXLSXHandler(permissions.PageReports)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dosya No", rows[0][0])
	assert.Equal(t, kase.CaseNumber, rows[1][0])
	assert.Equal(t, dealer.Name, rows[1][1])
}
