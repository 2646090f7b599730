package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pdfContent = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"

// uploadRequest builds a multipart upload for kind on the :id case
func uploadRequest(t *testing.T, caseID string, kind casefile.Kind, filename, content string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("kind", string(kind)))
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/cases/"+caseID+"/documents", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(caseID)
	return c, rec
}

func TestUploadCaseDocumentHandler(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	dealerUser := createUser(t, database, permissions.RoleDealer, dealer)

	t.Run("last required document advances the case", func(t *testing.T) {
		kase := createCase(t, database, dealerUser, dealer, casefile.CategoryVehicleDeprived)
		docs, _ := casefile.RequiredDocuments(kase.Category)
		for _, d := range docs[1:] {
			storeDocument(t, database, kase, d.Kind, "cases/"+kase.ID+"/"+string(d.Kind)+".pdf", pdfContent)
		}

		c, rec := uploadRequest(t, kase.ID, docs[0].Kind, "tutanak.pdf", pdfContent)
		asUser(c, dealerUser)
		require.NoError(t, UploadCaseDocumentHandler(c))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Document      models.CaseDocument      `json:"document"`
			Status        casefile.Status          `json:"status"`
			StatusChanged bool                     `json:"status_changed"`
			Checklist     []casefile.ChecklistItem `json:"checklist"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, casefile.StatusApplicationPending, resp.Status)
		assert.True(t, resp.StatusChanged)
		assert.Equal(t, "tutanak.pdf", resp.Document.FileOriginalName)
		for _, item := range resp.Checklist {
			assert.True(t, item.Satisfied, item.Kind)
		}
	})

	t.Run("kind outside the category", func(t *testing.T) {
		kase := createCase(t, database, dealerUser, dealer, casefile.CategoryVehicleDeprived)
		c, rec := uploadRequest(t, kase.ID, casefile.KindPartsInvoice, "fatura.pdf", pdfContent)
		asUser(c, dealerUser)
		require.NoError(t, UploadCaseDocumentHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dealer cannot upload result documents", func(t *testing.T) {
		kase := createCase(t, database, dealerUser, dealer, casefile.CategoryValueLoss)
		c, rec := uploadRequest(t, kase.ID, casefile.KindArbitrationDecision, "karar.pdf", pdfContent)
		asUser(c, dealerUser)
		require.NoError(t, UploadCaseDocumentHandler(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejected file type", func(t *testing.T) {
		kase := createCase(t, database, dealerUser, dealer, casefile.CategoryValueLoss)
		c, rec := uploadRequest(t, kase.ID, casefile.KindIBAN, "iban.exe", "MZ\x90\x00")
		asUser(c, dealerUser)
		require.NoError(t, UploadCaseDocumentHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("result document notifies the dealer", func(t *testing.T) {
		kase := createCase(t, database, dealerUser, dealer, casefile.CategoryValueLoss)
		c, rec := uploadRequest(t, kase.ID, casefile.KindArbitrationDecision, "karar.pdf", pdfContent)
		asUser(c, admin)
		require.NoError(t, UploadCaseDocumentHandler(c))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var n models.Notification
		require.NoError(t, database.Where("case_id = ? AND type = ?", kase.ID, models.NotificationTypeResultDocument).First(&n).Error)
		assert.Equal(t, dealer.ID, n.DealerID)
	})
}

func TestDocumentVisibility(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	dealerUser := createUser(t, database, permissions.RoleDealer, dealer)
	customer := createUser(t, database, permissions.RoleCustomer, dealer)

	kase := createCase(t, database, admin, dealer, casefile.CategoryValueLoss)
	require.NoError(t, database.Model(kase).Update("customer_user_id", customer.ID).Error)

	storeDocument(t, database, kase, casefile.KindIBAN, "cases/"+kase.ID+"/iban.pdf", pdfContent)
	witness := storeDocument(t, database, kase, casefile.KindWitnessReport, "cases/"+kase.ID+"/bilirkisi.pdf", pdfContent)
	insurer := storeDocument(t, database, kase, casefile.KindInsurerResponse, "cases/"+kase.ID+"/cevap.pdf", pdfContent)

	list := func(user *models.User) []models.CaseDocument {
		_, c, rec := setupEcho(http.MethodGet, "/api/cases/"+kase.ID+"/documents", nil)
		c.SetParamNames("id")
		c.SetParamValues(kase.ID)
		asUser(c, user)
		require.NoError(t, GetCaseDocumentsHandler(c))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var docs []models.CaseDocument
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
		return docs
	}

	assert.Len(t, list(admin), 3)
	assert.Len(t, list(dealerUser), 2)
	assert.Len(t, list(customer), 1)

	t.Run("hidden document downloads as not found", func(t *testing.T) {
		for _, doc := range []*models.CaseDocument{witness, insurer} {
			_, c, rec := setupEcho(http.MethodGet, "/", nil)
			c.SetParamNames("id", "docId")
			c.SetParamValues(kase.ID, doc.ID)
			asUser(c, customer)
			require.NoError(t, DownloadCaseDocumentHandler(c))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		}
	})
}

func TestDownloadCaseDocumentHandler(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	kase := createCase(t, database, admin, dealer, casefile.CategoryValueLoss)

	t.Run("legacy path is resolved", func(t *testing.T) {
		doc := storeDocument(t, database, kase, casefile.KindIBAN, "cases/"+kase.ID+"/iban.pdf", pdfContent)
		require.NoError(t, database.Model(doc).Update("file_path", "/uploads/cases/"+kase.ID+"/iban.pdf").Error)

		_, c, rec := setupEcho(http.MethodGet, "/?inline=1", nil)
		c.SetParamNames("id", "docId")
		c.SetParamValues(kase.ID, doc.ID)
		asUser(c, admin)

		require.NoError(t, DownloadCaseDocumentHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, pdfContent, rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "inline; filename*=UTF-8''")
	})

	t.Run("missing file", func(t *testing.T) {
		doc := storeDocument(t, database, kase, casefile.KindVictimLicense, "", "")
		require.NoError(t, database.Model(doc).Update("file_path", "cases/yok.pdf").Error)

		_, c, rec := setupEcho(http.MethodGet, "/", nil)
		c.SetParamNames("id", "docId")
		c.SetParamValues(kase.ID, doc.ID)
		asUser(c, admin)

		require.NoError(t, DownloadCaseDocumentHandler(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteCaseDocumentHandler(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	dealerUser := createUser(t, database, permissions.RoleDealer, dealer)
	kase := createCase(t, database, admin, dealer, casefile.CategoryVehicleDeprived)
	completeDocuments(t, database, kase)
	require.Equal(t, casefile.StatusApplicationPending, kase.Status)

	var iban models.CaseDocument
	require.NoError(t, database.Where("case_id = ? AND kind = ?", kase.ID, casefile.KindIBAN).First(&iban).Error)

	_, c, rec := setupEcho(http.MethodDelete, "/", nil)
	c.SetParamNames("id", "docId")
	c.SetParamValues(kase.ID, iban.ID)
	asUser(c, dealerUser)

	require.NoError(t, DeleteCaseDocumentHandler(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored models.Case
	require.NoError(t, database.First(&stored, "id = ?", kase.ID).Error)
	assert.Equal(t, casefile.StatusDocumentsPending, stored.Status)

	var deleted models.CaseDocument
	require.NoError(t, database.Unscoped().First(&deleted, "id = ?", iban.ID).Error)
	assert.True(t, deleted.DeletedAt.Valid)
}

func TestGetCaseChecklistHandler(t *testing.T) {
	database := setupTestDB(t)
	dealer := createDealer(t, database, "Yıldız Oto")
	admin := createUser(t, database, permissions.RoleAdmin, nil)
	kase := createCase(t, database, admin, dealer, casefile.CategoryTotalLossDiffers)
	storeDocument(t, database, kase, casefile.KindIBAN, "cases/"+kase.ID+"/iban.pdf", pdfContent)

	_, c, rec := setupEcho(http.MethodGet, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(kase.ID)
	c.Request().Header.Set("HX-Request", "true")
	asUser(c, admin)

	require.NoError(t, GetCaseChecklistHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), casefile.KindLabel(casefile.KindIBAN))
}
