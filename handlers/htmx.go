package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"claim_flow_app_go/middleware"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/archive"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/templates/components"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// isHTMX reports whether the request was sent by htmx
func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// render writes a templ component as the response body
func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// errorMapping pairs a sentinel error with its HTTP status and user message
type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{services.ErrForbidden, http.StatusForbidden, "Bu işlem için yetkiniz yok"},
	{services.ErrCaseNotFound, http.StatusNotFound, "Dosya bulunamadı"},
	{services.ErrDocumentNotFound, http.StatusNotFound, "Evrak bulunamadı"},
	{services.ErrDocumentFileMissing, http.StatusNotFound, "Evrak dosyası depoda bulunamadı"},
	{services.ErrUserNotFound, http.StatusNotFound, "Kullanıcı bulunamadı"},
	{services.ErrDealerNotFound, http.StatusNotFound, "Bayi bulunamadı"},
	{services.ErrRoleNotFound, http.StatusNotFound, "Rol bulunamadı"},
	{archive.ErrNothingToArchive, http.StatusNotFound, "Arşivlenecek evrak bulunamadı"},
	{casefile.ErrInvalidTransition, http.StatusConflict, "Bu durum değişikliği yapılamaz"},
	{services.ErrCaseClosed, http.StatusConflict, "Kapanmış dosyada değişiklik yapılamaz"},
	{services.ErrCategoryImmutable, http.StatusConflict, "Dosya kategorisi değiştirilemez"},
	{services.ErrRoleExists, http.StatusConflict, "Bu rol zaten var"},
	{services.ErrRoleInUse, http.StatusConflict, "Rol kullanıcılara atanmış"},
	{services.ErrEmailTaken, http.StatusConflict, "Bu e-posta adresi kayıtlı"},
	{services.ErrSystemRole, http.StatusForbidden, "Sistem rolleri değiştirilemez"},
	{services.ErrReadOnlyRole, http.StatusForbidden, "Bu rolün yetkileri değiştirilemez"},
	{services.ErrRoleNotAssignable, http.StatusForbidden, "Bu rolü atayamazsınız"},
	{services.ErrResultKindForbidden, http.StatusForbidden, "Sonuç evraklarını yalnızca personel yükleyebilir"},
	{services.ErrCannotDeactivateMe, http.StatusBadRequest, "Kendi hesabınızı pasifleştiremezsiniz"},
	{services.ErrInvalidCategory, http.StatusBadRequest, "Geçersiz dosya kategorisi"},
	{services.ErrCustomerNameRequired, http.StatusBadRequest, "Müşteri adı zorunludur"},
	{services.ErrDealerRequired, http.StatusBadRequest, "Bayi seçilmelidir"},
	{services.ErrInvalidCustomer, http.StatusBadRequest, "Müşteri kullanıcısı bu bayiye ait değil"},
	{services.ErrKindNotAllowed, http.StatusBadRequest, "Bu evrak türü dosya kategorisine uygun değil"},
	{services.ErrFileTooLarge, http.StatusBadRequest, "Dosya 15MB sınırını aşıyor"},
	{services.ErrFileTypeRejected, http.StatusBadRequest, "Dosya türü desteklenmiyor (PDF, JPG, PNG, HEIC, DOC, DOCX)"},
	{services.ErrFileEmpty, http.StatusBadRequest, "Dosya boş"},
	{services.ErrInvalidPhone, http.StatusBadRequest, "Telefon numarası geçerli bir cep telefonu olmalıdır"},
	{services.ErrEmptySMS, http.StatusBadRequest, "Mesaj boş olamaz"},
	{services.ErrSMSTooLong, http.StatusBadRequest, "Mesaj çok uzun"},
	{services.ErrSMSNotConfigured, http.StatusServiceUnavailable, "SMS servisi yapılandırılmamış"},
	{services.ErrPDFBusy, http.StatusServiceUnavailable, "PDF oluşturucu meşgul, lütfen tekrar deneyin"},
	{services.ErrInvalidEmail, http.StatusBadRequest, "Geçersiz e-posta adresi"},
	{services.ErrWeakPassword, http.StatusBadRequest, "Parola en az 8 karakter olmalı ve harf içermelidir"},
	{services.ErrUnknownRole, http.StatusBadRequest, "Bilinmeyen rol"},
	{services.ErrDealerMismatch, http.StatusBadRequest, "Bayi ve müşteri kullanıcıları bir bayiye bağlı olmalıdır"},
	{services.ErrNameRequired, http.StatusBadRequest, "Ad zorunludur"},
	{services.ErrDealerNameRequired, http.StatusBadRequest, "Bayi adı zorunludur"},
	{services.ErrInvalidTaxNumber, http.StatusBadRequest, "Vergi numarası 10 veya 11 haneli olmalıdır"},
	{services.ErrInvalidRoleID, http.StatusBadRequest, "Rol kodu 2-32 küçük harf, rakam veya tire olmalıdır"},
	{services.ErrRoleLabel, http.StatusBadRequest, "Rol adı zorunludur"},
}

// respondError maps service errors to HTTP responses. HTMX requests get an
// inline alert, everything else a JSON body.
func respondError(c echo.Context, err error) error {
	status, message := http.StatusInternalServerError, "Beklenmeyen bir hata oluştu"
	matched := false
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			status, message, matched = m.status, m.message, true
			break
		}
	}
	if !matched {
		log.Printf("[ERROR] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if isHTMX(c) {
		// htmx only swaps 2xx responses by default
		c.Response().Header().Set("HX-Reswap", "innerHTML")
		return render(c, http.StatusOK, components.Alert(message))
	}
	return c.JSON(status, map[string]string{"error": message})
}

// badRequest answers a malformed request
func badRequest(c echo.Context, message string) error {
	if isHTMX(c) {
		return render(c, http.StatusOK, components.Alert(message))
	}
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

// pageParams reads page and page_size query parameters
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	return services.NormalizePage(page, pageSize)
}

// Paginated is the JSON envelope of list endpoints
type Paginated struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// scopeFor derives the case scope of the current user on page
func scopeFor(c echo.Context, page string) (services.CaseScope, error) {
	return services.ScopeFor(middleware.GetRegistry(c), middleware.GetCurrentUser(c), page)
}

// audienceFor derives the document audience of the current user
func audienceFor(c echo.Context) (casefile.Audience, error) {
	return services.AudienceFor(middleware.GetRegistry(c), middleware.GetCurrentUser(c))
}
