package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"claim_flow_app_go/config"
	"claim_flow_app_go/db"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/casefile"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	timeout = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:   "test",
		AppURL:        "http://localhost:8080",
		EmailTestMode: true,
		SMSTestMode:   true,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique shared memory name isolates tests while async writers reach the same database
	testDB, err := gorm.Open(sqlite.Open("file:mem_"+uuid.New().String()+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(db.Models()...))

	// Set global DB and storage
	db.DB = testDB
	services.Storage = services.NewLocalStorage(t.TempDir())

	cfg := testConfig()
	roles := services.NewRoleService(testDB)
	require.NoError(t, roles.Load())
	InitServices(cfg, roles, services.NewSMSService(testDB, cfg))

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", testConfig())

	return e, c, rec
}

// asUser puts user, its dealer and the live permission table on c
func asUser(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
	if user.Dealer != nil {
		c.Set(middleware.ContextKeyDealer, user.Dealer)
	}
	c.Set(middleware.ContextKeyRegistry, roleService.Registry())
	c.Set(middleware.ContextKeyAuditContext, services.AuditContextFor(user, "127.0.0.1", "test"))
}

func createDealer(t *testing.T, database *gorm.DB, name string) *models.Dealer {
	t.Helper()
	dealer := &models.Dealer{Name: name, IsActive: true}
	require.NoError(t, database.Create(dealer).Error)
	return dealer
}

func createUser(t *testing.T, database *gorm.DB, role string, dealer *models.Dealer) *models.User {
	t.Helper()
	hash, err := services.HashPassword("Parola123!")
	require.NoError(t, err)
	user := &models.User{
		Name:     "Test " + role,
		Email:    role + "-" + uuid.New().String()[:8] + "@example.com",
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	if dealer != nil {
		user.DealerID = &dealer.ID
		user.Dealer = dealer
	}
	require.NoError(t, database.Create(user).Error)
	return user
}

func createCase(t *testing.T, database *gorm.DB, actor *models.User, dealer *models.Dealer, category casefile.Category) *models.Case {
	t.Helper()
	c, err := services.CreateCase(database, actor, services.CreateCaseInput{
		DealerID:     dealer.ID,
		Category:     category,
		CustomerName: "Mehmet Demir",
		PlateNumber:  "34 abc 123",
	})
	require.NoError(t, err)
	return c
}

// storeDocument writes content to storage under key and attaches it to c
func storeDocument(t *testing.T, database *gorm.DB, c *models.Case, kind casefile.Kind, key, content string) *models.CaseDocument {
	t.Helper()
	if key != "" {
		_, err := services.Storage.Put(context.Background(), key, strings.NewReader(content), "application/pdf", int64(len(content)))
		require.NoError(t, err)
	}
	doc := &models.CaseDocument{
		DealerID:         c.DealerID,
		CaseID:           c.ID,
		Kind:             kind,
		FileName:         key,
		FileOriginalName: string(kind) + ".pdf",
		FilePath:         key,
		FileSize:         int64(len(content)),
	}
	require.NoError(t, database.Create(doc).Error)
	return doc
}

func stringToPtr(s string) *string {
	return &s
}
