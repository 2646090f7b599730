package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory database that background goroutines
// of the same test can reach.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.New().String()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Dealer{},
		&models.User{},
		&models.Session{},
		&models.Case{},
		&models.CaseDocument{},
		&models.AuditLog{},
		&models.Notification{},
		&models.SmsMessage{},
		&models.RoleRecord{},
		&models.RolePermissionRecord{},
	))
	return db
}

func createTestDealer(t *testing.T, db *gorm.DB, name string) *models.Dealer {
	t.Helper()
	dealer := &models.Dealer{Name: name, IsActive: true}
	require.NoError(t, db.Create(dealer).Error)
	return dealer
}

func createTestUser(t *testing.T, db *gorm.DB, role string, dealer *models.Dealer) *models.User {
	t.Helper()
	hash, err := HashPassword("Parola123!")
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
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCase(t *testing.T, db *gorm.DB, actor *models.User, dealer *models.Dealer, category casefile.Category) *models.Case {
	t.Helper()
	c, err := CreateCase(db, actor, CreateCaseInput{
		DealerID:      dealer.ID,
		Category:      category,
		CustomerName:  "Mehmet Demir",
		CustomerPhone: "0532 111 22 33",
		PlateNumber:   "34 abc 123",
	})
	require.NoError(t, err)
	return c
}

// addTestDocument inserts a document row without touching storage
func addTestDocument(t *testing.T, db *gorm.DB, c *models.Case, kind casefile.Kind, path string) *models.CaseDocument {
	t.Helper()
	doc := &models.CaseDocument{
		DealerID:         c.DealerID,
		CaseID:           c.ID,
		Kind:             kind,
		FileName:         path,
		FileOriginalName: string(kind) + ".pdf",
		FilePath:         path,
	}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

// uploadAllRequired attaches one document per required kind of c
func uploadAllRequired(t *testing.T, db *gorm.DB, c *models.Case) {
	t.Helper()
	docs, ok := casefile.RequiredDocuments(c.Category)
	require.True(t, ok)
	for _, d := range docs {
		addTestDocument(t, db, c, d.Kind, "cases/"+c.ID+"/"+string(d.Kind)+".pdf")
	}
	_, err := RecomputeCaseStatus(db, c)
	require.NoError(t, err)
}

func testRegistry() *permissions.Registry {
	return permissions.Default()
}

// memStorage is an in-memory StorageProvider
type memStorage struct {
	files map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{files: map[string]string{}}
}

func (m *memStorage) Name() string { return "memory" }

func (m *memStorage) Put(ctx context.Context, key string, r io.Reader, contentType string, size int64) (*StoredObject, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.files[key] = string(b)
	parts := strings.Split(key, "/")
	return &StoredObject{Key: key, FileName: parts[len(parts)-1], Size: int64(len(b)), ContentType: contentType}, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	delete(m.files, key)
	return nil
}

func (m *memStorage) Exists(ctx context.Context, key string) bool {
	_, ok := m.files[key]
	return ok
}

func (m *memStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	content, ok := m.files[key]
	if !ok {
		return nil, ErrDocumentFileMissing
	}
	return io.NopCloser(strings.NewReader(content)), nil
}
