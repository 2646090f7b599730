package db

import (
	"path/filepath"
	"testing"

	"claim_flow_app_go/config"
	"claim_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTursoDSN(t *testing.T) {
	assert.Equal(t, "libsql://app.turso.io", tursoDSN("libsql://app.turso.io", ""))
	assert.Equal(t, "libsql://app.turso.io?authToken=abc", tursoDSN("libsql://app.turso.io", "abc"))
	assert.Equal(t, "libsql://app.turso.io?authToken=abc&tls=1", tursoDSN("libsql://app.turso.io?tls=1", "abc"))
}

func TestAutoMigrateRequiresConnection(t *testing.T) {
	DB = nil
	assert.ErrorIs(t, AutoMigrate(), ErrNotInitialized)
	assert.ErrorIs(t, Migrate(), ErrNotInitialized)
	assert.NoError(t, Close())
}

func TestInitializeLocalFile(t *testing.T) {
	cfg := &config.Config{Environment: "test", DBPath: filepath.Join(t.TempDir(), "hasar.db")}
	require.NoError(t, Initialize(cfg))
	t.Cleanup(func() {
		Close()
		DB = nil
	})

	require.NoError(t, Migrate())
	for _, m := range Models() {
		assert.True(t, DB.Migrator().HasTable(m))
	}

	require.NoError(t, DB.Create(&models.Dealer{Name: "Oto Ekspres"}).Error)
	var mode string
	require.NoError(t, DB.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
}
