// Package db owns the process-wide GORM handle.
package db

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"claim_flow_app_go/config"
	"claim_flow_app_go/models"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

var ErrNotInitialized = errors.New("database not initialized")

// Models lists every table of the application in migration order.
func Models() []interface{} {
	return []interface{}{
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
	}
}

// Open connects without touching the package handle. A Turso URL selects
// the remote libSQL driver, anything else is a local SQLite file in WAL mode.
func Open(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Info
	if cfg.IsProduction() {
		level = logger.Warn
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var dialector gorm.Dialector
	if cfg.TursoDatabaseURL != "" {
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			DSN:        tursoDSN(cfg.TursoDatabaseURL, cfg.TursoAuthToken),
		})
	} else {
		dialector = sqlite.Open(localDSN(cfg.DBPath))
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	return conn, nil
}

// Initialize opens the database and installs it as DB.
func Initialize(cfg *config.Config) error {
	conn, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = conn
	if cfg.TursoDatabaseURL != "" {
		log.Println("Database connection established (libsql)")
	} else {
		log.Printf("Database connection established (%s, WAL)", cfg.DBPath)
	}
	return nil
}

func localDSN(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func tursoDSN(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Migrate brings every application table up to date.
func Migrate() error {
	return AutoMigrate(Models()...)
}

// AutoMigrate migrates only the given models.
func AutoMigrate(dst ...interface{}) error {
	if DB == nil {
		return ErrNotInitialized
	}
	if err := DB.AutoMigrate(dst...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Printf("Database migrations completed (%d tables)", len(dst))
	return nil
}

// Close releases the connection pool.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
