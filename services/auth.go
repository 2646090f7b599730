package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"claim_flow_app_go/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// GenerateSessionToken returns a random hex token for the session cookie
func GenerateSessionToken() (string, error) {
	raw := make([]byte, SessionTokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// HashSessionToken is the lookup key stored for a cookie token.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

var (
	dummyHash     string
	dummyHashOnce sync.Once
)

// timingHash is a real bcrypt hash compared against for unknown emails
func timingHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = HashPassword("dummy_password_for_timing_mitigation")
	})
	return dummyHash
}

// Authenticate looks up an active user by email and checks the password
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	err := db.Preload("Dealer").Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// keep timing close to the wrong-password path
			VerifyPassword(timingHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || (user.Dealer != nil && !user.Dealer.IsActive) {
		return nil, ErrUserInactive
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		log.Printf("[WARNING] Failed to update last login for %s: %v", user.ID, err)
	}
	return &user, nil
}

// CreateSession opens a session for userID. The returned session carries the
// raw token in Token; only its hash is persisted.
func CreateSession(db *gorm.DB, userID, dealerID string, ipAddress, userAgent string) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		DealerID:  ptrIfNotEmpty(dealerID),
		TokenHash: HashSessionToken(token),
		Token:     token,
		ExpiresAt: time.Now().Add(DefaultSessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession resolves a cookie token. Expired sessions and sessions of
// deactivated users or dealers are removed on sight.
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	err := db.Preload("User.Dealer").Preload("Dealer").
		Where("token_hash = ?", HashSessionToken(token)).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	var reason error
	switch {
	case session.ExpiredAt(time.Now()):
		reason = ErrSessionExpired
	case !session.User.IsActive, session.User.Dealer != nil && !session.User.Dealer.IsActive:
		reason = ErrUserInactive
	}
	if reason != nil {
		if err := db.Delete(&session).Error; err != nil {
			log.Printf("[WARNING] Failed to drop session %s: %v", session.ID, err)
		}
		return nil, reason
	}
	return &session, nil
}

// DeleteSession ends the session behind a cookie token.
func DeleteSession(db *gorm.DB, token string) error {
	if err := db.Where("token_hash = ?", HashSessionToken(token)).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions purges expired sessions and reports how many went.
func CleanupExpiredSessions(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteAllUserSessions signs a user out everywhere.
func DeleteAllUserSessions(db *gorm.DB, userID string) error {
	result := db.Where("user_id = ?", userID).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[AUTH] Revoked %d sessions of user %s", result.RowsAffected, userID)
	}
	return nil
}
