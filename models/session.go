package models

import "time"

// Session is a login. Only the SHA-256 of the cookie token is stored; Token
// carries the raw value back to the caller that created the session.
type Session struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	UserID    string  `gorm:"type:uuid;not null;index" json:"user_id"`
	DealerID  *string `gorm:"type:uuid;index" json:"dealer_id"`
	TokenHash string  `gorm:"uniqueIndex;not null;size:64" json:"-"`
	Token     string  `gorm:"-" json:"-"`

	IPAddress string `gorm:"size:45" json:"ip_address"`
	UserAgent string `gorm:"type:text" json:"user_agent"`

	User   User    `gorm:"foreignKey:UserID" json:"-"`
	Dealer *Dealer `gorm:"foreignKey:DealerID" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}

// ExpiredAt reports whether the session is no longer valid at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
