package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionDuration is how long a session remains valid
const SessionDuration = 7 * 24 * time.Hour

// Session is an opaque-token login session
type Session struct {
	ID        string    `gorm:"primarykey" json:"id"` // opaque random token
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Session model
func (Session) TableName() string {
	return "sessions"
}

// IsExpired reports whether the session is past its expiry
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// BeforeCreate sets the expiry if the caller did not
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().Add(SessionDuration)
	}
	return nil
}
