package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is one signed-in device. The raw token is never stored, only its digest.
type Session struct {
	ID         uuid.UUID `db:"id"`
	UserID     int64     `db:"user_id"`
	TokenHash  string    `db:"token_hash"`
	Device     string    `db:"device"`
	IssuedAt   time.Time `db:"issued_at"`
	LastUsedAt time.Time `db:"last_used_at"`
	ExpiresAt  time.Time `db:"expires_at"`
}

// IdleExpired reports whether the session has been unused for longer than ttl
func (s *Session) IdleExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastUsedAt) > ttl
}

// IssuedBefore reports whether the session predates changedAt
func (s *Session) IssuedBefore(changedAt *time.Time) bool {
	if changedAt == nil {
		return false
	}
	return s.IssuedAt.Before(*changedAt)
}
