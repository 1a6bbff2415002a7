package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session binds a client token to a user until it expires or is revoked by logout.
type Session struct {
	SessionID uuid.UUID
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
