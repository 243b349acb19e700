package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionTTL is the lifetime of an issued session.
const SessionTTL = 30 * 24 * time.Hour

// SessionStore persists issued sessions. Expiry is evaluated at read
// time: GetByToken must not return a session whose ExpiresAt has
// passed. Delete is idempotent.
type SessionStore interface {
	Create(ctx context.Context, session Session) error
	GetByToken(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpiredByUser(ctx context.Context, userID uuid.UUID) error
}

// Session is a time-bounded proof of identity issued at login or
// registration. Token is opaque, 32 random bytes hex encoded. Multiple
// sessions per user may coexist.
type Session struct {
	Token      string
	UserID     uuid.UUID
	DeviceInfo string
	IPAddress  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
