package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
//
// User.Credits is owned by the ledger: nothing outside LedgerStore may
// change it.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents an account holding a prepaid credit balance.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Credits      int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
