package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
)

// Session issues, resolves and revokes opaque session tokens.
type Session struct {
	store  model.SessionStore
	logger *logger.Logger
}

func NewSession(store model.SessionStore, logger *logger.Logger) *Session {
	return &Session{store: store, logger: logger}
}

// Create issues a new session with a 30-day TTL. The token carries 256
// bits of entropy and is stored server-side, so it can be revoked.
func (s *Session) Create(ctx context.Context, userID uuid.UUID, deviceInfo, ipAddress string) (model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := model.Session{
		Token:      token,
		UserID:     userID,
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
		CreatedAt:  now,
		ExpiresAt:  now.Add(model.SessionTTL),
	}

	if err := s.store.Create(ctx, session); err != nil {
		return model.Session{}, fmt.Errorf("failed to persist session: %w", err)
	}

	return session, nil
}

// Resolve maps a token to the owning user. It does not renew the TTL.
func (s *Session) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, model.ErrSessionInvalid
	}

	session, err := s.store.GetByToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return uuid.Nil, model.ErrSessionInvalid
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get session by token: %w", err)
	}

	return session.UserID, nil
}

// Revoke deletes the session. Revoking an unknown token is not an
// error.
func (s *Session) Revoke(ctx context.Context, token string) error {
	if err := s.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// SweepExpired deletes the user's expired sessions. Best-effort
// hygiene: expiry is already enforced at resolve time.
func (s *Session) SweepExpired(ctx context.Context, userID uuid.UUID) {
	if err := s.store.DeleteExpiredByUser(ctx, userID); err != nil {
		s.logger.Warn("failed to sweep expired sessions",
			"user_id", userID,
			"error", err.Error())
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
