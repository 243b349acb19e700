package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dermai-app/dermai-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) error {
	const query = `
        INSERT INTO user_sessions (token, user_id, device_info, ip_address, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := r.db.Exec(ctx, query,
		session.Token, session.UserID, session.DeviceInfo, session.IPAddress,
		session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByToken resolves a live session. Expiry and account state are
// evaluated in the query, so expired sessions are inert even before a
// sweep removes them.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (model.Session, error) {
	const query = `
        SELECT s.token, s.user_id, s.device_info, s.ip_address, s.created_at, s.expires_at
        FROM user_sessions s
        JOIN users u ON u.id = s.user_id
        WHERE s.token = $1 AND s.expires_at > NOW() AND u.active
    `

	var session model.Session
	err := r.db.QueryRow(ctx, query, token).Scan(
		&session.Token, &session.UserID, &session.DeviceInfo, &session.IPAddress,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session by token: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM user_sessions WHERE token = $1`

	if _, err := r.db.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpiredByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `DELETE FROM user_sessions WHERE user_id = $1 AND expires_at < NOW()`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
