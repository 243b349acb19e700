package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/logger"
)

// HeaderSessionID is the request header carrying the session token.
const HeaderSessionID = "X-Session-ID"

// Locals keys set by the session middleware.
const (
	LocalUserID       = "user_id"
	LocalSessionToken = "session_token"
)

// SessionResolver maps a session token to the owning user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// Session validates the X-Session-ID header and injects the user ID
// into request locals.
type Session struct {
	resolver SessionResolver
	logger   *logger.Logger
}

// NewSession creates a new Session middleware instance.
func NewSession(resolver SessionResolver, logger *logger.Logger) *Session {
	return &Session{resolver: resolver, logger: logger}
}

// Handle resolves the session token. Unknown and expired tokens fail
// the same way so a client cannot distinguish them.
func (m *Session) Handle(c *fiber.Ctx) error {
	token := c.Get(HeaderSessionID)

	userID, err := m.resolver.Resolve(c.UserContext(), token)
	if err != nil {
		m.logger.Debug("session rejected",
			"path", c.Path(),
			"ip", c.IP())
		return err
	}

	c.Locals(LocalUserID, userID)
	c.Locals(LocalSessionToken, token)
	return c.Next()
}

// UserID returns the user ID injected by the session middleware.
func UserID(c *fiber.Ctx) uuid.UUID {
	userID, _ := c.Locals(LocalUserID).(uuid.UUID)
	return userID
}

// SessionToken returns the raw token injected by the session
// middleware.
func SessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalSessionToken).(string)
	return token
}
