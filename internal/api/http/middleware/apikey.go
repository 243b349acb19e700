package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dermai-app/dermai-server/internal/logger"
)

// APIKey validates the fixed client credential carried in the
// Authorization header. It scopes API exposure and is independent from
// per-user sessions.
type APIKey struct {
	key    []byte
	logger *logger.Logger
}

// NewAPIKey creates a new APIKey middleware instance.
func NewAPIKey(key string, logger *logger.Logger) *APIKey {
	return &APIKey{key: []byte(key), logger: logger}
}

// Handle rejects requests without a matching bearer key.
func (m *APIKey) Handle(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")

	if token == "" || subtle.ConstantTimeCompare([]byte(token), m.key) != 1 {
		m.logger.Debug("api key rejected",
			"path", c.Path(),
			"ip", c.IP())
		return fiber.NewError(fiber.StatusUnauthorized, "invalid API key")
	}

	return c.Next()
}
