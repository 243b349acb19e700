package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dermai-app/dermai-server/internal/logger"
)

// Logging logs HTTP requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, status and duration for each request.
func (m *Logging) Handle(c *fiber.Ctx) error {
	start := time.Now()

	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		}
	}

	m.logger.Info("http request completed",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start).String())

	return err
}
