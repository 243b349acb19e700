package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
	"github.com/dermai-app/dermai-server/internal/service"
)

// NewErrorHandler maps domain errors to HTTP status codes and wraps
// them in the response envelope. Insufficient funds carries the
// balance breakdown in data so clients can prompt a purchase.
func NewErrorHandler(logger *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var insufficient *model.InsufficientFundsError
		if errors.As(err, &insufficient) {
			return c.Status(fiber.StatusPaymentRequired).JSON(Response{
				Success: false,
				Message: "insufficient credits",
				Data: fiber.Map{
					"current_credits":  insufficient.Balance,
					"required_credits": insufficient.Required,
					"missing_credits":  insufficient.Missing(),
				},
			})
		}

		status := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		var ledgerErr *model.LedgerWriteError
		var upstreamErr *model.UpstreamError

		switch {
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message

		case errors.Is(err, model.ErrSessionInvalid):
			status = fiber.StatusUnauthorized
			message = model.ErrSessionInvalid.Error()

		case errors.Is(err, model.ErrInvalidCredentials):
			status = fiber.StatusUnauthorized
			message = model.ErrInvalidCredentials.Error()

		case errors.Is(err, model.ErrEmailTaken):
			status = fiber.StatusConflict
			message = model.ErrEmailTaken.Error()

		case errors.Is(err, model.ErrInvalidAmount),
			errors.Is(err, service.ErrUnknownOperation):
			status = fiber.StatusBadRequest
			message = err.Error()

		case errors.Is(err, model.ErrNotFound):
			status = fiber.StatusNotFound
			message = "not found"

		case errors.As(err, &upstreamErr):
			status = fiber.StatusBadGateway
			message = "feature temporarily unavailable"

		case errors.As(err, &ledgerErr):
			logger.Error("ledger write failed", "error", err.Error())
			status = fiber.StatusInternalServerError
			message = "operation failed, no changes were applied"

		default:
			logger.Error("unhandled error",
				"path", c.Path(),
				"error", err.Error())
		}

		return c.Status(status).JSON(Response{
			Success: false,
			Message: message,
		})
	}
}
