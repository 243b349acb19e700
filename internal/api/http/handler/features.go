package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/api/http/middleware"
	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/service"
)

// MeterService defines the metered feature operations.
type MeterService interface {
	SendChatMessage(ctx context.Context, userID uuid.UUID, message string) (service.ChatResult, error)
	AnalyzeSkinImage(ctx context.Context, userID uuid.UUID, imageRef string) (service.AnalysisResult, error)
}

// Features handles HTTP endpoints for credit-metered AI features.
type Features struct {
	meterService MeterService
	logger       *logger.Logger
}

// NewFeatures creates a new Features handler.
func NewFeatures(meterService MeterService, logger *logger.Logger) *Features {
	return &Features{meterService: meterService, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

// ChatMessage charges one chat message and returns the generated reply.
func (h *Features) ChatMessage(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	result, err := h.meterService.SendChatMessage(c.UserContext(), middleware.UserID(c), req.Message)
	if err != nil {
		return err
	}

	return ok(c, "message processed", fiber.Map{
		"reply":             result.Reply,
		"credits_used":      result.CreditsUsed,
		"remaining_credits": result.RemainingCredits,
		"reference":         result.Reference,
	})
}

type analysisRequest struct {
	ImageRef string `json:"image_ref"`
}

// Analysis charges one skin analysis and returns the result.
func (h *Features) Analysis(c *fiber.Ctx) error {
	var req analysisRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.ImageRef == "" {
		return fiber.NewError(fiber.StatusBadRequest, "image_ref is required")
	}

	result, err := h.meterService.AnalyzeSkinImage(c.UserContext(), middleware.UserID(c), req.ImageRef)
	if err != nil {
		return err
	}

	return ok(c, "analysis completed", fiber.Map{
		"result":            result.Result,
		"credits_used":      result.CreditsUsed,
		"remaining_credits": result.RemainingCredits,
		"reference":         result.Reference,
	})
}
