package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/api/http/middleware"
	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
	"github.com/dermai-app/dermai-server/internal/service"
)

// PackagesService defines catalog and purchase operations.
type PackagesService interface {
	List() []model.CreditPackage
	Purchase(ctx context.Context, userID uuid.UUID, packageID int) (service.PurchaseResult, error)
}

// Packages handles HTTP endpoints for the credit package catalog.
type Packages struct {
	packagesService PackagesService
	logger          *logger.Logger
}

// NewPackages creates a new Packages handler.
func NewPackages(packagesService PackagesService, logger *logger.Logger) *Packages {
	return &Packages{packagesService: packagesService, logger: logger}
}

// List returns the static catalog. It needs neither session nor API
// key so store listings can link to it.
func (h *Packages) List(c *fiber.Ctx) error {
	catalog := h.packagesService.List()

	packages := make([]packageJSON, 0, len(catalog))
	for _, pkg := range catalog {
		packages = append(packages, marshalPackage(pkg))
	}

	return ok(c, "packages retrieved", fiber.Map{
		"packages": packages,
	})
}

type purchaseRequest struct {
	PackageID int `json:"package_id"`
}

// Purchase credits the package's credits to the current user.
func (h *Packages) Purchase(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.packagesService.Purchase(c.UserContext(), middleware.UserID(c), req.PackageID)
	if err != nil {
		return err
	}

	return ok(c, "purchase successful", fiber.Map{
		"package":          marshalPackage(result.Package),
		"previous_credits": result.PreviousCredits,
		"added_credits":    result.AddedCredits,
		"new_credits":      result.NewCredits,
	})
}
