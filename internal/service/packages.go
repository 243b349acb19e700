package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
)

// PurchaseResult reports a completed package purchase.
type PurchaseResult struct {
	Package         model.CreditPackage
	PreviousCredits int64
	NewCredits      int64
	AddedCredits    int64
}

// Packages serves the static credit package catalog and turns a
// purchase into a ledger credit. There is no payment gateway behind
// it.
type Packages struct {
	ledger  *Ledger
	catalog []model.CreditPackage
	logger  *logger.Logger
}

func NewPackages(ledger *Ledger, logger *logger.Logger) *Packages {
	return &Packages{
		ledger:  ledger,
		catalog: defaultCatalog(),
		logger:  logger,
	}
}

// List returns the catalog in display order.
func (s *Packages) List() []model.CreditPackage {
	return append([]model.CreditPackage(nil), s.catalog...)
}

// Get returns the package with the given id or model.ErrNotFound.
func (s *Packages) Get(id int) (model.CreditPackage, error) {
	for _, pkg := range s.catalog {
		if pkg.ID == id {
			return pkg, nil
		}
	}
	return model.CreditPackage{}, fmt.Errorf("package %d: %w", id, model.ErrNotFound)
}

// Purchase credits the package's credits to the user and records a
// purchase transaction carrying the package id.
func (s *Packages) Purchase(ctx context.Context, userID uuid.UUID, packageID int) (PurchaseResult, error) {
	pkg, err := s.Get(packageID)
	if err != nil {
		return PurchaseResult{}, err
	}

	packageRef := pkg.ID
	newBalance, err := s.ledger.Credit(ctx, userID, pkg.Credits, model.KindPurchase, pkg.Name+" purchased", &packageRef)
	if err != nil {
		return PurchaseResult{}, err
	}

	s.logger.Info("package purchased",
		"user_id", userID,
		"package_id", pkg.ID,
		"credits", pkg.Credits)

	return PurchaseResult{
		Package:         pkg,
		PreviousCredits: newBalance - pkg.Credits,
		NewCredits:      newBalance,
		AddedCredits:    pkg.Credits,
	}, nil
}

// Prices are minor units (kuruş).
func defaultCatalog() []model.CreditPackage {
	return []model.CreditPackage{
		{ID: 1, Name: "Starter Package", Credits: 10, Price: 999, Currency: "TRY", Description: "10 credits for basic analyses"},
		{ID: 2, Name: "Standard Package", Credits: 25, Price: 1999, Currency: "TRY", Description: "25 credits for detailed analyses", Popular: true, Savings: 15},
		{ID: 3, Name: "Premium Package", Credits: 50, Price: 3499, Currency: "TRY", Description: "50 credits for professional analyses", Savings: 30},
		{ID: 4, Name: "Super Package", Credits: 100, Price: 5999, Currency: "TRY", Description: "100 credits for unlimited analyses", Savings: 40},
	}
}
