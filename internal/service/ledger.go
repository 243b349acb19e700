package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
)

// Administrative update operation types.
const (
	OperationAdd      = "add"
	OperationSubtract = "subtract"
	OperationSet      = "set"
)

// ErrUnknownOperation is returned for an unsupported administrative
// operation type.
var ErrUnknownOperation = errors.New("unknown operation type, expected add, subtract or set")

// Ledger exposes the atomic balance operations. Validation happens
// here; atomicity and per-user serialization are the store's contract.
type Ledger struct {
	store  model.LedgerStore
	logger *logger.Logger
}

func NewLedger(store model.LedgerStore, logger *logger.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Debit removes amount credits all-or-nothing. A debit that would
// drive the balance negative fails with *model.InsufficientFundsError
// and writes no transaction row.
func (s *Ledger) Debit(ctx context.Context, userID uuid.UUID, amount int64, description string, reference *uuid.UUID) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}

	newBalance, err := s.store.Debit(ctx, userID, amount, description, reference)
	if err != nil {
		var insufficient *model.InsufficientFundsError
		if errors.As(err, &insufficient) {
			s.logger.Info("debit rejected",
				"user_id", userID,
				"required", insufficient.Required,
				"balance", insufficient.Balance)
		}
		return 0, err
	}

	s.logger.Info("credits debited",
		"user_id", userID,
		"amount", amount,
		"new_balance", newBalance)
	return newBalance, nil
}

// Credit adds amount credits. Kind must be one of model.CreditKinds.
func (s *Ledger) Credit(ctx context.Context, userID uuid.UUID, amount int64, kind model.TransactionKind, description string, packageID *int) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}

	newBalance, err := s.store.Credit(ctx, userID, amount, kind, description, packageID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("credits added",
		"user_id", userID,
		"amount", amount,
		"kind", kind,
		"new_balance", newBalance)
	return newBalance, nil
}

// Remove decrements clamped at zero. Unlike Debit it never fails on a
// low balance; administrative corrections must not overdraw either.
func (s *Ledger) Remove(ctx context.Context, userID uuid.UUID, amount int64, description string) (newBalance, actualRemoved int64, err error) {
	if amount <= 0 {
		return 0, 0, model.ErrInvalidAmount
	}

	newBalance, actualRemoved, err = s.store.Remove(ctx, userID, amount, description)
	if err != nil {
		return 0, 0, err
	}

	s.logger.Info("credits removed",
		"user_id", userID,
		"requested", amount,
		"actual_removed", actualRemoved,
		"new_balance", newBalance)
	return newBalance, actualRemoved, nil
}

// SetBalance establishes a new non-negative baseline.
func (s *Ledger) SetBalance(ctx context.Context, userID uuid.UUID, newValue int64, description string) (oldBalance, newBalance int64, err error) {
	if newValue < 0 {
		return 0, 0, model.ErrInvalidAmount
	}

	oldBalance, newBalance, err = s.store.SetBalance(ctx, userID, newValue, description)
	if err != nil {
		return 0, 0, err
	}

	s.logger.Info("balance set",
		"user_id", userID,
		"old_balance", oldBalance,
		"new_balance", newBalance)
	return oldBalance, newBalance, nil
}

// Balance is a point-in-time read of the stored balance.
func (s *Ledger) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

// Update applies an administrative change expressed as an operation
// type. "add" credits, "subtract" removes clamped at zero, "set"
// establishes a new baseline (negative values clamp to zero, matching
// the admin surface the mobile clients already use).
func (s *Ledger) Update(ctx context.Context, userID uuid.UUID, change int64, operationType, reason string) (oldBalance, newBalance int64, err error) {
	switch operationType {
	case OperationAdd:
		newBalance, err = s.Credit(ctx, userID, change, model.KindAdd, reason, nil)
		if err != nil {
			return 0, 0, err
		}
		return newBalance - change, newBalance, nil

	case OperationSubtract:
		amount := change
		if amount < 0 {
			amount = -amount
		}
		var actualRemoved int64
		newBalance, actualRemoved, err = s.Remove(ctx, userID, amount, reason)
		if err != nil {
			return 0, 0, err
		}
		return newBalance + actualRemoved, newBalance, nil

	case OperationSet:
		return s.SetBalance(ctx, userID, max(change, 0), reason)

	default:
		return 0, 0, ErrUnknownOperation
	}
}
