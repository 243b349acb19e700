package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionKind labels a ledger entry.
type TransactionKind string

const (
	KindAdd      TransactionKind = "add"
	KindBonus    TransactionKind = "bonus"
	KindPurchase TransactionKind = "purchase"
	KindUsage    TransactionKind = "usage"
	KindSubtract TransactionKind = "subtract"
	KindSet      TransactionKind = "set"
)

// CreditKinds are the kinds accepted by LedgerStore.Credit.
var CreditKinds = []TransactionKind{KindAdd, KindBonus, KindPurchase}

// CreditTransaction is an immutable ledger entry. Amount carries the
// signed effect on the balance: positive for credits, negative for
// debits, and new minus old for a balance set.
type CreditTransaction struct {
	ID          int64
	UserID      uuid.UUID
	Kind        TransactionKind
	Amount      int64
	Description string
	Reference   *uuid.UUID
	PackageID   *int
	CreatedAt   time.Time
}

// LedgerStore owns the (balance, log) pair of every user.
//
// Each mutation updates the stored balance and appends exactly one
// transaction row in the same atomic unit, and mutations for the same
// user serialize against each other. Operations on different users
// must not block each other. A mutation that fails leaves neither the
// balance nor the log changed.
type LedgerStore interface {
	// Debit is all-or-nothing: it fails with *InsufficientFundsError
	// when balance < amount and then writes no transaction row.
	Debit(ctx context.Context, userID uuid.UUID, amount int64, description string, reference *uuid.UUID) (newBalance int64, err error)

	// Credit unconditionally increases the balance. Kind must be one
	// of CreditKinds.
	Credit(ctx context.Context, userID uuid.UUID, amount int64, kind TransactionKind, description string, packageID *int) (newBalance int64, err error)

	// Remove decrements clamped at zero: actualRemoved = min(amount, balance).
	Remove(ctx context.Context, userID uuid.UUID, amount int64, description string) (newBalance, actualRemoved int64, err error)

	// SetBalance establishes a new baseline, logged with the signed
	// delta newValue - oldBalance.
	SetBalance(ctx context.Context, userID uuid.UUID, newValue int64, description string) (oldBalance, newBalance int64, err error)

	// Balance is a point-in-time read of the stored balance.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)

	// List returns one page of the user's transactions, newest first,
	// and the total number of rows matching the filter.
	List(ctx context.Context, userID uuid.UUID, filter HistoryFilter) ([]CreditTransaction, int64, error)

	// Stats aggregates the rows matching the filter.
	Stats(ctx context.Context, userID uuid.UUID, filter HistoryFilter) (TransactionStats, error)
}

// History page size bounds.
const (
	HistoryDefaultLimit = 20
	HistoryMinLimit     = 10
	HistoryMaxLimit     = 100
)

// HistoryFilter selects and pages transaction history. Zero values
// mean "no filter".
type HistoryFilter struct {
	Kind     TransactionKind
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

// Normalize clamps paging to the supported bounds.
func (f HistoryFilter) Normalize() HistoryFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = HistoryDefaultLimit
	}
	if f.Limit < HistoryMinLimit {
		f.Limit = HistoryMinLimit
	}
	if f.Limit > HistoryMaxLimit {
		f.Limit = HistoryMaxLimit
	}
	return f
}

// Offset returns the row offset of the selected page.
func (f HistoryFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TransactionStats aggregates a user's transaction log. Earned counts
// positive amounts, used counts the absolute value of negative ones.
type TransactionStats struct {
	TotalEarned       int64
	TotalUsed         int64
	TotalTransactions int64
}
