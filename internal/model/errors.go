package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when the requested row does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrSessionInvalid is returned when a session token is unknown
	// or expired.
	ErrSessionInvalid = errors.New("invalid or expired session")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registering an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidAmount is returned for zero or negative amounts and
	// for unsupported transaction kinds.
	ErrInvalidAmount = errors.New("invalid amount")
)

// InsufficientFundsError reports a rejected debit. The balance is
// unchanged and no transaction row was written.
type InsufficientFundsError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient credits: have %d, need %d", e.Balance, e.Required)
}

// Missing returns how many credits the caller is short of.
func (e *InsufficientFundsError) Missing() int64 {
	return e.Required - e.Balance
}

// LedgerWriteError reports that the atomic commit of balance and log
// did not complete. Nothing was applied; the operation may be retried
// as a whole.
type LedgerWriteError struct {
	Err error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger write failed: %v", e.Err)
}

func (e *LedgerWriteError) Unwrap() error {
	return e.Err
}

// UpstreamError reports that the feature work paired with a committed
// debit failed. The debit stays committed; there is no auto-refund.
type UpstreamError struct {
	Feature string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Feature, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
