// Package mocks provides testify mocks for the model store
// interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dermai-app/dermai-server/internal/model"
)

// UserStore is a mock of model.UserStore.
type UserStore struct {
	mock.Mock
}

var _ model.UserStore = (*UserStore)(nil)

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

// SessionStore is a mock of model.SessionStore.
type SessionStore struct {
	mock.Mock
}

var _ model.SessionStore = (*SessionStore)(nil)

func (m *SessionStore) Create(ctx context.Context, session model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *SessionStore) GetByToken(ctx context.Context, token string) (model.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Session), args.Error(1)
}

func (m *SessionStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *SessionStore) DeleteExpiredByUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// LedgerStore is a mock of model.LedgerStore.
type LedgerStore struct {
	mock.Mock
}

var _ model.LedgerStore = (*LedgerStore)(nil)

func (m *LedgerStore) Debit(ctx context.Context, userID uuid.UUID, amount int64, description string, reference *uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, amount, description, reference)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerStore) Credit(ctx context.Context, userID uuid.UUID, amount int64, kind model.TransactionKind, description string, packageID *int) (int64, error) {
	args := m.Called(ctx, userID, amount, kind, description, packageID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerStore) Remove(ctx context.Context, userID uuid.UUID, amount int64, description string) (int64, int64, error) {
	args := m.Called(ctx, userID, amount, description)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *LedgerStore) SetBalance(ctx context.Context, userID uuid.UUID, newValue int64, description string) (int64, int64, error) {
	args := m.Called(ctx, userID, newValue, description)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *LedgerStore) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerStore) List(ctx context.Context, userID uuid.UUID, filter model.HistoryFilter) ([]model.CreditTransaction, int64, error) {
	args := m.Called(ctx, userID, filter)
	var transactions []model.CreditTransaction
	if args.Get(0) != nil {
		transactions = args.Get(0).([]model.CreditTransaction)
	}
	return transactions, args.Get(1).(int64), args.Error(2)
}

func (m *LedgerStore) Stats(ctx context.Context, userID uuid.UUID, filter model.HistoryFilter) (model.TransactionStats, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(model.TransactionStats), args.Error(1)
}
