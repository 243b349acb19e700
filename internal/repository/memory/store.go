// Package memory provides an in-memory implementation of the model
// store interfaces. It enforces the same per-user serialization
// contract as the Postgres repositories and backs unit tests.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/model"
)

// Store keeps all state in process. Each user's (balance, log) pair is
// guarded by its own mutex, so ledger mutations for one user serialize
// while different users never block each other. The Users, Sessions
// and Ledger views implement the model store interfaces over the
// shared state, like the Postgres repositories share one Connection.
type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*account
	byEmail  map[string]uuid.UUID
	sessions map[string]model.Session

	lastTxID atomic.Int64

	// Now is the clock used for transaction timestamps and session
	// expiry checks. Tests may replace it.
	Now func() time.Time
}

type account struct {
	mu   sync.Mutex
	user model.User
	log  []model.CreditTransaction
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]*account),
		byEmail:  make(map[string]uuid.UUID),
		sessions: make(map[string]model.Session),
		Now:      time.Now,
	}
}

func (s *Store) Users() *UserStore       { return &UserStore{s} }
func (s *Store) Sessions() *SessionStore { return &SessionStore{s} }
func (s *Store) Ledger() *LedgerStore    { return &LedgerStore{s} }

func (s *Store) account(id uuid.UUID) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return acc, nil
}

// apply mutates balance and log together; callers hold acc.mu.
func (s *Store) apply(acc *account, newBalance int64, entry model.CreditTransaction) {
	entry.ID = s.lastTxID.Add(1)
	entry.CreatedAt = s.Now()
	acc.user.Credits = newBalance
	acc.log = append(acc.log, entry)
}

var _ model.UserStore = (*UserStore)(nil)

type UserStore struct {
	s *Store
}

func (r *UserStore) Create(_ context.Context, user model.User) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.byEmail[user.Email]; ok {
		return model.User{}, model.ErrEmailTaken
	}
	r.s.accounts[user.ID] = &account{user: user}
	r.s.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *UserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	acc, err := r.s.account(id)
	if err != nil {
		return model.User{}, err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.user, nil
}

func (r *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	r.s.mu.RLock()
	id, ok := r.s.byEmail[email]
	r.s.mu.RUnlock()
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

var _ model.SessionStore = (*SessionStore)(nil)

type SessionStore struct {
	s *Store
}

func (r *SessionStore) Create(_ context.Context, session model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.Token] = session
	return nil
}

// GetByToken evaluates expiry and account state at read time, so
// expired sessions are inert even before a sweep removes them.
func (r *SessionStore) GetByToken(ctx context.Context, token string) (model.Session, error) {
	r.s.mu.RLock()
	session, ok := r.s.sessions[token]
	r.s.mu.RUnlock()
	if !ok || !session.ExpiresAt.After(r.s.Now()) {
		return model.Session{}, model.ErrNotFound
	}

	user, err := r.s.Users().GetByID(ctx, session.UserID)
	if err != nil || !user.Active {
		return model.Session{}, model.ErrNotFound
	}
	return session, nil
}

func (r *SessionStore) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, token)
	return nil
}

func (r *SessionStore) DeleteExpiredByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for token, session := range r.s.sessions {
		if session.UserID == userID && !session.ExpiresAt.After(r.s.Now()) {
			delete(r.s.sessions, token)
		}
	}
	return nil
}

var _ model.LedgerStore = (*LedgerStore)(nil)

type LedgerStore struct {
	s *Store
}

func (r *LedgerStore) Debit(_ context.Context, userID uuid.UUID, amount int64, description string, reference *uuid.UUID) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	acc, err := r.s.account(userID)
	if err != nil {
		return 0, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	if acc.user.Credits < amount {
		return 0, &model.InsufficientFundsError{Balance: acc.user.Credits, Required: amount}
	}
	r.s.apply(acc, acc.user.Credits-amount, model.CreditTransaction{
		UserID:      userID,
		Kind:        model.KindUsage,
		Amount:      -amount,
		Description: description,
		Reference:   reference,
	})
	return acc.user.Credits, nil
}

func (r *LedgerStore) Credit(_ context.Context, userID uuid.UUID, amount int64, kind model.TransactionKind, description string, packageID *int) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	acc, err := r.s.account(userID)
	if err != nil {
		return 0, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	r.s.apply(acc, acc.user.Credits+amount, model.CreditTransaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		PackageID:   packageID,
	})
	return acc.user.Credits, nil
}

func (r *LedgerStore) Remove(_ context.Context, userID uuid.UUID, amount int64, description string) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, model.ErrInvalidAmount
	}
	acc, err := r.s.account(userID)
	if err != nil {
		return 0, 0, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	actualRemoved := min(amount, acc.user.Credits)
	r.s.apply(acc, acc.user.Credits-actualRemoved, model.CreditTransaction{
		UserID:      userID,
		Kind:        model.KindSubtract,
		Amount:      -actualRemoved,
		Description: description,
	})
	return acc.user.Credits, actualRemoved, nil
}

func (r *LedgerStore) SetBalance(_ context.Context, userID uuid.UUID, newValue int64, description string) (int64, int64, error) {
	if newValue < 0 {
		return 0, 0, model.ErrInvalidAmount
	}
	acc, err := r.s.account(userID)
	if err != nil {
		return 0, 0, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	oldBalance := acc.user.Credits
	r.s.apply(acc, newValue, model.CreditTransaction{
		UserID:      userID,
		Kind:        model.KindSet,
		Amount:      newValue - oldBalance,
		Description: description,
	})
	return oldBalance, newValue, nil
}

func (r *LedgerStore) Balance(_ context.Context, userID uuid.UUID) (int64, error) {
	acc, err := r.s.account(userID)
	if err != nil {
		return 0, err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.user.Credits, nil
}

func (r *LedgerStore) List(_ context.Context, userID uuid.UUID, filter model.HistoryFilter) ([]model.CreditTransaction, int64, error) {
	acc, err := r.s.account(userID)
	if err != nil {
		return nil, 0, err
	}
	filter = filter.Normalize()

	acc.mu.Lock()
	defer acc.mu.Unlock()

	// The log is append-only, so walking it backwards yields newest
	// first.
	var matched []model.CreditTransaction
	for i := len(acc.log) - 1; i >= 0; i-- {
		if matches(acc.log[i], filter) {
			matched = append(matched, acc.log[i])
		}
	}

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := min(start+filter.Limit, len(matched))
	return append([]model.CreditTransaction(nil), matched[start:end]...), total, nil
}

func (r *LedgerStore) Stats(_ context.Context, userID uuid.UUID, filter model.HistoryFilter) (model.TransactionStats, error) {
	acc, err := r.s.account(userID)
	if err != nil {
		return model.TransactionStats{}, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	var stats model.TransactionStats
	for _, t := range acc.log {
		if !matches(t, filter) {
			continue
		}
		stats.TotalTransactions++
		if t.Amount > 0 {
			stats.TotalEarned += t.Amount
		} else {
			stats.TotalUsed += -t.Amount
		}
	}
	return stats, nil
}

func matches(t model.CreditTransaction, filter model.HistoryFilter) bool {
	if filter.Kind != "" && t.Kind != filter.Kind {
		return false
	}
	if filter.DateFrom != nil && t.CreatedAt.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && t.CreatedAt.After(*filter.DateTo) {
		return false
	}
	return true
}
