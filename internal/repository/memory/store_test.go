package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermai-app/dermai-server/internal/model"
)

func newTestUser(t *testing.T, s *Store, credits int64) model.User {
	t.Helper()

	user := model.User{
		ID:     uuid.New(),
		Email:  uuid.NewString() + "@example.com",
		Active: true,
	}
	user, err := s.Users().Create(context.Background(), user)
	require.NoError(t, err)

	if credits > 0 {
		_, err = s.Ledger().Credit(context.Background(), user.ID, credits, model.KindBonus, "signup bonus", nil)
		require.NoError(t, err)
	}
	return user
}

func TestUserStore_Create_DuplicateEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	user := newTestUser(t, s, 0)

	_, err := s.Users().Create(ctx, model.User{ID: uuid.New(), Email: user.Email})
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestLedgerStore_Debit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 10)

	newBalance, err := s.Ledger().Debit(ctx, user.ID, 3, "chat message", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), newBalance)

	transactions, total, err := s.Ledger().List(ctx, user.ID, model.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, model.KindUsage, transactions[0].Kind)
	assert.Equal(t, int64(-3), transactions[0].Amount)
}

func TestLedgerStore_Debit_InsufficientFunds(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 1)

	_, err := s.Ledger().Debit(ctx, user.ID, 2, "skin analysis", nil)

	var insufficient *model.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, int64(1), insufficient.Balance)
	assert.Equal(t, int64(2), insufficient.Required)
	assert.Equal(t, int64(1), insufficient.Missing())

	// The rejected debit writes no transaction row.
	_, total, err := s.Ledger().List(ctx, user.ID, model.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	balance, err := s.Ledger().Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), balance)
}

func TestLedgerStore_Debit_UnknownUser(t *testing.T) {
	s := NewStore()

	_, err := s.Ledger().Debit(context.Background(), uuid.New(), 1, "chat message", nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestLedgerStore_Remove_ClampsAtZero(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 5)

	newBalance, actualRemoved, err := s.Ledger().Remove(ctx, user.ID, 10, "correction")
	require.NoError(t, err)
	assert.Equal(t, int64(0), newBalance)
	assert.Equal(t, int64(5), actualRemoved)

	transactions, _, err := s.Ledger().List(ctx, user.ID, model.HistoryFilter{Kind: model.KindSubtract})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, int64(-5), transactions[0].Amount)
}

func TestLedgerStore_SetBalance_LogsDelta(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 12)

	oldBalance, newBalance, err := s.Ledger().SetBalance(ctx, user.ID, 50, "support adjustment")
	require.NoError(t, err)
	assert.Equal(t, int64(12), oldBalance)
	assert.Equal(t, int64(50), newBalance)

	transactions, _, err := s.Ledger().List(ctx, user.ID, model.HistoryFilter{Kind: model.KindSet})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, int64(38), transactions[0].Amount)

	stats, err := s.Ledger().Stats(ctx, user.ID, model.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(50), stats.TotalEarned)
}

func TestLedgerStore_List_Paging(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 0)

	for i := 0; i < 25; i++ {
		_, err := s.Ledger().Credit(ctx, user.ID, 1, model.KindAdd, "topup", nil)
		require.NoError(t, err)
	}

	page1, total, err := s.Ledger().List(ctx, user.ID, model.HistoryFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, page1, 10)

	page3, _, err := s.Ledger().List(ctx, user.ID, model.HistoryFilter{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page3, 5)

	// Newest first: the first page starts with the last written row.
	assert.Greater(t, page1[0].ID, page1[9].ID)
}

func TestLedgerStore_List_KindFilter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 10)

	_, err := s.Ledger().Debit(ctx, user.ID, 2, "skin analysis", nil)
	require.NoError(t, err)

	usage, total, err := s.Ledger().List(ctx, user.ID, model.HistoryFilter{Kind: model.KindUsage})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, usage, 1)
	assert.Equal(t, model.KindUsage, usage[0].Kind)
}

func TestSessionStore_GetByToken_Expiry(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 0)

	now := time.Now()
	s.Now = func() time.Time { return now }

	session := model.Session{
		Token:     "token-1",
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, s.Sessions().Create(ctx, session))

	got, err := s.Sessions().GetByToken(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	// Advance past expiry without deleting the row.
	s.Now = func() time.Time { return now.Add(2 * time.Hour) }

	_, err = s.Sessions().GetByToken(ctx, "token-1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSessionStore_DeleteExpiredByUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 0)

	now := time.Now()
	s.Now = func() time.Time { return now }

	require.NoError(t, s.Sessions().Create(ctx, model.Session{Token: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, s.Sessions().Create(ctx, model.Session{Token: "dead", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}))

	require.NoError(t, s.Sessions().DeleteExpiredByUser(ctx, user.ID))

	_, err := s.Sessions().GetByToken(ctx, "live")
	assert.NoError(t, err)

	s.mu.RLock()
	_, deadExists := s.sessions["dead"]
	s.mu.RUnlock()
	assert.False(t, deadExists)
}

func TestLedgerStore_ConcurrentMutations_BalanceMatchesLog(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Ledger().Debit(ctx, user.ID, 3, "chat message", nil)
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Ledger().Credit(ctx, user.ID, 2, model.KindAdd, "topup", nil)
		}()
	}
	wg.Wait()

	balance, err := s.Ledger().Balance(ctx, user.ID)
	require.NoError(t, err)

	// The stored balance must equal the signed sum of the full log.
	var sum int64
	for page := 1; ; page++ {
		rows, _, err := s.Ledger().List(ctx, user.ID, model.HistoryFilter{Page: page, Limit: model.HistoryMaxLimit})
		require.NoError(t, err)
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			sum += row.Amount
		}
	}
	assert.Equal(t, balance, sum)
}

func TestLedgerStore_ConcurrentDebits_ExactlyOneWins(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := newTestUser(t, s, 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.Ledger().Debit(ctx, user.ID, 1, "chat message", nil)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range results {
		var insufficient *model.InsufficientFundsError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &insufficient):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	balance, err := s.Ledger().Balance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}
