package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermai-app/dermai-server/internal/model"
	"github.com/dermai-app/dermai-server/internal/repository/memory"
	"github.com/dermai-app/dermai-server/internal/testutil"
)

func queryFixture(t *testing.T) (*Query, *memory.Store, uuid.UUID) {
	t.Helper()

	store := memory.NewStore()
	user := model.User{ID: uuid.New(), Email: "q@example.com", Active: true}
	_, err := store.Users().Create(context.Background(), user)
	require.NoError(t, err)

	return NewQuery(store.Ledger(), testutil.MakeNoopLogger()), store, user.ID
}

func TestQuery_History(t *testing.T) {
	ctx := context.Background()
	q, store, userID := queryFixture(t)

	// Signup bonus, one paid analysis, one purchased package.
	_, err := store.Ledger().Credit(ctx, userID, 10, model.KindBonus, "signup bonus", nil)
	require.NoError(t, err)
	_, err = store.Ledger().Debit(ctx, userID, 2, "skin analysis", nil)
	require.NoError(t, err)
	packageID := 1
	_, err = store.Ledger().Credit(ctx, userID, 10, model.KindPurchase, "Starter Package purchased", &packageID)
	require.NoError(t, err)

	page, err := q.History(ctx, userID, model.HistoryFilter{})
	require.NoError(t, err)

	assert.Len(t, page.History, 3)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, model.HistoryDefaultLimit, page.Pagination.PerPage)
	assert.Equal(t, int64(3), page.Pagination.TotalRecords)
	assert.Equal(t, int64(1), page.Pagination.TotalPages)

	assert.Equal(t, int64(18), page.Statistics.CurrentCredits)
	assert.Equal(t, int64(20), page.Statistics.TotalEarned)
	assert.Equal(t, int64(2), page.Statistics.TotalUsed)
	assert.Equal(t, int64(3), page.Statistics.TotalTransactions)
}

func TestQuery_History_FilterAffectsStatistics(t *testing.T) {
	ctx := context.Background()
	q, store, userID := queryFixture(t)

	_, err := store.Ledger().Credit(ctx, userID, 10, model.KindBonus, "signup bonus", nil)
	require.NoError(t, err)
	_, err = store.Ledger().Debit(ctx, userID, 1, "chat message", nil)
	require.NoError(t, err)

	page, err := q.History(ctx, userID, model.HistoryFilter{Kind: model.KindUsage})
	require.NoError(t, err)

	assert.Len(t, page.History, 1)
	assert.Equal(t, int64(1), page.Statistics.TotalTransactions)
	assert.Equal(t, int64(0), page.Statistics.TotalEarned)
	assert.Equal(t, int64(1), page.Statistics.TotalUsed)
	// The balance is always the stored one, regardless of filter.
	assert.Equal(t, int64(9), page.Statistics.CurrentCredits)
}

func TestQuery_History_Paging(t *testing.T) {
	ctx := context.Background()
	q, store, userID := queryFixture(t)

	for i := 0; i < 45; i++ {
		_, err := store.Ledger().Credit(ctx, userID, 1, model.KindAdd, "topup", nil)
		require.NoError(t, err)
	}

	page, err := q.History(ctx, userID, model.HistoryFilter{Page: 3, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, page.History, 10)
	assert.Equal(t, 3, page.Pagination.CurrentPage)
	assert.Equal(t, int64(45), page.Pagination.TotalRecords)
	assert.Equal(t, int64(5), page.Pagination.TotalPages)
}

func TestQuery_Overview(t *testing.T) {
	ctx := context.Background()
	q, store, userID := queryFixture(t)

	_, err := store.Ledger().Credit(ctx, userID, 20, model.KindBonus, "signup bonus", nil)
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		_, err = store.Ledger().Debit(ctx, userID, 1, "chat message", nil)
		require.NoError(t, err)
	}

	overview, err := q.Overview(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, int64(8), overview.Balance)
	// Recent history is capped at the minimum page size.
	assert.Len(t, overview.History, model.HistoryMinLimit)
	assert.Equal(t, int64(20), overview.Statistics.TotalEarned)
	assert.Equal(t, int64(12), overview.Statistics.TotalUsed)
	assert.Equal(t, int64(13), overview.Statistics.TotalTransactions)
}
