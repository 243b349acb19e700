package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dermai-app/dermai-server/internal/logger"
	"github.com/dermai-app/dermai-server/internal/model"
)

// HistoryPage is one page of transaction history with paging metadata
// and aggregates.
type HistoryPage struct {
	History    []model.CreditTransaction
	Pagination Pagination
	Statistics Statistics
}

type Pagination struct {
	CurrentPage  int
	PerPage      int
	TotalRecords int64
	TotalPages   int64
}

// Statistics aggregates the transaction log. CurrentCredits is always
// read from the stored balance, never derived from the log.
type Statistics struct {
	CurrentCredits    int64
	TotalEarned       int64
	TotalUsed         int64
	TotalTransactions int64
}

// Overview is the balance endpoint payload: stored balance plus the
// most recent transactions.
type Overview struct {
	Balance    int64
	History    []model.CreditTransaction
	Statistics Statistics
}

// Query is the read side of the ledger: history and aggregates for
// display and audit. It is never the source of truth for the balance.
type Query struct {
	store  model.LedgerStore
	logger *logger.Logger
}

func NewQuery(store model.LedgerStore, logger *logger.Logger) *Query {
	return &Query{store: store, logger: logger}
}

// History returns one filtered page plus statistics over the same
// filter.
func (s *Query) History(ctx context.Context, userID uuid.UUID, filter model.HistoryFilter) (HistoryPage, error) {
	filter = filter.Normalize()

	transactions, total, err := s.store.List(ctx, userID, filter)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	stats, err := s.store.Stats(ctx, userID, filter)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("failed to read balance: %w", err)
	}

	totalPages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)

	return HistoryPage{
		History: transactions,
		Pagination: Pagination{
			CurrentPage:  filter.Page,
			PerPage:      filter.Limit,
			TotalRecords: total,
			TotalPages:   totalPages,
		},
		Statistics: Statistics{
			CurrentCredits:    balance,
			TotalEarned:       stats.TotalEarned,
			TotalUsed:         stats.TotalUsed,
			TotalTransactions: stats.TotalTransactions,
		},
	}, nil
}

// Overview returns the stored balance with the ten most recent
// transactions and all-time statistics.
func (s *Query) Overview(ctx context.Context, userID uuid.UUID) (Overview, error) {
	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("failed to read balance: %w", err)
	}

	recent, _, err := s.store.List(ctx, userID, model.HistoryFilter{Page: 1, Limit: model.HistoryMinLimit})
	if err != nil {
		return Overview{}, fmt.Errorf("failed to list recent transactions: %w", err)
	}

	stats, err := s.store.Stats(ctx, userID, model.HistoryFilter{})
	if err != nil {
		return Overview{}, fmt.Errorf("failed to aggregate transactions: %w", err)
	}

	return Overview{
		Balance: balance,
		History: recent,
		Statistics: Statistics{
			CurrentCredits:    balance,
			TotalEarned:       stats.TotalEarned,
			TotalUsed:         stats.TotalUsed,
			TotalTransactions: stats.TotalTransactions,
		},
	}, nil
}
