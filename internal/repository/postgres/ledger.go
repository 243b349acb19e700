package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dermai-app/dermai-server/internal/model"
)

var _ model.LedgerStore = (*LedgerRepository)(nil)

// LedgerRepository mutates a user's (balance, transaction log) pair as
// one transactional unit. Every mutation takes a row lock on the user
// via SELECT ... FOR UPDATE, so mutations for the same user serialize
// while different users proceed in parallel.
type LedgerRepository struct {
	db *Connection
}

func NewLedgerRepository(db *Connection) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Debit(ctx context.Context, userID uuid.UUID, amount int64, description string, reference *uuid.UUID) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, &model.LedgerWriteError{Err: err}
	}
	defer tx.Rollback(ctx)

	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	if balance < amount {
		return 0, &model.InsufficientFundsError{Balance: balance, Required: amount}
	}

	newBalance := balance - amount
	entry := model.CreditTransaction{
		UserID:      userID,
		Kind:        model.KindUsage,
		Amount:      -amount,
		Description: description,
		Reference:   reference,
	}
	if err := applyChange(ctx, tx, newBalance, entry); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &model.LedgerWriteError{Err: err}
	}
	return newBalance, nil
}

func (r *LedgerRepository) Credit(ctx context.Context, userID uuid.UUID, amount int64, kind model.TransactionKind, description string, packageID *int) (int64, error) {
	if amount <= 0 {
		return 0, model.ErrInvalidAmount
	}
	if !slices.Contains(model.CreditKinds, kind) {
		return 0, model.ErrInvalidAmount
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, &model.LedgerWriteError{Err: err}
	}
	defer tx.Rollback(ctx)

	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	newBalance := balance + amount
	entry := model.CreditTransaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		PackageID:   packageID,
	}
	if err := applyChange(ctx, tx, newBalance, entry); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, &model.LedgerWriteError{Err: err}
	}
	return newBalance, nil
}

func (r *LedgerRepository) Remove(ctx context.Context, userID uuid.UUID, amount int64, description string) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, model.ErrInvalidAmount
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, &model.LedgerWriteError{Err: err}
	}
	defer tx.Rollback(ctx)

	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return 0, 0, err
	}

	actualRemoved := min(amount, balance)
	newBalance := balance - actualRemoved
	entry := model.CreditTransaction{
		UserID:      userID,
		Kind:        model.KindSubtract,
		Amount:      -actualRemoved,
		Description: description,
	}
	if err := applyChange(ctx, tx, newBalance, entry); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, &model.LedgerWriteError{Err: err}
	}
	return newBalance, actualRemoved, nil
}

func (r *LedgerRepository) SetBalance(ctx context.Context, userID uuid.UUID, newValue int64, description string) (int64, int64, error) {
	if newValue < 0 {
		return 0, 0, model.ErrInvalidAmount
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, &model.LedgerWriteError{Err: err}
	}
	defer tx.Rollback(ctx)

	oldBalance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return 0, 0, err
	}

	entry := model.CreditTransaction{
		UserID:      userID,
		Kind:        model.KindSet,
		Amount:      newValue - oldBalance,
		Description: description,
	}
	if err := applyChange(ctx, tx, newValue, entry); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, &model.LedgerWriteError{Err: err}
	}
	return oldBalance, newValue, nil
}

func (r *LedgerRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (r *LedgerRepository) List(ctx context.Context, userID uuid.UUID, filter model.HistoryFilter) ([]model.CreditTransaction, int64, error) {
	filter = filter.Normalize()
	where, args := historyWhere(userID, filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM credit_transactions WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := fmt.Sprintf(`
        SELECT id, user_id, kind, amount, description, reference, package_id, created_at
        FROM credit_transactions
        WHERE %s
        ORDER BY created_at DESC, id DESC
        LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.CreditTransaction
	for rows.Next() {
		var t model.CreditTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.Amount, &t.Description, &t.Reference, &t.PackageID, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read transactions: %w", err)
	}

	return transactions, total, nil
}

func (r *LedgerRepository) Stats(ctx context.Context, userID uuid.UUID, filter model.HistoryFilter) (model.TransactionStats, error) {
	where, args := historyWhere(userID, filter)

	query := `
        SELECT
            COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0),
            COUNT(*)
        FROM credit_transactions
        WHERE ` + where

	var stats model.TransactionStats
	err := r.db.QueryRow(ctx, query, args...).Scan(&stats.TotalEarned, &stats.TotalUsed, &stats.TotalTransactions)
	if err != nil {
		return model.TransactionStats{}, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	return stats, nil
}

// lockBalance reads the user's balance under a row lock, blocking
// concurrent ledger mutations for the same user until commit.
func lockBalance(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx, `SELECT credits FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, &model.LedgerWriteError{Err: err}
	}
	return balance, nil
}

// applyChange writes the new balance and appends the paired
// transaction row. Callers commit; any error leaves both unapplied.
func applyChange(ctx context.Context, tx pgx.Tx, newBalance int64, entry model.CreditTransaction) error {
	_, err := tx.Exec(ctx, `UPDATE users SET credits = $1, updated_at = NOW() WHERE id = $2`, newBalance, entry.UserID)
	if err != nil {
		return &model.LedgerWriteError{Err: err}
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO credit_transactions (user_id, kind, amount, description, reference, package_id)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.UserID, entry.Kind, entry.Amount, entry.Description, entry.Reference, entry.PackageID,
	)
	if err != nil {
		return &model.LedgerWriteError{Err: err}
	}
	return nil
}

func historyWhere(userID uuid.UUID, filter model.HistoryFilter) (string, []any) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}
