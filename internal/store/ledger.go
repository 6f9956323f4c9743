package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jmarsden/meridian-banking/internal/model"
)

const transactionColumns = `
	id, transaction_id, reference_number, from_account_id, to_account_id,
	owner_id, type, amount::text, currency, status, description,
	balance_after::text, fee::text, processed_at, created_at`

// AppendEntry inserts a completed ledger entry inside the atomic unit.
// Entries are append-only; there is no update path.
func (u *Unit) AppendEntry(ctx context.Context, entry *model.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, transaction_id, reference_number, from_account_id, to_account_id,
			owner_id, type, amount, currency, status, description,
			balance_after, fee, processed_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := u.tx.Exec(ctx, query,
		entry.ID,
		entry.TransactionID,
		entry.ReferenceNumber,
		entry.FromAccountID,
		entry.ToAccountID,
		entry.OwnerID,
		entry.Type,
		entry.Amount.String(),
		entry.Currency,
		entry.Status,
		entry.Description,
		entry.BalanceAfter.String(),
		entry.Fee.String(),
		entry.ProcessedAt,
		entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Transaction/reference number collision; caller regenerates
			return model.ErrConcurrencyConflict
		}
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// GetTransaction retrieves a ledger entry by ID
func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(s.pool.QueryRow(ctx, query, id))
}

// EntryFilter narrows a ledger query. OwnerID is required; the rest are
// optional.
type EntryFilter struct {
	OwnerID   uuid.UUID
	AccountID *uuid.UUID
	Type      *model.TransactionType
	Status    *model.TransactionStatus
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// QueryEntries returns matching ledger entries newest-first plus the total
// match count for pagination.
func (s *Store) QueryEntries(ctx context.Context, filter EntryFilter) ([]model.Transaction, int, error) {
	where := `WHERE owner_id = $1`
	args := []any{filter.OwnerID}

	appendCond := func(cond string, value any) {
		args = append(args, value)
		where += fmt.Sprintf(" AND "+cond, len(args))
	}

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		where += fmt.Sprintf(" AND (from_account_id = $%d OR to_account_id = $%d)", len(args), len(args))
	}
	if filter.Type != nil {
		appendCond("type = $%d", *filter.Type)
	}
	if filter.Status != nil {
		appendCond("status = $%d", *filter.Status)
	}
	if filter.StartDate != nil {
		appendCond("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		appendCond("created_at <= $%d", *filter.EndDate)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions ` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, transactionColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Transaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *entry)
	}

	return entries, total, rows.Err()
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	entry := &model.Transaction{}
	var amount, balanceAfter, fee string

	err := row.Scan(
		&entry.ID,
		&entry.TransactionID,
		&entry.ReferenceNumber,
		&entry.FromAccountID,
		&entry.ToAccountID,
		&entry.OwnerID,
		&entry.Type,
		&amount,
		&entry.Currency,
		&entry.Status,
		&entry.Description,
		&balanceAfter,
		&fee,
		&entry.ProcessedAt,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
	}

	if entry.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if entry.BalanceAfter, err = decimal.NewFromString(balanceAfter); err != nil {
		return nil, fmt.Errorf("invalid balance_after %q: %w", balanceAfter, err)
	}
	if entry.Fee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("invalid fee %q: %w", fee, err)
	}

	return entry, nil
}
