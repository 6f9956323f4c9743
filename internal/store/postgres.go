package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jmarsden/meridian-banking/internal/model"
)

// Store is the durable home of accounts, the ledger, loans, customers, and
// the audit trail. It owns the atomic-unit-of-work primitive the transaction
// engine depends on.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects to PostgreSQL and returns a Store
func New(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{pool: pool, logger: logger}, nil
}

// Pool exposes the underlying pool for health checks
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases the connection pool
func (s *Store) Close() {
	s.pool.Close()
}

// UnitStore is the set of operations available inside one atomic unit of
// work. Everything done through it commits together or not at all.
type UnitStore interface {
	AccountForUpdate(ctx context.Context, id uuid.UUID) (*model.Account, error)
	SaveAccount(ctx context.Context, account *model.Account) error
	AppendEntry(ctx context.Context, entry *model.Transaction) error
}

// Unit is the pgx-backed UnitStore handed to WithAtomicUnit callbacks
type Unit struct {
	tx pgx.Tx
}

// WithAtomicUnit runs fn inside a database transaction with repeatable-read
// isolation. Any error from fn rolls the whole unit back; serialization
// failures and deadlocks surface as ErrConcurrencyConflict so callers can
// retry.
func (s *Store) WithAtomicUnit(ctx context.Context, fn func(u UnitStore) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("failed to begin atomic unit: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Unit{tx: tx}); err != nil {
		return translateConflict(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return translateConflict(fmt.Errorf("failed to commit atomic unit: %w", err))
	}

	return nil
}

// translateConflict maps PostgreSQL serialization failures (40001) and
// deadlocks (40P01) to the retryable sentinel.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return model.ErrConcurrencyConflict
		}
	}
	return err
}

// isUniqueViolation checks for a unique constraint violation (23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
