package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jmarsden/meridian-banking/internal/model"
)

const accountColumns = `
	id, account_number, owner_id, account_type, balance::text, currency,
	status, interest_rate::text, minimum_balance::text,
	opened_at, closed_at, last_transaction_at, created_at, updated_at`

// GenerateAccountNumber produces a bank-prefixed 12-digit account number.
// Uniqueness is enforced by the account_number constraint; CreateAccount
// regenerates on collision.
func GenerateAccountNumber() string {
	return fmt.Sprintf("10%010d", rand.Int63n(10_000_000_000))
}

// CreateAccount inserts a new account, regenerating the account number on
// the (unlikely) collision with an existing one.
func (s *Store) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (
			id, account_number, owner_id, account_type, balance, currency,
			status, interest_rate, minimum_balance,
			opened_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for attempt := 0; attempt < 5; attempt++ {
		_, err := s.pool.Exec(ctx, query,
			account.ID,
			account.AccountNumber,
			account.OwnerID,
			account.AccountType,
			account.Balance.String(),
			account.Currency,
			account.Status,
			account.InterestRate.String(),
			account.MinimumBalance.String(),
			account.OpenedAt,
			account.CreatedAt,
			account.UpdatedAt,
		)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			account.AccountNumber = GenerateAccountNumber()
			continue
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return errors.New("failed to allocate a unique account number")
}

// GetAccount retrieves an account by ID
func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(s.pool.QueryRow(ctx, query, id))
}

// GetAccountsByOwner retrieves all non-closed accounts for an owner,
// newest first
func (s *Store) GetAccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE owner_id = $1 AND status != 'closed'
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}

	return accounts, rows.Err()
}

// UpdateAccountProfile updates the non-financial fields of an account.
// The balance is off limits here; only the transaction engine writes it.
func (s *Store) UpdateAccountProfile(ctx context.Context, id uuid.UUID, status model.AccountStatus, minimumBalance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET status = $2, minimum_balance = $3, updated_at = $4
		WHERE id = $1 AND status != 'closed'
	`

	result, err := s.pool.Exec(ctx, query, id, status, minimumBalance.String(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}

// CloseAccount soft-closes an account. The guard on balance makes the
// zero-balance rule atomic with the status change.
func (s *Store) CloseAccount(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := `
		UPDATE accounts
		SET status = 'closed', closed_at = $2, updated_at = $2
		WHERE id = $1 AND status != 'closed' AND balance = 0
	`

	result, err := s.pool.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to close account: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Distinguish unknown accounts from ones still holding funds
		account, getErr := s.GetAccount(ctx, id)
		if getErr != nil {
			return getErr
		}
		if !account.Balance.IsZero() {
			return model.ErrAccountNotEmpty
		}
		return model.ErrAccountClosed
	}

	return nil
}

// AccountForUpdate loads an account with a row lock, serializing concurrent
// movements that touch it. Only valid inside an atomic unit.
func (u *Unit) AccountForUpdate(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(u.tx.QueryRow(ctx, query, id))
}

// SaveAccount writes back a mutated account inside the atomic unit
func (u *Unit) SaveAccount(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2, last_transaction_at = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := u.tx.Exec(ctx, query,
		account.ID,
		account.Balance.String(),
		account.LastTransactionAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	account := &model.Account{}
	var balance, interestRate, minimumBalance string

	err := row.Scan(
		&account.ID,
		&account.AccountNumber,
		&account.OwnerID,
		&account.AccountType,
		&balance,
		&account.Currency,
		&account.Status,
		&interestRate,
		&minimumBalance,
		&account.OpenedAt,
		&account.ClosedAt,
		&account.LastTransactionAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	if account.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	if account.InterestRate, err = decimal.NewFromString(interestRate); err != nil {
		return nil, fmt.Errorf("invalid interest rate %q: %w", interestRate, err)
	}
	if account.MinimumBalance, err = decimal.NewFromString(minimumBalance); err != nil {
		return nil, fmt.Errorf("invalid minimum balance %q: %w", minimumBalance, err)
	}

	return account, nil
}
