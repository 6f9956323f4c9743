package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jmarsden/meridian-banking/internal/model"
)

const customerColumns = `
	id, email, password_hash, first_name, last_name, role,
	status, failed_login_attempts, locked_until, last_login_at,
	password_changed_at, created_at, updated_at`

// CreateCustomer inserts a new customer
func (s *Store) CreateCustomer(ctx context.Context, customer *model.Customer) error {
	query := `
		INSERT INTO customers (
			id, email, password_hash, first_name, last_name, role,
			status, failed_login_attempts, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		customer.ID,
		customer.Email,
		customer.PasswordHash,
		customer.FirstName,
		customer.LastName,
		customer.Role,
		customer.Status,
		customer.FailedLoginAttempts,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(s.pool.QueryRow(ctx, query, id))
}

// GetCustomerByEmail retrieves a customer by email
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return scanCustomer(s.pool.QueryRow(ctx, query, email))
}

// IncrementFailedAttempts bumps the failed login counter and returns the
// new count
func (s *Store) IncrementFailedAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE customers
		SET failed_login_attempts = failed_login_attempts + 1, updated_at = $2
		WHERE id = $1
		RETURNING failed_login_attempts
	`

	var attempts int
	if err := s.pool.QueryRow(ctx, query, id, time.Now()).Scan(&attempts); err != nil {
		return 0, fmt.Errorf("failed to increment failed attempts: %w", err)
	}

	return attempts, nil
}

// ResetFailedAttempts clears the failed login counter
func (s *Store) ResetFailedAttempts(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE customers
		SET failed_login_attempts = 0, locked_until = NULL, updated_at = $2
		WHERE id = $1
	`
	_, err := s.pool.Exec(ctx, query, id, time.Now())
	return err
}

// LockCustomer locks a customer out until the given time
func (s *Store) LockCustomer(ctx context.Context, id uuid.UUID, until time.Time) error {
	query := `UPDATE customers SET locked_until = $2, updated_at = $3 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, until, time.Now())
	return err
}

// UpdateLastLogin stamps the last successful login time
func (s *Store) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := `UPDATE customers SET last_login_at = $2, updated_at = $2 WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id, now)
	return err
}

// UpdatePassword replaces the password hash
func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	now := time.Now()
	query := `
		UPDATE customers
		SET password_hash = $2, password_changed_at = $3, updated_at = $3
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, id, hash, now)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrCustomerNotFound
	}

	return nil
}

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	customer := &model.Customer{}

	err := row.Scan(
		&customer.ID,
		&customer.Email,
		&customer.PasswordHash,
		&customer.FirstName,
		&customer.LastName,
		&customer.Role,
		&customer.Status,
		&customer.FailedLoginAttempts,
		&customer.LockedUntil,
		&customer.LastLoginAt,
		&customer.PasswordChangedAt,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}

	return customer, nil
}
