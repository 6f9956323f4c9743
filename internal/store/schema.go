package store

import (
	"context"
	"fmt"
)

// InitSchema creates the tables and indexes if they do not exist.
// Called on startup by cmd/api before the server accepts requests.
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'customer',
			status TEXT NOT NULL DEFAULT 'active',
			failed_login_attempts INT NOT NULL DEFAULT 0,
			locked_until TIMESTAMPTZ,
			last_login_at TIMESTAMPTZ,
			password_changed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			account_number TEXT NOT NULL UNIQUE,
			owner_id UUID NOT NULL REFERENCES customers(id),
			account_type TEXT NOT NULL,
			balance NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			currency TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			interest_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
			minimum_balance NUMERIC(20,2) NOT NULL DEFAULT 0,
			opened_at TIMESTAMPTZ NOT NULL,
			closed_at TIMESTAMPTZ,
			last_transaction_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts (owner_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			reference_number TEXT NOT NULL UNIQUE,
			from_account_id UUID REFERENCES accounts(id),
			to_account_id UUID REFERENCES accounts(id),
			owner_id UUID NOT NULL REFERENCES customers(id),
			type TEXT NOT NULL,
			amount NUMERIC(20,2) NOT NULL CHECK (amount > 0),
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			balance_after NUMERIC(20,2) NOT NULL,
			fee NUMERIC(20,2) NOT NULL DEFAULT 0,
			processed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_owner_created ON transactions (owner_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_from_account ON transactions (from_account_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_to_account ON transactions (to_account_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id UUID PRIMARY KEY,
			loan_number TEXT NOT NULL UNIQUE,
			owner_id UUID NOT NULL REFERENCES customers(id),
			account_id UUID NOT NULL REFERENCES accounts(id),
			loan_type TEXT NOT NULL,
			principal NUMERIC(20,2) NOT NULL,
			interest_rate NUMERIC(5,2) NOT NULL,
			tenure_months INT NOT NULL,
			emi NUMERIC(20,2) NOT NULL,
			total_amount NUMERIC(20,2) NOT NULL,
			remaining_balance NUMERIC(20,2) NOT NULL CHECK (remaining_balance >= 0),
			total_paid NUMERIC(20,2) NOT NULL DEFAULT 0,
			number_of_payments INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			rejection_reason TEXT NOT NULL DEFAULT '',
			approved_by UUID,
			approved_at TIMESTAMPTZ,
			next_payment_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_owner_status ON loans (owner_id, status)`,
		`CREATE TABLE IF NOT EXISTS beneficiaries (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES customers(id),
			nickname TEXT NOT NULL,
			account_number TEXT NOT NULL,
			account_holder_name TEXT NOT NULL,
			bank_name TEXT NOT NULL,
			account_type TEXT NOT NULL,
			last_used_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (owner_id, account_number)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY,
			action TEXT NOT NULL,
			actor_id UUID NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id UUID NOT NULL,
			description TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_actor_created ON audit_logs (actor_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES customers(id),
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_owner ON notifications (owner_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return nil
}
