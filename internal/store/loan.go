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

const loanColumns = `
	id, loan_number, owner_id, account_id, loan_type,
	principal::text, interest_rate::text, tenure_months,
	emi::text, total_amount::text, remaining_balance::text, total_paid::text,
	number_of_payments, status, rejection_reason, approved_by, approved_at,
	next_payment_date, created_at, updated_at`

// GenerateLoanNumber produces an LN-prefixed loan number from the current
// timestamp and a random suffix.
func GenerateLoanNumber() string {
	return fmt.Sprintf("LN%d%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// CreateLoan inserts a new loan application, regenerating the loan number
// on collision.
func (s *Store) CreateLoan(ctx context.Context, loan *model.Loan) error {
	query := `
		INSERT INTO loans (
			id, loan_number, owner_id, account_id, loan_type,
			principal, interest_rate, tenure_months,
			emi, total_amount, remaining_balance, total_paid,
			number_of_payments, status, rejection_reason,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	for attempt := 0; attempt < 5; attempt++ {
		_, err := s.pool.Exec(ctx, query,
			loan.ID,
			loan.LoanNumber,
			loan.OwnerID,
			loan.AccountID,
			loan.LoanType,
			loan.Principal.String(),
			loan.InterestRate.String(),
			loan.TenureMonths,
			loan.EMI.String(),
			loan.TotalAmount.String(),
			loan.RemainingBalance.String(),
			loan.TotalPaid.String(),
			loan.NumberOfPayments,
			loan.Status,
			loan.RejectionReason,
			loan.CreatedAt,
			loan.UpdatedAt,
		)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			loan.LoanNumber = GenerateLoanNumber()
			continue
		}
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return errors.New("failed to allocate a unique loan number")
}

// GetLoan retrieves a loan by ID
func (s *Store) GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return scanLoan(s.pool.QueryRow(ctx, query, id))
}

// GetLoansByOwner retrieves loans for an owner, optionally filtered by
// status, newest first
func (s *Store) GetLoansByOwner(ctx context.Context, ownerID uuid.UUID, status *model.LoanStatus) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE owner_id = $1`
	args := []any{ownerID}
	if status != nil {
		args = append(args, *status)
		query += ` AND status = $2`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}

	return loans, rows.Err()
}

// GetPendingLoans lists loans awaiting review, oldest first
func (s *Store) GetPendingLoans(ctx context.Context) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = 'pending' ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}

	return loans, rows.Err()
}

// UpdateLoan writes back a mutated loan
func (s *Store) UpdateLoan(ctx context.Context, loan *model.Loan) error {
	query := `
		UPDATE loans
		SET emi = $2, total_amount = $3, remaining_balance = $4, total_paid = $5,
			number_of_payments = $6, status = $7, rejection_reason = $8,
			approved_by = $9, approved_at = $10, next_payment_date = $11,
			updated_at = $12
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		loan.ID,
		loan.EMI.String(),
		loan.TotalAmount.String(),
		loan.RemainingBalance.String(),
		loan.TotalPaid.String(),
		loan.NumberOfPayments,
		loan.Status,
		loan.RejectionReason,
		loan.ApprovedBy,
		loan.ApprovedAt,
		loan.NextPaymentDate,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrLoanNotFound
	}

	return nil
}

// TransitionLoanStatus moves a loan from one status to another, guarded so
// a concurrent reviewer cannot approve and reject the same application.
func (s *Store) TransitionLoanStatus(ctx context.Context, id uuid.UUID, from, to model.LoanStatus, reviewer *uuid.UUID, reason string) error {
	now := time.Now()
	query := `
		UPDATE loans
		SET status = $3, rejection_reason = $4,
			approved_by = COALESCE($5, approved_by),
			approved_at = COALESCE($6, approved_at),
			updated_at = $7
		WHERE id = $1 AND status = $2
	`

	var approvedAt *time.Time
	if to == model.LoanStatusApproved {
		approvedAt = &now
	}

	result, err := s.pool.Exec(ctx, query, id, from, to, reason, reviewer, approvedAt, now)
	if err != nil {
		return fmt.Errorf("failed to transition loan status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrLoanNotPending
	}

	return nil
}

// UpdateLoanTerms rewrites the financial terms and the schedule derived
// from them. Guarded to pending loans: once a loan is approved its terms
// are frozen.
func (s *Store) UpdateLoanTerms(ctx context.Context, loan *model.Loan) error {
	query := `
		UPDATE loans
		SET loan_type = $2, principal = $3, interest_rate = $4, tenure_months = $5,
			emi = $6, total_amount = $7, remaining_balance = $8, updated_at = $9
		WHERE id = $1 AND status = 'pending'
	`

	result, err := s.pool.Exec(ctx, query,
		loan.ID,
		loan.LoanType,
		loan.Principal.String(),
		loan.InterestRate.String(),
		loan.TenureMonths,
		loan.EMI.String(),
		loan.TotalAmount.String(),
		loan.RemainingBalance.String(),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan terms: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrLoanNotPending
	}

	return nil
}

func scanLoan(row pgx.Row) (*model.Loan, error) {
	loan := &model.Loan{}
	var principal, interestRate, emi, totalAmount, remaining, totalPaid string

	err := row.Scan(
		&loan.ID,
		&loan.LoanNumber,
		&loan.OwnerID,
		&loan.AccountID,
		&loan.LoanType,
		&principal,
		&interestRate,
		&loan.TenureMonths,
		&emi,
		&totalAmount,
		&remaining,
		&totalPaid,
		&loan.NumberOfPayments,
		&loan.Status,
		&loan.RejectionReason,
		&loan.ApprovedBy,
		&loan.ApprovedAt,
		&loan.NextPaymentDate,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&loan.Principal, principal},
		{&loan.InterestRate, interestRate},
		{&loan.EMI, emi},
		{&loan.TotalAmount, totalAmount},
		{&loan.RemainingBalance, remaining},
		{&loan.TotalPaid, totalPaid},
	}
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("invalid loan amount %q: %w", f.src, err)
		}
	}

	return loan, nil
}
