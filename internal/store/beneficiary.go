package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jmarsden/meridian-banking/internal/model"
)

// CreateBeneficiary saves a payee for a customer
func (s *Store) CreateBeneficiary(ctx context.Context, b *model.Beneficiary) error {
	query := `
		INSERT INTO beneficiaries (
			id, owner_id, nickname, account_number, account_holder_name,
			bank_name, account_type, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		b.ID,
		b.OwnerID,
		b.Nickname,
		b.AccountNumber,
		b.AccountHolderName,
		b.BankName,
		b.AccountType,
		b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrBeneficiaryExists
		}
		return fmt.Errorf("failed to create beneficiary: %w", err)
	}

	return nil
}

// GetBeneficiariesByOwner lists a customer's saved payees
func (s *Store) GetBeneficiariesByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Beneficiary, error) {
	query := `
		SELECT id, owner_id, nickname, account_number, account_holder_name,
			bank_name, account_type, last_used_at, created_at
		FROM beneficiaries
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list beneficiaries: %w", err)
	}
	defer rows.Close()

	var beneficiaries []model.Beneficiary
	for rows.Next() {
		var b model.Beneficiary
		err := rows.Scan(
			&b.ID,
			&b.OwnerID,
			&b.Nickname,
			&b.AccountNumber,
			&b.AccountHolderName,
			&b.BankName,
			&b.AccountType,
			&b.LastUsedAt,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary: %w", err)
		}
		beneficiaries = append(beneficiaries, b)
	}

	return beneficiaries, rows.Err()
}

// DeleteBeneficiary removes a payee; scoped to the owner so a customer
// cannot delete another customer's entry
func (s *Store) DeleteBeneficiary(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM beneficiaries WHERE id = $1 AND owner_id = $2`

	result, err := s.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete beneficiary: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrBeneficiaryNotFound
	}

	return nil
}
