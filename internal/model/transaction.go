package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of money movement
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeTransfer    TransactionType = "transfer"
	TransactionTypeLoanPayment TransactionType = "loan_payment"
	TransactionTypeInterest    TransactionType = "interest"
)

// TransactionStatus represents the current status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is one immutable ledger entry. Once status is completed the
// record is never edited; a failed attempt leaves no row behind.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	TransactionID   string            `json:"transaction_id"`
	ReferenceNumber string            `json:"reference_number"`
	FromAccountID   *uuid.UUID        `json:"from_account_id,omitempty"`
	ToAccountID     *uuid.UUID        `json:"to_account_id,omitempty"`
	OwnerID         uuid.UUID         `json:"owner_id"`
	Type            TransactionType   `json:"type"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Status          TransactionStatus `json:"status"`
	Description     string            `json:"description,omitempty"`
	BalanceAfter    decimal.Decimal   `json:"balance_after"`
	Fee             decimal.Decimal   `json:"fee"`
	ProcessedAt     *time.Time        `json:"processed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// MovementRequest asks the transaction engine to move money. Exactly which
// account IDs are required depends on the type; Validate enforces the shape
// before the engine touches the store.
type MovementRequest struct {
	Type          TransactionType `json:"type"`
	FromAccountID *uuid.UUID      `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID      `json:"to_account_id,omitempty"`
	OwnerID       uuid.UUID       `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// Validate checks the structural preconditions for the movement type.
func (r MovementRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	switch r.Type {
	case TransactionTypeDeposit, TransactionTypeInterest:
		if r.ToAccountID == nil {
			return ErrMissingToAccount
		}
		if r.FromAccountID != nil {
			return ErrUnexpectedAccount
		}
	case TransactionTypeWithdrawal, TransactionTypeLoanPayment:
		if r.FromAccountID == nil {
			return ErrMissingFromAccount
		}
		if r.ToAccountID != nil {
			return ErrUnexpectedAccount
		}
	case TransactionTypeTransfer:
		if r.FromAccountID == nil {
			return ErrMissingFromAccount
		}
		if r.ToAccountID == nil {
			return ErrMissingToAccount
		}
		if *r.FromAccountID == *r.ToAccountID {
			return ErrSameAccountTransfer
		}
	default:
		return ErrInvalidAmount
	}

	return nil
}

// PrimaryAccountID is the account whose post-operation balance is recorded
// as balance_after: the debited side for outgoing types, the credited side
// for deposits and interest.
func (r MovementRequest) PrimaryAccountID() uuid.UUID {
	if r.Type == TransactionTypeDeposit || r.Type == TransactionTypeInterest {
		return *r.ToAccountID
	}
	return *r.FromAccountID
}
