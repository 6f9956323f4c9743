package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType represents the type of bank account
type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
	AccountTypeCurrent  AccountType = "current"
)

// AccountStatus represents the current status of an account
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
	AccountStatusFrozen   AccountStatus = "frozen"
	AccountStatusClosed   AccountStatus = "closed"
)

// Account represents a bank account. The balance is mutated only by the
// transaction engine; every other component treats it as read-only.
type Account struct {
	ID                uuid.UUID       `json:"id"`
	AccountNumber     string          `json:"account_number"`
	OwnerID           uuid.UUID       `json:"owner_id"`
	AccountType       AccountType     `json:"account_type"`
	Balance           decimal.Decimal `json:"balance"`
	Currency          string          `json:"currency"`
	Status            AccountStatus   `json:"status"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	MinimumBalance    decimal.Decimal `json:"minimum_balance"`
	OpenedAt          time.Time       `json:"opened_at"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	LastTransactionAt *time.Time      `json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CanDebit reports whether the account may be debited by amount.
// Returns the violated rule as a sentinel error, nil if allowed.
func (a *Account) CanDebit(amount decimal.Decimal) error {
	if a.Status != AccountStatusActive {
		return ErrAccountNotActive
	}
	if a.Balance.Sub(amount).LessThan(a.MinimumBalance) {
		return ErrInsufficientFunds
	}
	return nil
}

// CanCredit reports whether the account may receive a credit.
func (a *Account) CanCredit() error {
	if a.Status == AccountStatusClosed {
		return ErrAccountClosed
	}
	return nil
}

// CreateAccountRequest is the payload for opening a new account
type CreateAccountRequest struct {
	AccountType    AccountType `json:"account_type"`
	Currency       string      `json:"currency"`
	InitialDeposit string      `json:"initial_deposit,omitempty"`
}

// Validate checks if the open request is valid
func (r CreateAccountRequest) Validate() error {
	if r.AccountType != AccountTypeSavings &&
		r.AccountType != AccountTypeChecking &&
		r.AccountType != AccountTypeCurrent {
		return ErrInvalidAccountType
	}
	if !isSupportedCurrency(r.Currency) {
		return ErrInvalidCurrency
	}
	if r.InitialDeposit != "" {
		amount, err := decimal.NewFromString(r.InitialDeposit)
		if err != nil || amount.IsNegative() {
			return ErrInvalidAmount
		}
	}
	return nil
}

// UpdateAccountRequest carries the non-financial fields a holder may edit.
// Balance, account number, and owner are never updatable.
type UpdateAccountRequest struct {
	Status         *AccountStatus `json:"status,omitempty"`
	MinimumBalance *string        `json:"minimum_balance,omitempty"`
}

// Validate checks if the update request is valid
func (r UpdateAccountRequest) Validate() error {
	if r.Status != nil {
		// Closing goes through the dedicated close operation
		switch *r.Status {
		case AccountStatusActive, AccountStatusInactive, AccountStatusFrozen:
		default:
			return ErrInvalidAccountType
		}
	}
	if r.MinimumBalance != nil {
		min, err := decimal.NewFromString(*r.MinimumBalance)
		if err != nil || min.IsNegative() {
			return ErrInvalidAmount
		}
	}
	return nil
}

func isSupportedCurrency(currency string) bool {
	switch currency {
	case "USD", "EUR", "GBP":
		return true
	}
	return false
}
