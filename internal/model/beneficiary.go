package model

import (
	"time"

	"github.com/google/uuid"
)

// Beneficiary is a saved payee a customer can transfer to without
// re-entering account details.
type Beneficiary struct {
	ID                uuid.UUID   `json:"id"`
	OwnerID           uuid.UUID   `json:"owner_id"`
	Nickname          string      `json:"nickname"`
	AccountNumber     string      `json:"account_number"`
	AccountHolderName string      `json:"account_holder_name"`
	BankName          string      `json:"bank_name"`
	AccountType       AccountType `json:"account_type"`
	LastUsedAt        *time.Time  `json:"last_used_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

// AddBeneficiaryRequest is the payload for saving a payee
type AddBeneficiaryRequest struct {
	Nickname          string      `json:"nickname"`
	AccountNumber     string      `json:"account_number"`
	AccountHolderName string      `json:"account_holder_name"`
	BankName          string      `json:"bank_name"`
	AccountType       AccountType `json:"account_type"`
}

// Validate checks if the add request is valid
func (r AddBeneficiaryRequest) Validate() error {
	if r.Nickname == "" || len(r.Nickname) > 50 {
		return ErrBeneficiaryInvalid
	}
	if r.AccountNumber == "" || r.AccountHolderName == "" || r.BankName == "" {
		return ErrBeneficiaryInvalid
	}
	switch r.AccountType {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeCurrent:
	default:
		return ErrInvalidAccountType
	}
	return nil
}
