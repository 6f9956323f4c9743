package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_CanDebit(t *testing.T) {
	tests := []struct {
		name           string
		status         AccountStatus
		balance        string
		minimumBalance string
		amount         string
		wantErr        error
	}{
		{
			name:           "sufficient balance",
			status:         AccountStatusActive,
			balance:        "500.00",
			minimumBalance: "0",
			amount:         "100.00",
			wantErr:        nil,
		},
		{
			name:           "exact balance",
			status:         AccountStatusActive,
			balance:        "100.00",
			minimumBalance: "0",
			amount:         "100.00",
			wantErr:        nil,
		},
		{
			name:           "insufficient balance",
			status:         AccountStatusActive,
			balance:        "50.00",
			minimumBalance: "0",
			amount:         "100.00",
			wantErr:        ErrInsufficientFunds,
		},
		{
			name:           "would breach minimum balance",
			status:         AccountStatusActive,
			balance:        "150.00",
			minimumBalance: "100.00",
			amount:         "75.00",
			wantErr:        ErrInsufficientFunds,
		},
		{
			name:           "lands exactly on minimum balance",
			status:         AccountStatusActive,
			balance:        "150.00",
			minimumBalance: "100.00",
			amount:         "50.00",
			wantErr:        nil,
		},
		{
			name:           "frozen account",
			status:         AccountStatusFrozen,
			balance:        "500.00",
			minimumBalance: "0",
			amount:         "100.00",
			wantErr:        ErrAccountNotActive,
		},
		{
			name:           "inactive account",
			status:         AccountStatusInactive,
			balance:        "500.00",
			minimumBalance: "0",
			amount:         "100.00",
			wantErr:        ErrAccountNotActive,
		},
		{
			name:           "closed account",
			status:         AccountStatusClosed,
			balance:        "500.00",
			minimumBalance: "0",
			amount:         "100.00",
			wantErr:        ErrAccountNotActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := Account{
				Status:         tt.status,
				Balance:        decimal.RequireFromString(tt.balance),
				MinimumBalance: decimal.RequireFromString(tt.minimumBalance),
			}

			err := account.CanDebit(decimal.RequireFromString(tt.amount))
			if err != tt.wantErr {
				t.Errorf("CanDebit() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccount_CanCredit(t *testing.T) {
	tests := []struct {
		name    string
		status  AccountStatus
		wantErr error
	}{
		{name: "active account", status: AccountStatusActive, wantErr: nil},
		{name: "frozen account can still receive", status: AccountStatusFrozen, wantErr: nil},
		{name: "inactive account can still receive", status: AccountStatusInactive, wantErr: nil},
		{name: "closed account", status: AccountStatusClosed, wantErr: ErrAccountClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := Account{Status: tt.status}
			if err := account.CanCredit(); err != tt.wantErr {
				t.Errorf("CanCredit() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateAccountRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request CreateAccountRequest
		wantErr error
	}{
		{
			name:    "valid savings account",
			request: CreateAccountRequest{AccountType: AccountTypeSavings, Currency: "USD"},
			wantErr: nil,
		},
		{
			name:    "valid with initial deposit",
			request: CreateAccountRequest{AccountType: AccountTypeChecking, Currency: "EUR", InitialDeposit: "250.00"},
			wantErr: nil,
		},
		{
			name:    "invalid account type",
			request: CreateAccountRequest{AccountType: "premium", Currency: "USD"},
			wantErr: ErrInvalidAccountType,
		},
		{
			name:    "unsupported currency",
			request: CreateAccountRequest{AccountType: AccountTypeSavings, Currency: "NOK"},
			wantErr: ErrInvalidCurrency,
		},
		{
			name:    "negative initial deposit",
			request: CreateAccountRequest{AccountType: AccountTypeSavings, Currency: "USD", InitialDeposit: "-100"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "malformed initial deposit",
			request: CreateAccountRequest{AccountType: AccountTypeSavings, Currency: "USD", InitialDeposit: "abc"},
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
