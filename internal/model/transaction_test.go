package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestMovementRequest_Validate(t *testing.T) {
	fromID := uuid.New()
	toID := uuid.New()
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		request MovementRequest
		wantErr error
	}{
		{
			name: "valid deposit",
			request: MovementRequest{
				Type:        TransactionTypeDeposit,
				ToAccountID: &toID,
				Amount:      amount,
			},
			wantErr: nil,
		},
		{
			name: "deposit missing destination",
			request: MovementRequest{
				Type:   TransactionTypeDeposit,
				Amount: amount,
			},
			wantErr: ErrMissingToAccount,
		},
		{
			name: "deposit with unexpected source",
			request: MovementRequest{
				Type:          TransactionTypeDeposit,
				FromAccountID: &fromID,
				ToAccountID:   &toID,
				Amount:        amount,
			},
			wantErr: ErrUnexpectedAccount,
		},
		{
			name: "valid withdrawal",
			request: MovementRequest{
				Type:          TransactionTypeWithdrawal,
				FromAccountID: &fromID,
				Amount:        amount,
			},
			wantErr: nil,
		},
		{
			name: "withdrawal missing source",
			request: MovementRequest{
				Type:   TransactionTypeWithdrawal,
				Amount: amount,
			},
			wantErr: ErrMissingFromAccount,
		},
		{
			name: "withdrawal with unexpected destination",
			request: MovementRequest{
				Type:          TransactionTypeWithdrawal,
				FromAccountID: &fromID,
				ToAccountID:   &toID,
				Amount:        amount,
			},
			wantErr: ErrUnexpectedAccount,
		},
		{
			name: "valid transfer",
			request: MovementRequest{
				Type:          TransactionTypeTransfer,
				FromAccountID: &fromID,
				ToAccountID:   &toID,
				Amount:        amount,
			},
			wantErr: nil,
		},
		{
			name: "transfer missing source",
			request: MovementRequest{
				Type:        TransactionTypeTransfer,
				ToAccountID: &toID,
				Amount:      amount,
			},
			wantErr: ErrMissingFromAccount,
		},
		{
			name: "transfer missing destination",
			request: MovementRequest{
				Type:          TransactionTypeTransfer,
				FromAccountID: &fromID,
				Amount:        amount,
			},
			wantErr: ErrMissingToAccount,
		},
		{
			name: "same account transfer",
			request: MovementRequest{
				Type:          TransactionTypeTransfer,
				FromAccountID: &fromID,
				ToAccountID:   &fromID,
				Amount:        amount,
			},
			wantErr: ErrSameAccountTransfer,
		},
		{
			name: "valid loan payment",
			request: MovementRequest{
				Type:          TransactionTypeLoanPayment,
				FromAccountID: &fromID,
				Amount:        amount,
			},
			wantErr: nil,
		},
		{
			name: "valid interest credit",
			request: MovementRequest{
				Type:        TransactionTypeInterest,
				ToAccountID: &toID,
				Amount:      amount,
			},
			wantErr: nil,
		},
		{
			name: "zero amount",
			request: MovementRequest{
				Type:        TransactionTypeDeposit,
				ToAccountID: &toID,
				Amount:      decimal.Zero,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			request: MovementRequest{
				Type:        TransactionTypeDeposit,
				ToAccountID: &toID,
				Amount:      decimal.NewFromInt(-50),
			},
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

func TestMovementRequest_PrimaryAccountID(t *testing.T) {
	fromID := uuid.New()
	toID := uuid.New()

	tests := []struct {
		name    string
		request MovementRequest
		want    uuid.UUID
	}{
		{
			name: "deposit uses credited account",
			request: MovementRequest{
				Type:        TransactionTypeDeposit,
				ToAccountID: &toID,
			},
			want: toID,
		},
		{
			name: "interest uses credited account",
			request: MovementRequest{
				Type:        TransactionTypeInterest,
				ToAccountID: &toID,
			},
			want: toID,
		},
		{
			name: "withdrawal uses debited account",
			request: MovementRequest{
				Type:          TransactionTypeWithdrawal,
				FromAccountID: &fromID,
			},
			want: fromID,
		},
		{
			name: "transfer uses debited account",
			request: MovementRequest{
				Type:          TransactionTypeTransfer,
				FromAccountID: &fromID,
				ToAccountID:   &toID,
			},
			want: fromID,
		},
		{
			name: "loan payment uses debited account",
			request: MovementRequest{
				Type:          TransactionTypeLoanPayment,
				FromAccountID: &fromID,
			},
			want: fromID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.request.PrimaryAccountID(); got != tt.want {
				t.Errorf("PrimaryAccountID() = %v, want %v", got, tt.want)
			}
		})
	}
}
