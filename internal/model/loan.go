package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanType represents the purpose category of a loan
type LoanType string

const (
	LoanTypePersonal  LoanType = "personal"
	LoanTypeHome      LoanType = "home"
	LoanTypeCar       LoanType = "car"
	LoanTypeEducation LoanType = "education"
	LoanTypeBusiness  LoanType = "business"
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusDisbursed LoanStatus = "disbursed"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusClosed    LoanStatus = "closed"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

// Loan tracks one loan from application through payoff. EMI, total amount,
// and remaining balance are derived from principal/rate/tenure; payments
// flow through the transaction engine, never directly against the account.
type Loan struct {
	ID               uuid.UUID       `json:"id"`
	LoanNumber       string          `json:"loan_number"`
	OwnerID          uuid.UUID       `json:"owner_id"`
	AccountID        uuid.UUID       `json:"account_id"`
	LoanType         LoanType        `json:"loan_type"`
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	TenureMonths     int             `json:"tenure_months"`
	EMI              decimal.Decimal `json:"emi"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	NumberOfPayments int             `json:"number_of_payments"`
	Status           LoanStatus      `json:"status"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	NextPaymentDate  *time.Time      `json:"next_payment_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Payable reports whether the loan currently accepts payments.
func (l *Loan) Payable() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusDisbursed
}

// Progress returns the percentage of the total amount already repaid.
func (l *Loan) Progress() decimal.Decimal {
	if l.TotalAmount.IsZero() {
		return decimal.Zero
	}
	return l.TotalAmount.Sub(l.RemainingBalance).
		Div(l.TotalAmount).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

var (
	minPrincipal = decimal.NewFromInt(1000)
	maxRate      = decimal.NewFromInt(30)
)

// ApplyLoanRequest is the payload for a loan application
type ApplyLoanRequest struct {
	AccountID    uuid.UUID `json:"account_id"`
	LoanType     LoanType  `json:"loan_type"`
	Principal    string    `json:"principal"`
	InterestRate string    `json:"interest_rate"`
	TenureMonths int       `json:"tenure_months"`
}

// Validate checks if the application is valid
func (r ApplyLoanRequest) Validate() error {
	switch r.LoanType {
	case LoanTypePersonal, LoanTypeHome, LoanTypeCar, LoanTypeEducation, LoanTypeBusiness:
	default:
		return ErrInvalidLoanType
	}

	principal, err := decimal.NewFromString(r.Principal)
	if err != nil || principal.LessThan(minPrincipal) {
		return ErrInvalidPrincipal
	}

	rate, err := decimal.NewFromString(r.InterestRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(maxRate) {
		return ErrInvalidInterestRate
	}

	if r.TenureMonths < 1 || r.TenureMonths > 360 {
		return ErrInvalidTenure
	}

	return nil
}

// PayLoanRequest is the payload for a loan payment
type PayLoanRequest struct {
	AccountID uuid.UUID `json:"account_id"`
	Amount    string    `json:"amount"`
}

// Validate checks if the payment request is valid
func (r PayLoanRequest) Validate() error {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil || !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// RejectLoanRequest carries the reviewer's reason for rejecting a loan
type RejectLoanRequest struct {
	Reason string `json:"reason"`
}
