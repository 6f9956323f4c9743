package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jmarsden/meridian-banking/internal/model"
)

// paymentInterval is how far the next payment date advances after each
// completed payment.
const paymentInterval = 30 * 24 * time.Hour

// Store is the persistence surface the loan service needs
type Store interface {
	CreateLoan(ctx context.Context, loan *model.Loan) error
	GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	GetLoansByOwner(ctx context.Context, ownerID uuid.UUID, status *model.LoanStatus) ([]model.Loan, error)
	GetPendingLoans(ctx context.Context) ([]model.Loan, error)
	UpdateLoan(ctx context.Context, loan *model.Loan) error
	UpdateLoanTerms(ctx context.Context, loan *model.Loan) error
	TransitionLoanStatus(ctx context.Context, id uuid.UUID, from, to model.LoanStatus, reviewer *uuid.UUID, reason string) error
	GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
}

// Mover is the slice of the transaction engine the loan service uses. All
// money movement goes through it; the service never touches balances.
type Mover interface {
	Execute(ctx context.Context, req model.MovementRequest) (*model.Transaction, error)
}

// Service manages loan applications, review, disbursement, and repayment
type Service struct {
	store  Store
	engine Mover
	logger *zap.Logger
}

// NewService creates a loan Service
func NewService(store Store, engine Mover, logger *zap.Logger) *Service {
	return &Service{store: store, engine: engine, logger: logger}
}

// Apply creates a pending loan application with a freshly derived schedule
func (s *Service) Apply(ctx context.Context, ownerID uuid.UUID, loanNumber string, req model.ApplyLoanRequest) (*model.Loan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, model.ErrForbidden
	}

	principal, _ := decimal.NewFromString(req.Principal)
	rate, _ := decimal.NewFromString(req.InterestRate)
	schedule := Amortize(principal, rate, req.TenureMonths)

	now := time.Now()
	loan := &model.Loan{
		ID:               uuid.New(),
		LoanNumber:       loanNumber,
		OwnerID:          ownerID,
		AccountID:        req.AccountID,
		LoanType:         req.LoanType,
		Principal:        principal,
		InterestRate:     rate,
		TenureMonths:     req.TenureMonths,
		EMI:              schedule.EMI,
		TotalAmount:      schedule.TotalAmount,
		RemainingBalance: schedule.RemainingBalance,
		TotalPaid:        decimal.Zero,
		Status:           model.LoanStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateLoan(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// Get returns a loan, enforcing ownership
func (s *Service) Get(ctx context.Context, ownerID, loanID uuid.UUID) (*model.Loan, error) {
	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.OwnerID != ownerID {
		return nil, model.ErrForbidden
	}
	return loan, nil
}

// List returns the owner's loans, optionally filtered by status
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, status *model.LoanStatus) ([]model.Loan, error) {
	return s.store.GetLoansByOwner(ctx, ownerID, status)
}

// Pending returns all loans awaiting review (admin only, enforced upstream)
func (s *Service) Pending(ctx context.Context) ([]model.Loan, error) {
	return s.store.GetPendingLoans(ctx)
}

// UpdateTerms rewrites a pending application's financial terms and
// recomputes the schedule from scratch. Approved loans have frozen terms.
func (s *Service) UpdateTerms(ctx context.Context, ownerID, loanID uuid.UUID, req model.ApplyLoanRequest) (*model.Loan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loan, err := s.Get(ctx, ownerID, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != model.LoanStatusPending {
		return nil, model.ErrLoanNotPending
	}

	principal, _ := decimal.NewFromString(req.Principal)
	rate, _ := decimal.NewFromString(req.InterestRate)
	schedule := Amortize(principal, rate, req.TenureMonths)

	loan.LoanType = req.LoanType
	loan.Principal = principal
	loan.InterestRate = rate
	loan.TenureMonths = req.TenureMonths
	loan.EMI = schedule.EMI
	loan.TotalAmount = schedule.TotalAmount
	loan.RemainingBalance = schedule.RemainingBalance

	if err := s.store.UpdateLoanTerms(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// Approve moves a pending loan to approved
func (s *Service) Approve(ctx context.Context, reviewerID, loanID uuid.UUID) (*model.Loan, error) {
	err := s.store.TransitionLoanStatus(ctx, loanID,
		model.LoanStatusPending, model.LoanStatusApproved, &reviewerID, "")
	if err != nil {
		return nil, err
	}
	return s.store.GetLoan(ctx, loanID)
}

// Reject moves a pending loan to rejected with the reviewer's reason
func (s *Service) Reject(ctx context.Context, reviewerID, loanID uuid.UUID, reason string) (*model.Loan, error) {
	err := s.store.TransitionLoanStatus(ctx, loanID,
		model.LoanStatusPending, model.LoanStatusRejected, &reviewerID, reason)
	if err != nil {
		return nil, err
	}
	return s.store.GetLoan(ctx, loanID)
}

// Disburse credits the principal to the linked account and activates the
// repayment schedule. The status transition claims the loan first so a
// concurrent disbursement cannot pay out twice; if the credit fails the
// claim is released.
func (s *Service) Disburse(ctx context.Context, loanID uuid.UUID) (*model.Loan, error) {
	err := s.store.TransitionLoanStatus(ctx, loanID,
		model.LoanStatusApproved, model.LoanStatusDisbursed, nil, "")
	if err != nil {
		return nil, err
	}

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	_, err = s.engine.Execute(ctx, model.MovementRequest{
		Type:        model.TransactionTypeDeposit,
		ToAccountID: &loan.AccountID,
		OwnerID:     loan.OwnerID,
		Amount:      loan.Principal,
		Description: fmt.Sprintf("Disbursement of loan %s", loan.LoanNumber),
	})
	if err != nil {
		// Release the claim so the disbursement can be retried
		if rbErr := s.store.TransitionLoanStatus(ctx, loanID,
			model.LoanStatusDisbursed, model.LoanStatusApproved, nil, ""); rbErr != nil {
			s.logger.Error("failed to release disbursement claim",
				zap.String("loan_number", loan.LoanNumber),
				zap.Error(rbErr),
			)
		}
		return nil, err
	}

	next := time.Now().Add(paymentInterval)
	loan.Status = model.LoanStatusDisbursed
	loan.NextPaymentDate = &next
	if err := s.store.UpdateLoan(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// Pay applies a payment: validates the loan state and the amount bound,
// moves the money through the engine, then updates the loan's derived
// fields. If the engine call fails, no loan field is mutated.
func (s *Service) Pay(ctx context.Context, ownerID, loanID uuid.UUID, req model.PayLoanRequest) (*model.Loan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	amount, _ := decimal.NewFromString(req.Amount)

	loan, err := s.Get(ctx, ownerID, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.Payable() {
		return nil, model.ErrLoanNotActive
	}
	if amount.GreaterThan(loan.RemainingBalance) {
		return nil, model.ErrPaymentExceedsBalance
	}

	_, err = s.engine.Execute(ctx, model.MovementRequest{
		Type:          model.TransactionTypeLoanPayment,
		FromAccountID: &req.AccountID,
		OwnerID:       ownerID,
		Amount:        amount,
		Description:   fmt.Sprintf("Loan payment for %s", loan.LoanNumber),
	})
	if err != nil {
		return nil, err
	}

	loan.TotalPaid = loan.TotalPaid.Add(amount)
	loan.RemainingBalance = loan.RemainingBalance.Sub(amount)
	loan.NumberOfPayments++

	if loan.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		loan.RemainingBalance = decimal.Zero
		loan.Status = model.LoanStatusClosed
		loan.NextPaymentDate = nil
	} else {
		next := time.Now().Add(paymentInterval)
		loan.NextPaymentDate = &next
	}

	if err := s.store.UpdateLoan(ctx, loan); err != nil {
		// The movement has committed; the loan row is now stale. Surface
		// loudly so it can be reconciled from the ledger.
		s.logger.Error("loan update failed after committed payment",
			zap.String("loan_number", loan.LoanNumber),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return loan, nil
}
