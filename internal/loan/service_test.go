package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jmarsden/meridian-banking/internal/model"
)

// fakeLoanStore keeps loans and accounts in maps
type fakeLoanStore struct {
	loans    map[uuid.UUID]*model.Loan
	accounts map[uuid.UUID]*model.Account
}

func newFakeLoanStore() *fakeLoanStore {
	return &fakeLoanStore{
		loans:    make(map[uuid.UUID]*model.Loan),
		accounts: make(map[uuid.UUID]*model.Account),
	}
}

func (f *fakeLoanStore) CreateLoan(ctx context.Context, loan *model.Loan) error {
	copied := *loan
	f.loans[loan.ID] = &copied
	return nil
}

func (f *fakeLoanStore) GetLoan(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	loan, ok := f.loans[id]
	if !ok {
		return nil, model.ErrLoanNotFound
	}
	copied := *loan
	return &copied, nil
}

func (f *fakeLoanStore) GetLoansByOwner(ctx context.Context, ownerID uuid.UUID, status *model.LoanStatus) ([]model.Loan, error) {
	var out []model.Loan
	for _, loan := range f.loans {
		if loan.OwnerID != ownerID {
			continue
		}
		if status != nil && loan.Status != *status {
			continue
		}
		out = append(out, *loan)
	}
	return out, nil
}

func (f *fakeLoanStore) GetPendingLoans(ctx context.Context) ([]model.Loan, error) {
	var out []model.Loan
	for _, loan := range f.loans {
		if loan.Status == model.LoanStatusPending {
			out = append(out, *loan)
		}
	}
	return out, nil
}

func (f *fakeLoanStore) UpdateLoan(ctx context.Context, loan *model.Loan) error {
	if _, ok := f.loans[loan.ID]; !ok {
		return model.ErrLoanNotFound
	}
	copied := *loan
	f.loans[loan.ID] = &copied
	return nil
}

func (f *fakeLoanStore) UpdateLoanTerms(ctx context.Context, loan *model.Loan) error {
	stored, ok := f.loans[loan.ID]
	if !ok {
		return model.ErrLoanNotFound
	}
	if stored.Status != model.LoanStatusPending {
		return model.ErrLoanNotPending
	}
	copied := *loan
	f.loans[loan.ID] = &copied
	return nil
}

func (f *fakeLoanStore) TransitionLoanStatus(ctx context.Context, id uuid.UUID, from, to model.LoanStatus, reviewer *uuid.UUID, reason string) error {
	loan, ok := f.loans[id]
	if !ok {
		return model.ErrLoanNotFound
	}
	if loan.Status != from {
		if from == model.LoanStatusPending {
			return model.ErrLoanNotPending
		}
		return model.ErrLoanNotActive
	}
	loan.Status = to
	if reviewer != nil {
		loan.ApprovedBy = reviewer
		now := time.Now()
		loan.ApprovedAt = &now
	}
	if reason != "" {
		loan.RejectionReason = reason
	}
	return nil
}

func (f *fakeLoanStore) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account, nil
}

// fakeMover records movement requests and optionally fails
type fakeMover struct {
	requests []model.MovementRequest
	err      error
}

func (m *fakeMover) Execute(ctx context.Context, req model.MovementRequest) (*model.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.requests = append(m.requests, req)
	return &model.Transaction{
		ID:            uuid.New(),
		TransactionID: "TXN1",
		Type:          req.Type,
		Amount:        req.Amount,
		Status:        model.TransactionStatusCompleted,
	}, nil
}

func testSetup(t *testing.T) (*Service, *fakeLoanStore, *fakeMover, uuid.UUID, uuid.UUID) {
	t.Helper()
	store := newFakeLoanStore()
	mover := &fakeMover{}
	service := NewService(store, mover, zap.NewNop())

	ownerID := uuid.New()
	accountID := uuid.New()
	store.accounts[accountID] = &model.Account{
		ID:      accountID,
		OwnerID: ownerID,
		Status:  model.AccountStatusActive,
	}

	return service, store, mover, ownerID, accountID
}

func apply(t *testing.T, service *Service, ownerID, accountID uuid.UUID) *model.Loan {
	t.Helper()
	loan, err := service.Apply(context.Background(), ownerID, "LN1001", model.ApplyLoanRequest{
		AccountID:    accountID,
		LoanType:     model.LoanTypePersonal,
		Principal:    "12000",
		InterestRate: "12",
		TenureMonths: 12,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	return loan
}

func TestApply(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)

	loan := apply(t, service, ownerID, accountID)

	if loan.Status != model.LoanStatusPending {
		t.Errorf("Status = %s, want pending", loan.Status)
	}
	if !loan.EMI.Equal(decimal.RequireFromString("1066.19")) {
		t.Errorf("EMI = %s, want 1066.19", loan.EMI)
	}
	if !loan.TotalAmount.Equal(decimal.RequireFromString("12794.28")) {
		t.Errorf("TotalAmount = %s, want 12794.28", loan.TotalAmount)
	}
	if !loan.RemainingBalance.Equal(loan.TotalAmount) {
		t.Error("fresh loan's remaining balance must equal the total amount")
	}
	if !loan.TotalPaid.IsZero() {
		t.Error("fresh loan must have zero paid")
	}
}

func TestApply_ForeignAccountRejected(t *testing.T) {
	service, _, _, _, accountID := testSetup(t)

	_, err := service.Apply(context.Background(), uuid.New(), "LN1002", model.ApplyLoanRequest{
		AccountID:    accountID,
		LoanType:     model.LoanTypePersonal,
		Principal:    "12000",
		InterestRate: "12",
		TenureMonths: 12,
	})
	if !errors.Is(err, model.ErrForbidden) {
		t.Errorf("Apply() error = %v, want ErrForbidden", err)
	}
}

func TestUpdateTerms_RecomputesSchedule(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)
	loan := apply(t, service, ownerID, accountID)

	updated, err := service.UpdateTerms(context.Background(), ownerID, loan.ID, model.ApplyLoanRequest{
		AccountID:    accountID,
		LoanType:     model.LoanTypePersonal,
		Principal:    "24000",
		InterestRate: "12",
		TenureMonths: 12,
	})
	if err != nil {
		t.Fatalf("UpdateTerms() error = %v", err)
	}

	if !updated.EMI.Equal(decimal.RequireFromString("2132.37")) {
		t.Errorf("EMI = %s, want 2132.37 after doubling principal", updated.EMI)
	}
	if !updated.RemainingBalance.Equal(updated.TotalAmount) {
		t.Error("remaining balance must be reset to the new total")
	}
}

func TestUpdateTerms_FrozenAfterApproval(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)
	loan := apply(t, service, ownerID, accountID)

	if _, err := service.Approve(context.Background(), uuid.New(), loan.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	_, err := service.UpdateTerms(context.Background(), ownerID, loan.ID, model.ApplyLoanRequest{
		AccountID:    accountID,
		LoanType:     model.LoanTypePersonal,
		Principal:    "24000",
		InterestRate: "12",
		TenureMonths: 12,
	})
	if !errors.Is(err, model.ErrLoanNotPending) {
		t.Errorf("UpdateTerms() error = %v, want ErrLoanNotPending", err)
	}
}

func TestApproveRejectTransitions(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)
	reviewerID := uuid.New()

	first := apply(t, service, ownerID, accountID)
	approved, err := service.Approve(context.Background(), reviewerID, first.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if approved.Status != model.LoanStatusApproved {
		t.Errorf("Status = %s, want approved", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != reviewerID {
		t.Error("ApprovedBy should record the reviewer")
	}

	// A decided loan cannot be decided again
	if _, err := service.Reject(context.Background(), reviewerID, first.ID, "no"); !errors.Is(err, model.ErrLoanNotPending) {
		t.Errorf("Reject() on approved loan error = %v, want ErrLoanNotPending", err)
	}

	second := apply(t, service, ownerID, accountID)
	rejected, err := service.Reject(context.Background(), reviewerID, second.ID, "income too low")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != model.LoanStatusRejected {
		t.Errorf("Status = %s, want rejected", rejected.Status)
	}
	if rejected.RejectionReason != "income too low" {
		t.Errorf("RejectionReason = %q, want recorded reason", rejected.RejectionReason)
	}
}

func TestDisburse(t *testing.T) {
	service, _, mover, ownerID, accountID := testSetup(t)
	loan := apply(t, service, ownerID, accountID)

	if _, err := service.Approve(context.Background(), uuid.New(), loan.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	disbursed, err := service.Disburse(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("Disburse() error = %v", err)
	}

	if disbursed.Status != model.LoanStatusDisbursed {
		t.Errorf("Status = %s, want disbursed", disbursed.Status)
	}
	if disbursed.NextPaymentDate == nil {
		t.Error("NextPaymentDate should be scheduled")
	}
	if len(mover.requests) != 1 {
		t.Fatalf("engine received %d requests, want 1", len(mover.requests))
	}
	credit := mover.requests[0]
	if credit.Type != model.TransactionTypeDeposit {
		t.Errorf("movement type = %s, want deposit", credit.Type)
	}
	if !credit.Amount.Equal(loan.Principal) {
		t.Errorf("credited %s, want the principal %s", credit.Amount, loan.Principal)
	}
	if credit.ToAccountID == nil || *credit.ToAccountID != accountID {
		t.Error("principal must be credited to the linked account")
	}
}

func TestDisburse_ReleasesClaimOnEngineFailure(t *testing.T) {
	service, store, mover, ownerID, accountID := testSetup(t)
	loan := apply(t, service, ownerID, accountID)

	if _, err := service.Approve(context.Background(), uuid.New(), loan.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	mover.err = errors.New("engine unavailable")
	if _, err := service.Disburse(context.Background(), loan.ID); err == nil {
		t.Fatal("Disburse() should fail when the credit fails")
	}

	stored, _ := store.GetLoan(context.Background(), loan.ID)
	if stored.Status != model.LoanStatusApproved {
		t.Errorf("Status = %s, want approved (claim released for retry)", stored.Status)
	}
}

func TestDisburse_RequiresApproval(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)
	loan := apply(t, service, ownerID, accountID)

	if _, err := service.Disburse(context.Background(), loan.ID); err == nil {
		t.Error("Disburse() on a pending loan should fail")
	}
}

func disbursedLoan(t *testing.T, service *Service, ownerID, accountID uuid.UUID) *model.Loan {
	t.Helper()
	loan := apply(t, service, ownerID, accountID)
	if _, err := service.Approve(context.Background(), uuid.New(), loan.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	disbursed, err := service.Disburse(context.Background(), loan.ID)
	if err != nil {
		t.Fatalf("Disburse() error = %v", err)
	}
	return disbursed
}

func TestPay(t *testing.T) {
	service, _, mover, ownerID, accountID := testSetup(t)
	loan := disbursedLoan(t, service, ownerID, accountID)

	paid, err := service.Pay(context.Background(), ownerID, loan.ID, model.PayLoanRequest{
		AccountID: accountID,
		Amount:    "1066.19",
	})
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if !paid.TotalPaid.Equal(decimal.RequireFromString("1066.19")) {
		t.Errorf("TotalPaid = %s, want 1066.19", paid.TotalPaid)
	}
	if !paid.RemainingBalance.Equal(decimal.RequireFromString("11728.09")) {
		t.Errorf("RemainingBalance = %s, want 11728.09", paid.RemainingBalance)
	}
	if paid.NumberOfPayments != 1 {
		t.Errorf("NumberOfPayments = %d, want 1", paid.NumberOfPayments)
	}
	if paid.Status != model.LoanStatusDisbursed {
		t.Errorf("Status = %s, should stay disbursed mid-repayment", paid.Status)
	}

	// The second engine request (after disbursement) is the payment debit
	payment := mover.requests[len(mover.requests)-1]
	if payment.Type != model.TransactionTypeLoanPayment {
		t.Errorf("movement type = %s, want loan_payment", payment.Type)
	}
	if payment.FromAccountID == nil || *payment.FromAccountID != accountID {
		t.Error("payment must debit the paying account")
	}
}

func TestPay_PayoffClosesLoan(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)
	loan := disbursedLoan(t, service, ownerID, accountID)

	paid, err := service.Pay(context.Background(), ownerID, loan.ID, model.PayLoanRequest{
		AccountID: accountID,
		Amount:    loan.RemainingBalance.String(),
	})
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if paid.Status != model.LoanStatusClosed {
		t.Errorf("Status = %s, want closed after payoff", paid.Status)
	}
	if !paid.RemainingBalance.IsZero() {
		t.Errorf("RemainingBalance = %s, want 0", paid.RemainingBalance)
	}
	if paid.NextPaymentDate != nil {
		t.Error("closed loan must not schedule another payment")
	}
}

func TestPay_ExceedsBalance(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)
	loan := disbursedLoan(t, service, ownerID, accountID)

	over := loan.RemainingBalance.Add(decimal.RequireFromString("0.01"))
	_, err := service.Pay(context.Background(), ownerID, loan.ID, model.PayLoanRequest{
		AccountID: accountID,
		Amount:    over.String(),
	})
	if !errors.Is(err, model.ErrPaymentExceedsBalance) {
		t.Errorf("Pay() error = %v, want ErrPaymentExceedsBalance", err)
	}
}

func TestPay_RequiresPayableLoan(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)
	loan := apply(t, service, ownerID, accountID)

	_, err := service.Pay(context.Background(), ownerID, loan.ID, model.PayLoanRequest{
		AccountID: accountID,
		Amount:    "100",
	})
	if !errors.Is(err, model.ErrLoanNotActive) {
		t.Errorf("Pay() on pending loan error = %v, want ErrLoanNotActive", err)
	}
}

func TestPay_EngineFailureLeavesLoanUntouched(t *testing.T) {
	service, store, mover, ownerID, accountID := testSetup(t)
	loan := disbursedLoan(t, service, ownerID, accountID)

	mover.err = errors.New("engine unavailable")
	_, err := service.Pay(context.Background(), ownerID, loan.ID, model.PayLoanRequest{
		AccountID: accountID,
		Amount:    "1066.19",
	})
	if err == nil {
		t.Fatal("Pay() should fail when the movement fails")
	}

	stored, _ := store.GetLoan(context.Background(), loan.ID)
	if !stored.TotalPaid.IsZero() {
		t.Errorf("TotalPaid = %s, want untouched 0", stored.TotalPaid)
	}
	if stored.NumberOfPayments != 0 {
		t.Errorf("NumberOfPayments = %d, want untouched 0", stored.NumberOfPayments)
	}
}

func TestGet_EnforcesOwnership(t *testing.T) {
	service, _, _, ownerID, accountID := testSetup(t)
	loan := apply(t, service, ownerID, accountID)

	if _, err := service.Get(context.Background(), uuid.New(), loan.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("Get() with foreign owner error = %v, want ErrForbidden", err)
	}
}
