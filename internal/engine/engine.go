// Package engine implements the money-movement core. It is the sole writer
// of account balances: every deposit, withdrawal, transfer, loan payment,
// and interest credit runs through Execute, which validates business rules,
// mutates balances, and appends an immutable ledger entry within one atomic
// unit of work.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jmarsden/meridian-banking/internal/model"
	"github.com/jmarsden/meridian-banking/internal/store"
)

// maxAttempts bounds the transparent retry on concurrency conflicts before
// the error surfaces to the caller.
const maxAttempts = 3

// AtomicStore provides the all-or-nothing unit of work the engine runs in
type AtomicStore interface {
	WithAtomicUnit(ctx context.Context, fn func(u store.UnitStore) error) error
}

// Notifier receives completed movements after commit. Implementations must
// not block the caller; failures are logged and swallowed, never surfaced.
type Notifier interface {
	MovementCompleted(ctx context.Context, entry *model.Transaction) error
}

// Engine executes movement requests against the ledger store
type Engine struct {
	store    AtomicStore
	notifier Notifier
	logger   *zap.Logger
}

// New creates an Engine. notifier may be nil when side effects are not
// wired (tests, one-off tools).
func New(s AtomicStore, notifier Notifier, logger *zap.Logger) *Engine {
	return &Engine{store: s, notifier: notifier, logger: logger}
}

// Execute runs one movement end to end: validate, mutate balances, append
// the ledger entry, commit; then emit side effects outside the atomic
// boundary. Conflicting concurrent units are retried a bounded number of
// times. On any failure no balance change and no ledger row survive.
func (e *Engine) Execute(ctx context.Context, req model.MovementRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var entry *model.Transaction
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		entry, err = e.executeOnce(ctx, req)
		if !errors.Is(err, model.ErrConcurrencyConflict) {
			break
		}
		e.logger.Warn("movement lost atomic unit race, retrying",
			zap.String("type", string(req.Type)),
			zap.Int("attempt", attempt+1),
		)
	}
	if err != nil {
		return nil, err
	}

	// Post-commit side effects: best-effort, never roll back the movement
	if e.notifier != nil {
		if nerr := e.notifier.MovementCompleted(ctx, entry); nerr != nil {
			e.logger.Error("failed to emit movement side effects",
				zap.String("transaction_id", entry.TransactionID),
				zap.Error(nerr),
			)
		}
	}

	return entry, nil
}

func (e *Engine) executeOnce(ctx context.Context, req model.MovementRequest) (*model.Transaction, error) {
	now := time.Now()
	entry := &model.Transaction{
		ID:              uuid.New(),
		TransactionID:   GenerateTransactionID(),
		ReferenceNumber: GenerateReferenceNumber(),
		FromAccountID:   req.FromAccountID,
		ToAccountID:     req.ToAccountID,
		OwnerID:         req.OwnerID,
		Type:            req.Type,
		Amount:          req.Amount,
		Status:          model.TransactionStatusCompleted,
		Description:     req.Description,
		Fee:             decimal.Zero,
		ProcessedAt:     &now,
		CreatedAt:       now,
	}

	err := e.store.WithAtomicUnit(ctx, func(u store.UnitStore) error {
		accounts, err := loadAccounts(ctx, u, req)
		if err != nil {
			return err
		}

		var debited, credited *model.Account
		if req.FromAccountID != nil {
			debited = accounts[*req.FromAccountID]
		}
		if req.ToAccountID != nil {
			credited = accounts[*req.ToAccountID]
		}

		if debited != nil {
			if req.Type != model.TransactionTypeInterest && debited.OwnerID != req.OwnerID {
				return model.ErrForbidden
			}
			if err := debited.CanDebit(req.Amount); err != nil {
				return err
			}
			debited.Balance = debited.Balance.Sub(req.Amount)
		}

		if credited != nil {
			if err := credited.CanCredit(); err != nil {
				return err
			}
			if req.Type == model.TransactionTypeDeposit && credited.OwnerID != req.OwnerID {
				return model.ErrForbidden
			}
			credited.Balance = credited.Balance.Add(req.Amount)
		}

		primary := accounts[req.PrimaryAccountID()]
		entry.BalanceAfter = primary.Balance
		entry.Currency = primary.Currency

		for _, account := range accounts {
			account.LastTransactionAt = &now
			if err := u.SaveAccount(ctx, account); err != nil {
				return err
			}
		}

		return u.AppendEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// loadAccounts locks every implicated account, in ID order so two
// overlapping movements never lock in opposite order.
func loadAccounts(ctx context.Context, u store.UnitStore, req model.MovementRequest) (map[uuid.UUID]*model.Account, error) {
	ids := make([]uuid.UUID, 0, 2)
	if req.FromAccountID != nil {
		ids = append(ids, *req.FromAccountID)
	}
	if req.ToAccountID != nil {
		ids = append(ids, *req.ToAccountID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	accounts := make(map[uuid.UUID]*model.Account, len(ids))
	for _, id := range ids {
		account, err := u.AccountForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts[id] = account
	}

	return accounts, nil
}

// GenerateTransactionID produces a TXN-prefixed identifier from the current
// timestamp and a random suffix. Collisions are caught by the unique
// constraint and retried as a conflict.
func GenerateTransactionID() string {
	return fmt.Sprintf("TXN%d%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// GenerateReferenceNumber produces a REF-prefixed reference number
func GenerateReferenceNumber() string {
	return fmt.Sprintf("REF%d%06d", time.Now().UnixMilli(), rand.Intn(1000000))
}
