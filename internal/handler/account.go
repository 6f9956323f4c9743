package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmarsden/meridian-banking/internal/engine"
	"github.com/jmarsden/meridian-banking/internal/middleware"
	"github.com/jmarsden/meridian-banking/internal/model"
	"github.com/jmarsden/meridian-banking/internal/store"
)

// AccountHandler handles HTTP requests for accounts
type AccountHandler struct {
	store  *store.Store
	engine *engine.Engine
	audit  AuditSink
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(s *store.Store, e *engine.Engine, audit AuditSink) *AccountHandler {
	return &AccountHandler{store: s, engine: e, audit: audit}
}

// RegisterRoutes sets up the account routes on the given router
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Close)
	})
}

// Create handles POST /accounts
// An optional initial deposit is routed through the transaction engine so
// the opening balance is backed by a ledger entry.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	var req model.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	account := &model.Account{
		ID:             uuid.New(),
		AccountNumber:  store.GenerateAccountNumber(),
		OwnerID:        ownerID,
		AccountType:    req.AccountType,
		Balance:        decimal.Zero,
		Currency:       req.Currency,
		Status:         model.AccountStatusActive,
		InterestRate:   decimal.Zero,
		MinimumBalance: decimal.Zero,
		OpenedAt:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.store.CreateAccount(r.Context(), account); err != nil {
		writeError(w, err)
		return
	}

	if req.InitialDeposit != "" {
		amount, _ := decimal.NewFromString(req.InitialDeposit)
		if amount.IsPositive() {
			txn, err := h.engine.Execute(r.Context(), model.MovementRequest{
				Type:        model.TransactionTypeDeposit,
				ToAccountID: &account.ID,
				OwnerID:     ownerID,
				Amount:      amount,
				Description: "Initial deposit",
			})
			if err != nil {
				writeError(w, err)
				return
			}
			account.Balance = txn.BalanceAfter
		}
	}

	h.record(r.Context(), ownerID, model.AuditActionAccountCreate, "account", account.ID,
		fmt.Sprintf("opened %s account %s", account.AccountType, account.AccountNumber))

	writeJSON(w, http.StatusCreated, account, "Account created")
}

// List handles GET /accounts
// Returns only accounts belonging to the authenticated customer
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	accounts, err := h.store.GetAccountsByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Return empty array instead of null if no accounts
	if accounts == nil {
		accounts = []model.Account{}
	}

	writeJSON(w, http.StatusOK, accounts, "Accounts retrieved")
}

// GetByID handles GET /accounts/{id}
func (h *AccountHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownedAccount(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, account, "Account retrieved")
}

// Update handles PATCH /accounts/{id}
// Only status and minimum balance are editable; the balance belongs to
// the transaction engine.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownedAccount(w, r)
	if !ok {
		return
	}

	var req model.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	status := account.Status
	if req.Status != nil {
		status = *req.Status
	}
	minimumBalance := account.MinimumBalance
	if req.MinimumBalance != nil {
		minimumBalance, _ = decimal.NewFromString(*req.MinimumBalance)
	}

	if err := h.store.UpdateAccountProfile(r.Context(), account.ID, status, minimumBalance); err != nil {
		writeError(w, err)
		return
	}

	account.Status = status
	account.MinimumBalance = minimumBalance

	h.record(r.Context(), account.OwnerID, model.AuditActionAccountUpdate, "account", account.ID,
		fmt.Sprintf("updated account %s", account.AccountNumber))

	writeJSON(w, http.StatusOK, account, "Account updated")
}

// Close handles DELETE /accounts/{id}
// Closing requires a zero balance; withdraw or transfer funds out first.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownedAccount(w, r)
	if !ok {
		return
	}

	if err := h.store.CloseAccount(r.Context(), account.ID); err != nil {
		writeError(w, err)
		return
	}

	h.record(r.Context(), account.OwnerID, model.AuditActionAccountClose, "account", account.ID,
		fmt.Sprintf("closed account %s", account.AccountNumber))

	writeJSON(w, http.StatusOK, nil, "Account closed")
}

// ownedAccount loads the {id} account and enforces ownership. On failure
// it writes the error response and returns ok=false.
func (h *AccountHandler) ownedAccount(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid account ID format")
		return nil, false
	}

	account, err := h.store.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	if account.OwnerID != ownerID {
		writeError(w, model.ErrForbidden)
		return nil, false
	}

	return account, true
}

func (h *AccountHandler) record(ctx context.Context, actorID uuid.UUID, action model.AuditAction, entityType string, entityID uuid.UUID, description string) {
	recordAudit(ctx, h.audit, actorID, action, entityType, entityID, description)
}
