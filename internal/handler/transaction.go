package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmarsden/meridian-banking/internal/engine"
	"github.com/jmarsden/meridian-banking/internal/middleware"
	"github.com/jmarsden/meridian-banking/internal/model"
	"github.com/jmarsden/meridian-banking/internal/query"
	"github.com/jmarsden/meridian-banking/internal/store"
)

// TransactionHandler handles HTTP requests for money movements and
// ledger queries
type TransactionHandler struct {
	store  *store.Store
	engine *engine.Engine
	query  *query.Facade
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(s *store.Store, e *engine.Engine, q *query.Facade) *TransactionHandler {
	return &TransactionHandler{store: s, engine: e, query: q}
}

// RegisterRoutes sets up the transaction routes on the given router
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Post("/transfer", h.Transfer)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
	})
	r.Get("/statements/{accountID}", h.Statement)
}

// movementBody is the wire shape shared by the movement endpoints. The
// amount travels as a string so no precision is lost in transit.
type movementBody struct {
	FromAccountID *uuid.UUID `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID `json:"to_account_id,omitempty"`
	Amount        string     `json:"amount"`
	Description   string     `json:"description,omitempty"`
}

// Deposit handles POST /transactions/deposit
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, model.TransactionTypeDeposit)
}

// Withdraw handles POST /transactions/withdraw
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, model.TransactionTypeWithdrawal)
}

// Transfer handles POST /transactions/transfer
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, model.TransactionTypeTransfer)
}

func (h *TransactionHandler) execute(w http.ResponseWriter, r *http.Request, txType model.TransactionType) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	var body movementBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, model.ErrInvalidAmount)
		return
	}

	txn, err := h.engine.Execute(r.Context(), model.MovementRequest{
		Type:          txType,
		FromAccountID: body.FromAccountID,
		ToAccountID:   body.ToAccountID,
		OwnerID:       ownerID,
		Amount:        amount,
		Description:   body.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, txn, "Transaction completed")
}

// List handles GET /transactions
// Query parameters: account_id, type, status, start_date, end_date
// (RFC 3339), page, page_size
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	filter := query.Filter{OwnerID: ownerID}
	q := r.URL.Query()

	if v := q.Get("account_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeBadRequest(w, "Invalid account_id format")
			return
		}
		filter.AccountID = &id
	}
	if v := q.Get("type"); v != "" {
		t := model.TransactionType(v)
		filter.Type = &t
	}
	if v := q.Get("status"); v != "" {
		s := model.TransactionStatus(v)
		filter.Status = &s
	}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "Invalid start_date: use RFC 3339")
			return
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "Invalid end_date: use RFC 3339")
			return
		}
		filter.EndDate = &t
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	page, err := h.query.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page, "Transactions retrieved")
}

// GetByID handles GET /transactions/{id}
func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid transaction ID format")
		return
	}

	txn, err := h.store.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if txn.OwnerID != ownerID {
		writeError(w, model.ErrForbidden)
		return
	}

	writeJSON(w, http.StatusOK, txn, "Transaction retrieved")
}

// Statement handles GET /statements/{accountID}
// Query parameters: start_date and end_date (RFC 3339); defaults to the
// last 30 days.
func (h *TransactionHandler) Statement(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		writeBadRequest(w, "Invalid account ID format")
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	q := r.URL.Query()
	if v := q.Get("start_date"); v != "" {
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			writeBadRequest(w, "Invalid start_date: use RFC 3339")
			return
		}
		start = t
	}
	if v := q.Get("end_date"); v != "" {
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			writeBadRequest(w, "Invalid end_date: use RFC 3339")
			return
		}
		end = t
	}
	if end.Before(start) {
		writeBadRequest(w, "end_date must not be before start_date")
		return
	}

	statement, err := h.query.AccountStatement(r.Context(), ownerID, accountID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statement, "Statement generated")
}
