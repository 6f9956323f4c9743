package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jmarsden/meridian-banking/internal/loan"
	"github.com/jmarsden/meridian-banking/internal/middleware"
	"github.com/jmarsden/meridian-banking/internal/model"
	"github.com/jmarsden/meridian-banking/internal/store"
)

// LoanHandler handles HTTP requests for loans
type LoanHandler struct {
	loans *loan.Service
	audit AuditSink
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loans *loan.Service, audit AuditSink) *LoanHandler {
	return &LoanHandler{loans: loans, audit: audit}
}

// RegisterRoutes sets up the customer-facing loan routes
func (h *LoanHandler) RegisterRoutes(r chi.Router) {
	r.Route("/loans", func(r chi.Router) {
		r.Post("/", h.Apply)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Patch("/{id}", h.UpdateTerms)
		r.Post("/{id}/payments", h.Pay)
	})
}

// RegisterAdminRoutes sets up the reviewer-only loan routes
func (h *LoanHandler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/admin/loans", func(r chi.Router) {
		r.Get("/pending", h.Pending)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
		r.Post("/{id}/disburse", h.Disburse)
	})
}

// Apply handles POST /loans
func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	var req model.ApplyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	l, err := h.loans.Apply(r.Context(), ownerID, store.GenerateLoanNumber(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	recordAudit(r.Context(), h.audit, ownerID, model.AuditActionLoanApply, "loan", l.ID,
		fmt.Sprintf("applied for %s loan %s", l.LoanType, l.LoanNumber))

	writeJSON(w, http.StatusCreated, l, "Loan application submitted")
}

// List handles GET /loans
// Optional query parameter: status
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	var status *model.LoanStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := model.LoanStatus(v)
		status = &s
	}

	loans, err := h.loans.List(r.Context(), ownerID, status)
	if err != nil {
		writeError(w, err)
		return
	}

	if loans == nil {
		loans = []model.Loan{}
	}

	writeJSON(w, http.StatusOK, loans, "Loans retrieved")
}

// GetByID handles GET /loans/{id}
func (h *LoanHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid loan ID format")
		return
	}

	l, err := h.loans.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l, "Loan retrieved")
}

// UpdateTerms handles PATCH /loans/{id}
// Terms are editable only while the application is pending review.
func (h *LoanHandler) UpdateTerms(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid loan ID format")
		return
	}

	var req model.ApplyLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	l, err := h.loans.UpdateTerms(r.Context(), ownerID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l, "Loan terms updated")
}

// Pay handles POST /loans/{id}/payments
func (h *LoanHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid loan ID format")
		return
	}

	var req model.PayLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	l, err := h.loans.Pay(r.Context(), ownerID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	recordAudit(r.Context(), h.audit, ownerID, model.AuditActionLoanPayment, "loan", l.ID,
		fmt.Sprintf("paid %s toward loan %s", req.Amount, l.LoanNumber))

	writeJSON(w, http.StatusOK, l, "Payment recorded")
}

// Pending handles GET /admin/loans/pending
func (h *LoanHandler) Pending(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loans.Pending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if loans == nil {
		loans = []model.Loan{}
	}

	writeJSON(w, http.StatusOK, loans, "Pending loans retrieved")
}

// Approve handles POST /admin/loans/{id}/approve
func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid loan ID format")
		return
	}

	l, err := h.loans.Approve(r.Context(), reviewerID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	recordAudit(r.Context(), h.audit, reviewerID, model.AuditActionLoanApprove, "loan", l.ID,
		fmt.Sprintf("approved loan %s", l.LoanNumber))

	writeJSON(w, http.StatusOK, l, "Loan approved")
}

// Reject handles POST /admin/loans/{id}/reject
func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid loan ID format")
		return
	}

	var req model.RejectLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	l, err := h.loans.Reject(r.Context(), reviewerID, id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}

	recordAudit(r.Context(), h.audit, reviewerID, model.AuditActionLoanReject, "loan", l.ID,
		fmt.Sprintf("rejected loan %s", l.LoanNumber))

	writeJSON(w, http.StatusOK, l, "Loan rejected")
}

// Disburse handles POST /admin/loans/{id}/disburse
// Credits the principal to the linked account through the transaction
// engine and activates the repayment schedule.
func (h *LoanHandler) Disburse(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid loan ID format")
		return
	}

	l, err := h.loans.Disburse(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	recordAudit(r.Context(), h.audit, reviewerID, model.AuditActionLoanDisburse, "loan", l.ID,
		fmt.Sprintf("disbursed loan %s", l.LoanNumber))

	writeJSON(w, http.StatusOK, l, "Loan disbursed")
}
