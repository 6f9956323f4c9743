package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jmarsden/meridian-banking/internal/middleware"
	"github.com/jmarsden/meridian-banking/internal/model"
	"github.com/jmarsden/meridian-banking/internal/store"
)

// BeneficiaryHandler handles HTTP requests for saved payees
type BeneficiaryHandler struct {
	store *store.Store
	audit AuditSink
}

// NewBeneficiaryHandler creates a new BeneficiaryHandler
func NewBeneficiaryHandler(s *store.Store, audit AuditSink) *BeneficiaryHandler {
	return &BeneficiaryHandler{store: s, audit: audit}
}

// RegisterRoutes sets up the beneficiary routes on the given router
func (h *BeneficiaryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/beneficiaries", func(r chi.Router) {
		r.Post("/", h.Add)
		r.Get("/", h.List)
		r.Delete("/{id}", h.Remove)
	})
}

// Add handles POST /beneficiaries
func (h *BeneficiaryHandler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	var req model.AddBeneficiaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err)
		return
	}

	beneficiary := &model.Beneficiary{
		ID:                uuid.New(),
		OwnerID:           ownerID,
		Nickname:          req.Nickname,
		AccountNumber:     req.AccountNumber,
		AccountHolderName: req.AccountHolderName,
		BankName:          req.BankName,
		AccountType:       req.AccountType,
		CreatedAt:         time.Now(),
	}

	if err := h.store.CreateBeneficiary(r.Context(), beneficiary); err != nil {
		writeError(w, err)
		return
	}

	recordAudit(r.Context(), h.audit, ownerID, model.AuditActionBeneficiaryAdd, "beneficiary", beneficiary.ID,
		fmt.Sprintf("added beneficiary %q", beneficiary.Nickname))

	writeJSON(w, http.StatusCreated, beneficiary, "Beneficiary added")
}

// List handles GET /beneficiaries
func (h *BeneficiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	beneficiaries, err := h.store.GetBeneficiariesByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	if beneficiaries == nil {
		beneficiaries = []model.Beneficiary{}
	}

	writeJSON(w, http.StatusOK, beneficiaries, "Beneficiaries retrieved")
}

// Remove handles DELETE /beneficiaries/{id}
// The delete is owner-scoped; removing another customer's payee reads as
// not found.
func (h *BeneficiaryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "Invalid beneficiary ID format")
		return
	}

	if err := h.store.DeleteBeneficiary(r.Context(), ownerID, id); err != nil {
		writeError(w, err)
		return
	}

	recordAudit(r.Context(), h.audit, ownerID, model.AuditActionBeneficiaryRemove, "beneficiary", id,
		"removed beneficiary")

	writeJSON(w, http.StatusOK, nil, "Beneficiary removed")
}
