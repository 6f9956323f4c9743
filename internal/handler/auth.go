package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jmarsden/meridian-banking/internal/auth"
	"github.com/jmarsden/meridian-banking/internal/middleware"
	"github.com/jmarsden/meridian-banking/internal/model"
)

// AuditSink records who did what. Publishing is best effort; a failed
// audit event never fails the request that triggered it.
type AuditSink interface {
	PublishAudit(ctx context.Context, rec *model.AuditRecord) error
}

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	auth  *auth.Service
	audit AuditSink
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, audit AuditSink) *AuthHandler {
	return &AuthHandler{auth: authService, audit: audit}
}

// RegisterRoutes sets up the public auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
	})
}

// RegisterProtectedRoutes sets up auth routes that require a token
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/change-password", h.ChangePassword)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	customer, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, customer, "Registration successful")
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	tokens, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	// Token subject is the customer ID; use it for the audit trail
	if claims, cerr := h.auth.ValidateToken(tokens.AccessToken); cerr == nil {
		h.record(r.Context(), claims.CustomerID, model.AuditActionLogin, "customer", claims.CustomerID, "customer logged in")
	}

	writeJSON(w, http.StatusOK, tokens, "Login successful")
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	tokens, err := h.auth.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	writeJSON(w, http.StatusOK, tokens, "Tokens refreshed")
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetOwnerID(r.Context())
	if !ok {
		writeError(w, model.ErrInvalidCredentials)
		return
	}

	var req model.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), ownerID, req); err != nil {
		writeError(w, err)
		return
	}

	h.record(r.Context(), ownerID, model.AuditActionPasswordChange, "customer", ownerID, "password changed")

	writeJSON(w, http.StatusOK, nil, "Password changed")
}

func (h *AuthHandler) record(ctx context.Context, actorID uuid.UUID, action model.AuditAction, entityType string, entityID uuid.UUID, description string) {
	recordAudit(ctx, h.audit, actorID, action, entityType, entityID, description)
}

// recordAudit publishes an audit event, tolerating a nil sink so the
// handlers can run without the queue in tests.
func recordAudit(ctx context.Context, sink AuditSink, actorID uuid.UUID, action model.AuditAction, entityType string, entityID uuid.UUID, description string) {
	if sink == nil {
		return
	}
	sink.PublishAudit(ctx, &model.AuditRecord{
		ID:          uuid.New(),
		Action:      action,
		ActorID:     actorID,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Status:      "success",
		CreatedAt:   time.Now(),
	})
}
