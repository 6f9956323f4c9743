// Package handler exposes the banking operations over HTTP. Handlers
// decode and authorize requests, delegate to the domain services, and
// wrap every reply in a uniform response envelope.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmarsden/meridian-banking/internal/model"
)

// Response is the envelope every endpoint replies with
type Response struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// writeJSON writes a success envelope
func writeJSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// writeError maps a domain error to an HTTP status and writes a failure
// envelope
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		StatusCode: status,
		Message:    err.Error(),
		Success:    false,
	})
}

// writeBadRequest is for request-shape problems (malformed JSON, bad
// IDs) that never reach the domain layer
func writeBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(Response{
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Success:    false,
	})
}

// statusFor translates sentinel errors into HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrAccountNotFound),
		errors.Is(err, model.ErrTransactionNotFound),
		errors.Is(err, model.ErrLoanNotFound),
		errors.Is(err, model.ErrBeneficiaryNotFound),
		errors.Is(err, model.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrAccountLocked):
		return http.StatusLocked
	case errors.Is(err, model.ErrEmailAlreadyExists),
		errors.Is(err, model.ErrBeneficiaryExists),
		errors.Is(err, model.ErrConcurrencyConflict),
		errors.Is(err, model.ErrAccountNotEmpty):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrInsufficientFunds),
		errors.Is(err, model.ErrSameAccountTransfer),
		errors.Is(err, model.ErrMissingFromAccount),
		errors.Is(err, model.ErrMissingToAccount),
		errors.Is(err, model.ErrUnexpectedAccount),
		errors.Is(err, model.ErrInvalidAccountType),
		errors.Is(err, model.ErrInvalidCurrency),
		errors.Is(err, model.ErrAccountNotActive),
		errors.Is(err, model.ErrAccountClosed),
		errors.Is(err, model.ErrAccountSuspended),
		errors.Is(err, model.ErrLoanNotActive),
		errors.Is(err, model.ErrLoanNotPending),
		errors.Is(err, model.ErrPaymentExceedsBalance),
		errors.Is(err, model.ErrInvalidLoanType),
		errors.Is(err, model.ErrInvalidPrincipal),
		errors.Is(err, model.ErrInvalidInterestRate),
		errors.Is(err, model.ErrInvalidTenure),
		errors.Is(err, model.ErrBeneficiaryInvalid),
		errors.Is(err, model.ErrInvalidEmail),
		errors.Is(err, model.ErrPasswordRequired),
		errors.Is(err, model.ErrPasswordTooShort),
		errors.Is(err, model.ErrPasswordTooWeak),
		errors.Is(err, model.ErrFirstNameRequired),
		errors.Is(err, model.ErrLastNameRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
