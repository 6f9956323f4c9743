package model

import (
	"time"
	"unicode"

	"github.com/google/uuid"
)

// CustomerStatus represents the current status of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusSuspended CustomerStatus = "suspended"
	CustomerStatusClosed    CustomerStatus = "closed"
)

// Role determines what a caller may do. Admins review loans; customers
// operate only on resources they own.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Customer represents an account holder
type Customer struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash!
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`

	// Status & security
	Status              CustomerStatus `json:"status"`
	FailedLoginAttempts int            `json:"-"`
	LockedUntil         *time.Time     `json:"-"`
	LastLoginAt         *time.Time     `json:"last_login_at,omitempty"`
	PasswordChangedAt   *time.Time     `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLocked returns true if the customer account is currently locked
func (c *Customer) IsLocked() bool {
	if c.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*c.LockedUntil)
}

// CanLogin returns true if the customer is allowed to attempt login
func (c *Customer) CanLogin() bool {
	return c.Status == CustomerStatusActive && !c.IsLocked()
}

// CreateCustomerRequest is the payload for registration
type CreateCustomerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate checks if the registration request is valid
func (r CreateCustomerRequest) Validate() error {
	if r.Email == "" || !isValidEmail(r.Email) {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return ErrPasswordTooShort
	}
	if !isStrongPassword(r.Password) {
		return ErrPasswordTooWeak
	}
	if r.FirstName == "" {
		return ErrFirstNameRequired
	}
	if r.LastName == "" {
		return ErrLastNameRequired
	}
	return nil
}

// LoginRequest is the payload for authentication
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the login request has required fields
func (r LoginRequest) Validate() error {
	if r.Email == "" {
		return ErrInvalidEmail
	}
	if r.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// ChangePasswordRequest is the payload for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate checks if the change request is valid
func (r ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return ErrPasswordRequired
	}
	if len(r.NewPassword) < 8 {
		return ErrPasswordTooShort
	}
	if !isStrongPassword(r.NewPassword) {
		return ErrPasswordTooWeak
	}
	return nil
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex < 1 || atIndex >= len(email)-1 {
		return false
	}
	for _, c := range email[atIndex+1:] {
		if c == '.' {
			return true
		}
	}
	return false
}

// isStrongPassword checks password complexity
// Requires: at least one uppercase, one lowercase, one digit
func isStrongPassword(password string) bool {
	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
