package model

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountType = errors.New("invalid account type: must be savings, checking, or current")
	ErrInvalidCurrency    = errors.New("invalid currency: must be USD, EUR, or GBP")
	ErrAccountNotActive   = errors.New("account is not active")
	ErrAccountNotEmpty    = errors.New("cannot close account with a remaining balance")
	ErrAccountClosed      = errors.New("account is closed")

	// Movement errors
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInsufficientFunds   = errors.New("insufficient balance or below minimum balance requirement")
	ErrSameAccountTransfer = errors.New("source and destination accounts must be different")
	ErrMissingFromAccount  = errors.New("source account is required")
	ErrMissingToAccount    = errors.New("destination account is required")
	ErrUnexpectedAccount   = errors.New("operation does not take that account")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrConcurrencyConflict = errors.New("conflicting concurrent update, please retry")

	// Loan errors
	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanNotActive         = errors.New("loan is not active")
	ErrLoanNotPending        = errors.New("loan is not pending review")
	ErrPaymentExceedsBalance = errors.New("payment amount exceeds remaining balance")
	ErrInvalidLoanType       = errors.New("invalid loan type")
	ErrInvalidPrincipal      = errors.New("principal must be at least 1000")
	ErrInvalidInterestRate   = errors.New("interest rate must be between 0 and 30 percent")
	ErrInvalidTenure         = errors.New("tenure must be between 1 and 360 months")

	// Beneficiary errors
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrBeneficiaryExists   = errors.New("beneficiary with this account number already exists")
	ErrBeneficiaryInvalid  = errors.New("nickname, account number, holder name, and bank name are required")

	// Customer errors
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrEmailAlreadyExists = errors.New("a customer with this email already exists")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooWeak    = errors.New("password must contain upper, lower, and digit characters")
	ErrFirstNameRequired  = errors.New("first name is required")
	ErrLastNameRequired   = errors.New("last name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrAccountSuspended   = errors.New("account is suspended")

	// Authorization errors
	ErrForbidden = errors.New("you do not have access to this resource")
)
