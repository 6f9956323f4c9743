package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies what happened
type AuditAction string

const (
	AuditActionLogin             AuditAction = "login"
	AuditActionPasswordChange    AuditAction = "password_change"
	AuditActionAccountCreate     AuditAction = "account_create"
	AuditActionAccountUpdate     AuditAction = "account_update"
	AuditActionAccountClose      AuditAction = "account_close"
	AuditActionTransactionCreate AuditAction = "transaction_create"
	AuditActionLoanApply         AuditAction = "loan_apply"
	AuditActionLoanApprove       AuditAction = "loan_approve"
	AuditActionLoanReject        AuditAction = "loan_reject"
	AuditActionLoanDisburse      AuditAction = "loan_disburse"
	AuditActionLoanPayment       AuditAction = "loan_payment"
	AuditActionBeneficiaryAdd    AuditAction = "beneficiary_add"
	AuditActionBeneficiaryRemove AuditAction = "beneficiary_remove"
)

// AuditRecord is one durable entry in the audit trail. Records are written
// by the side-effect worker after the triggering operation has committed.
type AuditRecord struct {
	ID          uuid.UUID   `json:"id"`
	Action      AuditAction `json:"action"`
	ActorID     uuid.UUID   `json:"actor_id"`
	EntityType  string      `json:"entity_type"`
	EntityID    uuid.UUID   `json:"entity_id"`
	Description string      `json:"description"`
	Status      string      `json:"status"` // "success" or "failure"
	CreatedAt   time.Time   `json:"created_at"`
}

// NotificationType categorizes owner-facing notifications
type NotificationType string

const (
	NotificationTypeTransaction NotificationType = "transaction"
	NotificationTypeLoan        NotificationType = "loan"
	NotificationTypeAccount     NotificationType = "account"
	NotificationTypeSecurity    NotificationType = "security"
)

// Notification is an owner-facing message. Delivery (email etc.) is an
// external collaborator's concern; this record is the handoff point.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	OwnerID   uuid.UUID        `json:"owner_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
