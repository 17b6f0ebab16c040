package models

import "time"

type AuditLog struct {
	ID        string    `db:"id"`
	ActorID   *string   `db:"actor_id"`
	UserID    *string   `db:"user_id"`
	Entity    string    `db:"entity"`
	EntityID  string    `db:"entity_id"`
	Action    string    `db:"action"`
	Metadata  []byte    `db:"metadata"`
	CreatedAt time.Time `db:"created_at"`
}

const (
	AuditEntityTransaction = "transaction"
	AuditEntityUser        = "user"
	AuditEntitySettings    = "settings"
)

const (
	AuditActionDepositRequested    = "deposit.requested"
	AuditActionWithdrawalRequested = "withdrawal.requested"
	AuditActionTransactionDecided  = "transaction.decided"
	AuditActionOverrideApplied     = "override.applied"
	AuditActionWithdrawalLock      = "restriction.withdrawal"
	AuditActionKYCSubmitted        = "kyc.submitted"
	AuditActionKYCDecided          = "kyc.decided"
	AuditActionSettingsUpdated     = "settings.updated"
	AuditActionUserRegistered      = "user.registered"
)
