package models

import "time"

type EventKind string

const (
	EventTransactionDecided EventKind = "transaction.decided"
	EventOverrideApplied    EventKind = "override.applied"
	EventKYCDecided         EventKind = "kyc.decided"
)

// LedgerEvent is published after a state change commits. Consumers must
// tolerate duplicates.
type LedgerEvent struct {
	Kind          EventKind `json:"kind"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Type          string    `json:"type,omitempty"`
	Status        string    `json:"status,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Direction     string    `json:"direction,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Description   string    `json:"description,omitempty"`
	KYCLevel      string    `json:"kyc_level,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
