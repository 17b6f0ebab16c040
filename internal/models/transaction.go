package models

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionInvestment TransactionType = "investment"
	TransactionProfit     TransactionType = "profit"

	// TransactionAdjustment is written only by the admin override.
	TransactionAdjustment TransactionType = "adjustment"
)

// ParseTransactionType accepts the legacy "withdraw" spelling.
func ParseTransactionType(s string) (TransactionType, error) {
	if s == "withdraw" {
		return TransactionWithdrawal, nil
	}
	switch t := TransactionType(s); t {
	case TransactionDeposit, TransactionWithdrawal, TransactionInvestment, TransactionProfit, TransactionAdjustment:
		return t, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusDeclined  TransactionStatus = "declined"
)

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch st := TransactionStatus(s); st {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusDeclined:
		return st, nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusDeclined
}

type TransactionMethod string

const (
	MethodCrypto TransactionMethod = "crypto"
	MethodBank   TransactionMethod = "bank"
	MethodGlobal TransactionMethod = "global"
)

func ParseTransactionMethod(s string) (TransactionMethod, error) {
	switch m := TransactionMethod(s); m {
	case MethodCrypto, MethodBank, MethodGlobal:
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// TransactionOrigin separates user-initiated, admin-approved changes from
// direct administrative overrides.
type TransactionOrigin string

const (
	OriginUser     TransactionOrigin = "user"
	OriginOverride TransactionOrigin = "override"
	OriginSystem   TransactionOrigin = "system"
)

type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

type Transaction struct {
	ID          string            `db:"id"`
	UserID      string            `db:"user_id"`
	Type        TransactionType   `db:"type"`
	Origin      TransactionOrigin `db:"origin"`
	Direction   Direction         `db:"direction"`
	Amount      decimal.Decimal   `db:"amount"`
	Fee         decimal.Decimal   `db:"fee"`
	Method      string            `db:"method"`
	Status      TransactionStatus `db:"status"`
	EvidenceURL sql.NullString    `db:"evidence_url"`
	Address     sql.NullString    `db:"address"`
	Description sql.NullString    `db:"description"`
	Reason      sql.NullString    `db:"reason"`
	DecidedBy   sql.NullString    `db:"decided_by"`
	DecidedAt   sql.NullTime      `db:"decided_at"`
	CreatedAt   time.Time         `db:"created_at"`
}

// SignedAmount is the effect the transaction has (or will have) on the balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
