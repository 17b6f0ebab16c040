package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/validator"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const (
	ReasonWithdrawalLocked    = "withdrawals are locked for this account"
	ReasonInsufficientBalance = "insufficient balance at approval time"
	ReasonWithdrawalsDisabled = "withdrawals are disabled platform-wide"
)

type DecisionInput struct {
	UserID        string
	TransactionID string
	Outcome       models.TransactionStatus
	Reason        string
}

// Decision is the outcome actually applied. Forced is set when an approval
// was turned into a decline because the account no longer qualified.
type Decision struct {
	Transaction *models.Transaction
	Requested   models.TransactionStatus
	Forced      bool
	Balance     decimal.Decimal
}

// Decide resolves a pending deposit or withdrawal. The status change, the
// balance mutation and the audit row commit together.
func (s *Service) Decide(ctx context.Context, actor models.Actor, input DecisionInput) (*Decision, error) {
	var v validator.Validator

	v.Check(validator.NotBlank(input.UserID), "User is required")
	v.Check(validator.NotBlank(input.TransactionID), "Transaction is required")
	v.Check(input.Outcome.IsTerminal(), "Status must be completed or declined")
	v.Check(validator.MaxRunes(input.Reason, 500), "Reason must not be more than 500 characters")

	if v.HasErrors() {
		return nil, models.NewValidationError(v.Errors...)
	}

	withdrawalsEnabled := true
	if input.Outcome == models.TransactionStatusCompleted {
		current, err := s.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		withdrawalsEnabled = current.WithdrawalEnabled
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := s.lockUser(ctx, tx, input.UserID)
	if err != nil {
		return nil, err
	}

	txn, found, err := s.db.Transaction().GetOne(ctx, tx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if !found || txn.UserID != user.ID {
		return nil, fmt.Errorf("transaction %s: %w", input.TransactionID, models.ErrNotFound)
	}

	if txn.Type != models.TransactionDeposit && txn.Type != models.TransactionWithdrawal {
		return nil, fmt.Errorf("%s transactions are not reviewed: %w", txn.Type, models.ErrInvalidState)
	}
	if txn.Status.IsTerminal() {
		s.logger.Warn("transaction already decided",
			"admin_id", actor.ID,
			"transaction_id", txn.ID,
			"status", txn.Status,
			"requested", input.Outcome,
		)
		return nil, fmt.Errorf("transaction already %s: %w", txn.Status, models.ErrInvalidState)
	}

	final := input.Outcome
	reason := input.Reason
	balance := user.Balance
	now := s.now()

	if final == models.TransactionStatusCompleted {
		final, reason, err = s.applyApproval(ctx, tx, user, txn, withdrawalsEnabled, now)
		if err != nil {
			return nil, err
		}
		if final == models.TransactionStatusCompleted {
			balance = balance.Add(txn.SignedAmount())
		}
	}

	if err := s.db.Transaction().Finalize(ctx, tx, txn.ID, final, reason, actor.ID, now); err != nil {
		return nil, err
	}

	err = s.audit(ctx, tx, actor.ID, user.ID, models.AuditEntityTransaction, txn.ID, models.AuditActionTransactionDecided, map[string]any{
		"type":           txn.Type,
		"amount":         txn.Amount.StringFixed(2),
		"prior_status":   txn.Status,
		"requested":      input.Outcome,
		"status":         final,
		"reason":         reason,
		"balance_before": user.Balance.StringFixed(2),
		"balance_after":  balance.StringFixed(2),
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	txn.Status = final
	txn.Reason = nullString(reason)
	txn.DecidedBy = nullString(actor.ID)
	txn.DecidedAt.Time, txn.DecidedAt.Valid = now, true

	s.logger.Info("transaction decided",
		"admin_id", actor.ID,
		"user_id", user.ID,
		"transaction_id", txn.ID,
		"type", txn.Type,
		"requested", input.Outcome,
		"status", final,
		"balance_before", user.Balance.StringFixed(2),
		"balance_after", balance.StringFixed(2),
	)

	s.publish(ctx, models.LedgerEvent{
		Kind:          models.EventTransactionDecided,
		UserID:        user.ID,
		TransactionID: txn.ID,
		Type:          string(txn.Type),
		Status:        string(final),
		Amount:        txn.Amount.StringFixed(2),
		Direction:     string(txn.Direction),
		Reason:        reason,
		OccurredAt:    now,
	})

	return &Decision{
		Transaction: txn,
		Requested:   input.Outcome,
		Forced:      final != input.Outcome,
		Balance:     balance,
	}, nil
}

// applyApproval re-validates the account and the platform withdrawal switch,
// then moves the money. When either no longer allows it the approval becomes
// a decline.
func (s *Service) applyApproval(ctx context.Context, tx *sqlx.Tx, user *models.User, txn *models.Transaction, withdrawalsEnabled bool, now time.Time) (models.TransactionStatus, string, error) {
	if txn.Type == models.TransactionWithdrawal {
		if !withdrawalsEnabled {
			return models.TransactionStatusDeclined, ReasonWithdrawalsDisabled, nil
		}
		if !user.CanWithdraw {
			return models.TransactionStatusDeclined, ReasonWithdrawalLocked, nil
		}
	}

	err := s.db.User().AdjustBalance(ctx, tx, user.ID, txn.SignedAmount(), now)
	if errors.Is(err, models.ErrInsufficientFunds) {
		return models.TransactionStatusDeclined, ReasonInsufficientBalance, nil
	}
	if err != nil {
		return "", "", err
	}

	return models.TransactionStatusCompleted, "", nil
}
