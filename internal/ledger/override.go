package ledger

import (
	"context"
	"fmt"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/validator"
	"github.com/shopspring/decimal"
)

// OverrideInput describes a direct administrative correction. BalanceDelta is
// relative; NewInvested and NewProfit replace the stored values when set.
type OverrideInput struct {
	UserID       string
	BalanceDelta decimal.Decimal
	NewInvested  *decimal.Decimal
	NewProfit    *decimal.Decimal
	Description  string
}

type OverrideResult struct {
	Transaction *models.Transaction
	Balance     decimal.Decimal
	Portfolio   models.Portfolio
}

// ApplyOverride bypasses the review queue. It records an already completed
// adjustment so the change is visible in the user's history.
func (s *Service) ApplyOverride(ctx context.Context, actor models.Actor, input OverrideInput) (*OverrideResult, error) {
	if err := validateOverride(input); err != nil {
		return nil, err
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

	now := s.now()
	priorBalance := user.Balance
	priorPortfolio := user.Portfolio

	if !input.BalanceDelta.IsZero() {
		if err := s.db.User().AdjustBalance(ctx, tx, user.ID, input.BalanceDelta, now); err != nil {
			return nil, fmt.Errorf("override balance: %w", err)
		}
	}

	portfolio := priorPortfolio
	if input.NewInvested != nil {
		portfolio.TotalCost = *input.NewInvested
	}
	if input.NewProfit != nil {
		portfolio.TotalProfitLoss = *input.NewProfit
	}
	if input.NewInvested != nil || input.NewProfit != nil {
		if err := s.db.User().SetPortfolio(ctx, tx, user.ID, portfolio, now); err != nil {
			return nil, fmt.Errorf("override portfolio: %w", err)
		}
	}

	direction := models.DirectionCredit
	if input.BalanceDelta.IsNegative() {
		direction = models.DirectionDebit
	}

	txn := &models.Transaction{
		UserID:      user.ID,
		Type:        models.TransactionAdjustment,
		Origin:      models.OriginOverride,
		Direction:   direction,
		Amount:      input.BalanceDelta.Abs(),
		Fee:         decimal.Zero,
		Status:      models.TransactionStatusCompleted,
		Description: nullString(input.Description),
		DecidedBy:   nullString(actor.ID),
		CreatedAt:   now,
	}
	txn.DecidedAt.Time, txn.DecidedAt.Valid = now, true

	if err := s.db.Transaction().Insert(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("insert adjustment: %w", err)
	}

	balance := priorBalance.Add(input.BalanceDelta)

	err = s.audit(ctx, tx, actor.ID, user.ID, models.AuditEntityUser, user.ID, models.AuditActionOverrideApplied, map[string]any{
		"transaction_id": txn.ID,
		"description":    input.Description,
		"delta":          input.BalanceDelta.StringFixed(2),
		"prior": map[string]string{
			"balance":           priorBalance.StringFixed(2),
			"total_cost":        priorPortfolio.TotalCost.StringFixed(2),
			"total_profit_loss": priorPortfolio.TotalProfitLoss.StringFixed(2),
		},
		"new": map[string]string{
			"balance":           balance.StringFixed(2),
			"total_cost":        portfolio.TotalCost.StringFixed(2),
			"total_profit_loss": portfolio.TotalProfitLoss.StringFixed(2),
		},
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("ledger override applied",
		"admin_id", actor.ID,
		"user_id", user.ID,
		"transaction_id", txn.ID,
		"delta", input.BalanceDelta.StringFixed(2),
		"balance_before", priorBalance.StringFixed(2),
		"balance_after", balance.StringFixed(2),
		"total_cost", portfolio.TotalCost.StringFixed(2),
		"total_profit_loss", portfolio.TotalProfitLoss.StringFixed(2),
	)

	s.publish(ctx, models.LedgerEvent{
		Kind:          models.EventOverrideApplied,
		UserID:        user.ID,
		TransactionID: txn.ID,
		Type:          string(txn.Type),
		Status:        string(txn.Status),
		Amount:        txn.Amount.StringFixed(2),
		Direction:     string(direction),
		Description:   input.Description,
		OccurredAt:    now,
	})

	return &OverrideResult{
		Transaction: txn,
		Balance:     balance,
		Portfolio:   portfolio,
	}, nil
}

func validateOverride(input OverrideInput) error {
	var v validator.Validator

	v.Check(validator.NotBlank(input.UserID), "User is required")
	v.Check(validator.NotBlank(input.Description), "Description is required")
	v.Check(validator.MaxRunes(input.Description, 500), "Description must not be more than 500 characters")
	v.Check(input.BalanceDelta.Equal(input.BalanceDelta.Round(2)), "Amount must have at most two decimal places")

	if input.NewInvested != nil {
		v.Check(!input.NewInvested.IsNegative(), "Invested amount cannot be negative")
		v.Check(input.NewInvested.Equal(input.NewInvested.Round(2)), "Invested amount must have at most two decimal places")
	}
	if input.NewProfit != nil {
		v.Check(input.NewProfit.Equal(input.NewProfit.Round(2)), "Profit must have at most two decimal places")
	}

	v.Check(!input.BalanceDelta.IsZero() || input.NewInvested != nil || input.NewProfit != nil, "Nothing to change")

	if v.HasErrors() {
		return models.NewValidationError(v.Errors...)
	}
	return nil
}
