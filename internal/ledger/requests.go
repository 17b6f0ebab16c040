package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/validator"
	"github.com/shopspring/decimal"
)

type DepositInput struct {
	Amount      decimal.Decimal
	Method      string
	EvidenceURL string
	Description string
}

type WithdrawalInput struct {
	Amount  decimal.Decimal
	Method  string
	Address string
}

// RequestDeposit queues a user's deposit claim for review. The balance is
// untouched until an administrator approves it.
func (s *Service) RequestDeposit(ctx context.Context, userID string, input DepositInput) (*models.Transaction, error) {
	var v validator.Validator

	v.Check(validator.IsMoney(input.Amount), "Amount must be a positive value with at most two decimal places")
	method, err := models.ParseTransactionMethod(input.Method)
	v.Check(err == nil, "Method must be one of crypto, bank or global")
	v.Check(validator.NotBlank(input.EvidenceURL), "Evidence of payment is required")
	v.Check(input.EvidenceURL == "" || validator.IsHTTPSURL(input.EvidenceURL), "Evidence URL must be an https link")
	v.Check(validator.MaxRunes(input.Description, 500), "Description must not be more than 500 characters")

	if v.HasErrors() {
		return nil, models.NewValidationError(v.Errors...)
	}

	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if current.MaintenanceMode {
		return nil, models.ErrMaintenance
	}

	now := s.now()
	txn := &models.Transaction{
		UserID:      userID,
		Type:        models.TransactionDeposit,
		Origin:      models.OriginUser,
		Direction:   models.DirectionCredit,
		Amount:      input.Amount,
		Fee:         decimal.Zero,
		Method:      string(method),
		Status:      models.TransactionStatusPending,
		EvidenceURL: nullString(input.EvidenceURL),
		Description: nullString(input.Description),
		CreatedAt:   now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.lockUser(ctx, tx, userID); err != nil {
		return nil, err
	}

	if err := s.db.Transaction().Insert(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("insert deposit: %w", err)
	}

	err = s.audit(ctx, tx, userID, userID, models.AuditEntityTransaction, txn.ID, models.AuditActionDepositRequested, map[string]any{
		"amount":       txn.Amount.StringFixed(2),
		"method":       txn.Method,
		"evidence_url": input.EvidenceURL,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return txn, nil
}

// RequestWithdrawal queues a withdrawal. Platform switches, the user's lock
// and the balance are checked here and again when the request is approved.
func (s *Service) RequestWithdrawal(ctx context.Context, userID string, input WithdrawalInput) (*models.Transaction, error) {
	var v validator.Validator

	v.Check(validator.IsMoney(input.Amount), "Amount must be a positive value with at most two decimal places")
	method, err := models.ParseTransactionMethod(input.Method)
	v.Check(err == nil, "Method must be one of crypto, bank or global")
	v.Check(validator.NotBlank(input.Address), "Destination address is required")
	v.Check(validator.MaxRunes(input.Address, 255), "Destination address must not be more than 255 characters")

	if v.HasErrors() {
		return nil, models.NewValidationError(v.Errors...)
	}

	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if current.MaintenanceMode {
		return nil, models.ErrMaintenance
	}
	if !current.WithdrawalEnabled {
		return nil, models.ErrWithdrawalsDisabled
	}
	if input.Amount.LessThan(current.MinWithdrawalAmount) {
		return nil, models.NewValidationError(fmt.Sprintf("Amount must be at least %s", current.MinWithdrawalAmount.StringFixed(2)))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := s.lockUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !user.CanWithdraw {
		return nil, models.ErrWithdrawalLocked
	}
	if user.Balance.LessThan(input.Amount) {
		return nil, models.ErrInsufficientFunds
	}

	now := s.now()
	txn := &models.Transaction{
		UserID:    userID,
		Type:      models.TransactionWithdrawal,
		Origin:    models.OriginUser,
		Direction: models.DirectionDebit,
		Amount:    input.Amount,
		Fee:       withdrawalFee(input.Amount, current.WithdrawalFeePercent),
		Method:    string(method),
		Status:    models.TransactionStatusPending,
		Address:   nullString(input.Address),
		CreatedAt: now,
	}

	if err := s.db.Transaction().Insert(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("insert withdrawal: %w", err)
	}

	err = s.audit(ctx, tx, userID, userID, models.AuditEntityTransaction, txn.ID, models.AuditActionWithdrawalRequested, map[string]any{
		"amount":  txn.Amount.StringFixed(2),
		"fee":     txn.Fee.StringFixed(2),
		"method":  txn.Method,
		"balance": user.Balance.StringFixed(2),
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return txn, nil
}

func withdrawalFee(amount, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
