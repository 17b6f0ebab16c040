package mocks

import (
	"context"

	"github.com/cradoe/carvest/internal/ledger"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Wallet(ctx context.Context, userID string) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	wallet, _ := args.Get(0).(*models.Wallet)
	return wallet, args.Error(1)
}

func (m *MockLedger) RequestDeposit(ctx context.Context, userID string, input ledger.DepositInput) (*models.Transaction, error) {
	args := m.Called(ctx, userID, input)
	txn, _ := args.Get(0).(*models.Transaction)
	return txn, args.Error(1)
}

func (m *MockLedger) RequestWithdrawal(ctx context.Context, userID string, input ledger.WithdrawalInput) (*models.Transaction, error) {
	args := m.Called(ctx, userID, input)
	txn, _ := args.Get(0).(*models.Transaction)
	return txn, args.Error(1)
}

func (m *MockLedger) Decide(ctx context.Context, actor models.Actor, input ledger.DecisionInput) (*ledger.Decision, error) {
	args := m.Called(ctx, actor, input)
	decision, _ := args.Get(0).(*ledger.Decision)
	return decision, args.Error(1)
}

func (m *MockLedger) ApplyOverride(ctx context.Context, actor models.Actor, input ledger.OverrideInput) (*ledger.OverrideResult, error) {
	args := m.Called(ctx, actor, input)
	result, _ := args.Get(0).(*ledger.OverrideResult)
	return result, args.Error(1)
}

func (m *MockLedger) SetWithdrawalLock(ctx context.Context, actor models.Actor, userID string, locked bool) (*models.User, error) {
	args := m.Called(ctx, actor, userID, locked)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockLedger) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]models.Transaction)
	return list, args.Error(1)
}

func (m *MockLedger) AuditTrail(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, error) {
	args := m.Called(ctx, userID, limit, offset)
	list, _ := args.Get(0).([]models.AuditLog)
	return list, args.Error(1)
}
