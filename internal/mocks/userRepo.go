package mocks

import (
	"context"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Insert(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetOne(ctx context.Context, tx *sqlx.Tx, id string) (*models.User, bool, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.User, bool, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserRepo) AdjustBalance(ctx context.Context, tx *sqlx.Tx, id string, delta decimal.Decimal, at time.Time) error {
	args := m.Called(ctx, tx, id, delta, at)
	return args.Error(0)
}

func (m *MockUserRepo) SetPortfolio(ctx context.Context, tx *sqlx.Tx, id string, portfolio models.Portfolio, at time.Time) error {
	args := m.Called(ctx, tx, id, portfolio, at)
	return args.Error(0)
}

func (m *MockUserRepo) SetCanWithdraw(ctx context.Context, tx *sqlx.Tx, id string, canWithdraw bool, at time.Time) error {
	args := m.Called(ctx, tx, id, canWithdraw, at)
	return args.Error(0)
}

func (m *MockUserRepo) SubmitKYC(ctx context.Context, tx *sqlx.Tx, id string, documentType models.DocumentType, documentURL string, at time.Time) error {
	args := m.Called(ctx, tx, id, documentType, documentURL, at)
	return args.Error(0)
}

func (m *MockUserRepo) DecideKYC(ctx context.Context, tx *sqlx.Tx, id string, level models.KYCLevel, reason string, at time.Time) error {
	args := m.Called(ctx, tx, id, level, reason, at)
	return args.Error(0)
}
