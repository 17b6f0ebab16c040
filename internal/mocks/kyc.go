package mocks

import (
	"context"
	"io"

	"github.com/cradoe/carvest/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockKYC struct {
	mock.Mock
}

func (m *MockKYC) Status(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockKYC) SubmitDocument(ctx context.Context, userID, documentType, filename string, file io.Reader) (*models.User, error) {
	args := m.Called(ctx, userID, documentType, filename, file)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockKYC) Decide(ctx context.Context, actor models.Actor, userID, status, reason string) (*models.User, error) {
	args := m.Called(ctx, actor, userID, status, reason)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockKYC) ListByLevel(ctx context.Context, level models.KYCLevel, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, level, limit, offset)
	list, _ := args.Get(0).([]models.User)
	return list, args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	args := m.Called(ctx, filename, file)
	return args.String(0), args.Error(1)
}
