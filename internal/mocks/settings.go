package mocks

import (
	"context"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/settings"
	"github.com/stretchr/testify/mock"
)

type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) Get(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockSettings) Update(ctx context.Context, actor models.Actor, patch settings.Patch) (models.Settings, error) {
	args := m.Called(ctx, actor, patch)
	return args.Get(0).(models.Settings), args.Error(1)
}
