package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/settings"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandlePublicSettings(t *testing.T) {
	f := newFixture(t)

	current := models.DefaultSettings()
	current.MaintenanceMode = true
	current.SystemNotice = "Back at noon"
	f.settings.On("Get", mock.Anything).Return(current, nil)

	rr := httptest.NewRecorder()
	f.handler.HandlePublicSettings(rr, httptest.NewRequest(http.MethodGet, "/settings", nil))
	f.assertExpectations(t)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"maintenance_mode": true`)
	require.Contains(t, rr.Body.String(), `"system_notice": "Back at noon"`)
}

func TestHandleAdminUpdateSettings(t *testing.T) {
	f := newFixture(t)

	fee := decimal.NewFromInt(2)
	disabled := false
	patch := settings.Patch{WithdrawalFeePercent: &fee, WithdrawalEnabled: &disabled}

	updated := models.DefaultSettings()
	updated.WithdrawalFeePercent = fee
	updated.WithdrawalEnabled = false

	f.settings.On("Update", mock.Anything, adminActor, mock.MatchedBy(func(p settings.Patch) bool {
		return p.WithdrawalFeePercent != nil && p.WithdrawalFeePercent.Equal(*patch.WithdrawalFeePercent) &&
			p.WithdrawalEnabled != nil && !*p.WithdrawalEnabled && p.MaintenanceMode == nil
	})).Return(updated, nil)

	req := jsonRequest(t, http.MethodPatch, "/admin/settings", map[string]any{
		"withdrawalFeePercent": "2",
		"withdrawalEnabled":    false,
	})
	rr := httptest.NewRecorder()
	f.handler.HandleAdminUpdateSettings(rr, asUser(req, kycAdmin))
	f.assertExpectations(t)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"withdrawal_enabled": false`)
}

func TestHandleAdminUpdateSettingsValidation(t *testing.T) {
	f := newFixture(t)
	f.settings.On("Update", mock.Anything, adminActor, mock.Anything).
		Return(models.Settings{}, models.NewValidationError("Withdrawal fee must be between 0 and 100"))

	req := jsonRequest(t, http.MethodPatch, "/admin/settings", map[string]any{"withdrawalFeePercent": "150"})
	rr := httptest.NewRecorder()
	f.handler.HandleAdminUpdateSettings(rr, asUser(req, kycAdmin))
	f.assertExpectations(t)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleAdminUpdateSettingsUnknownField(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPatch, "/admin/settings", bytes.NewBufferString(`{"withdrawalFee": 1}`))
	rr := httptest.NewRecorder()
	f.handler.HandleAdminUpdateSettings(rr, asUser(req, kycAdmin))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
