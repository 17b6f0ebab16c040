package handler

import (
	"net/http"

	appContext "github.com/cradoe/carvest/internal/context"
	"github.com/cradoe/carvest/internal/request"
	"github.com/cradoe/carvest/internal/response"
	"github.com/cradoe/carvest/internal/settings"
)

// HandlePublicSettings exposes the switches a client needs before login.
// Fee and minimum are included so withdrawal forms can show them.
func (h *RouteHandler) HandlePublicSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.Settings.Get(r.Context())
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"maintenance_mode":        current.MaintenanceMode,
		"system_notice":           current.SystemNotice,
		"withdrawal_enabled":      current.WithdrawalEnabled,
		"allow_new_registrations": current.AllowNewRegistrations,
		"withdrawal_fee_percent":  current.WithdrawalFeePercent,
		"min_withdrawal_amount":   current.MinWithdrawalAmount,
	}

	err = response.JSONOkResponse(w, data, "Settings retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAdminGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.Settings.Get(r.Context())
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, current, "Settings retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch

	err := request.DecodeJSONStrict(w, r, &patch)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	actor := appContext.ActorFromRequest(r)

	updated, err := h.Settings.Update(r.Context(), actor, patch)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, updated, "Settings updated successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
