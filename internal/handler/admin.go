package handler

import (
	"net/http"

	appContext "github.com/cradoe/carvest/internal/context"
	"github.com/cradoe/carvest/internal/ledger"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/request"
	"github.com/cradoe/carvest/internal/response"
	"github.com/cradoe/carvest/internal/validator"
	"github.com/shopspring/decimal"
)

func (h *RouteHandler) HandleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	q := retrieveUrlQueryValues(r)

	filter := repository.UserFilter{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	if level := r.URL.Query().Get("kyc_level"); level != "" {
		parsed, err := models.ParseKYCLevel(level)
		if err != nil {
			h.ErrHandler.FailedValidation(w, r, []string{"Unknown KYC level"})
			return
		}
		filter.KYCLevel = parsed
	}

	users, err := h.DB.User().List(r.Context(), filter)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONPageResponse(w, newUserList(users), "Users retrieved successfully", q.meta(len(users)))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAdminGetUser(w http.ResponseWriter, r *http.Request) {
	user, found, err := h.DB.User().GetOne(r.Context(), nil, r.PathValue("id"))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	err = response.JSONOkResponse(w, newUserResponse(user), "User retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAdminSetRestrictions(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CanWithdraw *bool `json:"canWithdraw"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.CanWithdraw == nil {
		h.ErrHandler.FailedValidation(w, r, []string{"canWithdraw is required"})
		return
	}

	actor := appContext.ActorFromRequest(r)

	user, err := h.Ledger.SetWithdrawalLock(r.Context(), actor, r.PathValue("id"), !*input.CanWithdraw)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, newUserResponse(user), "Restrictions updated", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

type overrideRequest struct {
	UserID      string           `json:"userId"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	NewProfit   *decimal.Decimal `json:"newProfit"`
	NewInvested *decimal.Decimal `json:"newInvested"`
}

// HandleAdminCredit applies a positive balance override.
func (h *RouteHandler) HandleAdminCredit(w http.ResponseWriter, r *http.Request) {
	h.handleOverride(w, r, models.DirectionCredit)
}

// HandleAdminDebit applies a negative balance override.
func (h *RouteHandler) HandleAdminDebit(w http.ResponseWriter, r *http.Request) {
	h.handleOverride(w, r, models.DirectionDebit)
}

func (h *RouteHandler) handleOverride(w http.ResponseWriter, r *http.Request, direction models.Direction) {
	var input overrideRequest

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	if input.Amount.IsNegative() {
		h.ErrHandler.FailedValidation(w, r, []string{"Amount must not be negative"})
		return
	}

	delta := input.Amount
	if direction == models.DirectionDebit {
		delta = delta.Neg()
	}

	actor := appContext.ActorFromRequest(r)

	result, err := h.Ledger.ApplyOverride(r.Context(), actor, ledger.OverrideInput{
		UserID:       input.UserID,
		BalanceDelta: delta,
		NewInvested:  input.NewInvested,
		NewProfit:    input.NewProfit,
		Description:  input.Description,
	})
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	data := map[string]any{
		"balance": money(result.Balance),
		"portfolio": PortfolioResponseData{
			TotalCost:       money(result.Portfolio.TotalCost),
			TotalProfitLoss: money(result.Portfolio.TotalProfitLoss),
		},
	}
	if result.Transaction != nil {
		data["transaction"] = newTransactionResponse(result.Transaction)
	}

	err = response.JSONOkResponse(w, data, "Account adjusted successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAdminListTransactions(w http.ResponseWriter, r *http.Request) {
	q := retrieveUrlQueryValues(r)
	values := r.URL.Query()

	filter := repository.TransactionFilter{
		UserID: values.Get("user_id"),
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	var v validator.Validator

	if status := values.Get("status"); status != "" {
		parsed, err := models.ParseTransactionStatus(status)
		v.Check(err == nil, "Status must be one of pending, completed or declined")
		filter.Status = parsed
	}
	if kind := values.Get("type"); kind != "" {
		parsed, err := models.ParseTransactionType(kind)
		v.Check(err == nil, "Unknown transaction type")
		filter.Type = parsed
	}
	if v.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, v.Errors)
		return
	}

	list, err := h.Ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONPageResponse(w, newTransactionList(list), "Transactions retrieved successfully", q.meta(len(list)))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleAdminDecideTransaction approves or declines a pending request. A
// forced decline is reported as a success carrying the applied outcome.
func (h *RouteHandler) HandleAdminDecideTransaction(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID        string              `json:"userId"`
		TransactionID string              `json:"transactionId"`
		NewStatus     string              `json:"newStatus"`
		Reason        string              `json:"reason"`
		Validator     validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.UserID), "User ID is required")
	input.Validator.Check(validator.NotBlank(input.TransactionID), "Transaction ID is required")
	input.Validator.Check(validator.In(input.NewStatus, string(models.TransactionStatusCompleted), string(models.TransactionStatusDeclined)),
		"New status must be either completed or declined")
	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	actor := appContext.ActorFromRequest(r)

	decision, err := h.Ledger.Decide(r.Context(), actor, ledger.DecisionInput{
		UserID:        input.UserID,
		TransactionID: input.TransactionID,
		Outcome:       models.TransactionStatus(input.NewStatus),
		Reason:        input.Reason,
	})
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	message := "Transaction updated"
	if decision.Forced {
		message = "Transaction declined: " + decision.Transaction.Reason.String
	}

	data := map[string]any{
		"transaction": newTransactionResponse(decision.Transaction),
		"requested":   decision.Requested,
		"forced":      decision.Forced,
		"balance":     money(decision.Balance),
	}

	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *RouteHandler) HandleAdminAudit(w http.ResponseWriter, r *http.Request) {
	q := retrieveUrlQueryValues(r)

	entries, err := h.Ledger.AuditTrail(r.Context(), r.URL.Query().Get("user_id"), q.Limit, q.Offset)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONPageResponse(w, newAuditList(entries), "Audit trail retrieved successfully", q.meta(len(entries)))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
