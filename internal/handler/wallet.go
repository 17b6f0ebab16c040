package handler

import (
	"errors"
	"net/http"

	appContext "github.com/cradoe/carvest/internal/context"
	"github.com/cradoe/carvest/internal/ledger"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/request"
	"github.com/cradoe/carvest/internal/response"
	"github.com/cradoe/carvest/internal/validator"
	"github.com/shopspring/decimal"
)

const maxUploadBytes = 10 << 20

func (h *RouteHandler) HandleGetWallet(w http.ResponseWriter, r *http.Request) {
	user := appContext.ContextGetAuthenticatedUser(r)

	wallet, err := h.Ledger.Wallet(r.Context(), user.ID)
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, newWalletResponse(wallet), "Wallet retrieved successfully", nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleWalletRequest queues a deposit or withdrawal for admin review.
func (h *RouteHandler) HandleWalletRequest(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Action      string              `json:"action"`
		Amount      decimal.Decimal     `json:"amount"`
		Method      string              `json:"method"`
		EvidenceURL string              `json:"evidenceUrl"`
		Address     string              `json:"address"`
		Description string              `json:"description"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	kind, err := models.ParseTransactionType(input.Action)
	input.Validator.Check(err == nil && (kind == models.TransactionDeposit || kind == models.TransactionWithdrawal),
		"Action must be either deposit or withdraw")
	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user := appContext.ContextGetAuthenticatedUser(r)

	var txn *models.Transaction
	switch kind {
	case models.TransactionDeposit:
		txn, err = h.Ledger.RequestDeposit(r.Context(), user.ID, ledger.DepositInput{
			Amount:      input.Amount,
			Method:      input.Method,
			EvidenceURL: input.EvidenceURL,
			Description: input.Description,
		})
	default:
		txn, err = h.Ledger.RequestWithdrawal(r.Context(), user.ID, ledger.WithdrawalInput{
			Amount:  input.Amount,
			Method:  input.Method,
			Address: input.Address,
		})
	}
	if err != nil {
		h.ErrHandler.DomainError(w, r, err)
		return
	}

	err = response.JSONCreatedResponse(w, newTransactionResponse(txn), "Request submitted for review")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleUpload stores a payment evidence file and returns its URL.
func (h *RouteHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, errors.New("file is required"))
		return
	}
	defer file.Close()

	url, err := h.Uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		h.ErrHandler.DomainError(w, r, errors.Join(models.ErrUploadFailed, err))
		return
	}

	err = response.JSONCreatedResponse(w, map[string]string{"url": url}, "File uploaded successfully")
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
