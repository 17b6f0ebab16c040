package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cradoe/carvest/internal/ledger"
	"github.com/cradoe/carvest/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var walletOwner = &models.User{ID: "user-1", Email: "ada@example.com", Active: true, CanWithdraw: true}

func TestHandleGetWallet(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("Wallet", mock.Anything, "user-1").Return(&models.Wallet{
		UserID:      "user-1",
		Currency:    "USD",
		Balance:     decimal.RequireFromString("150.50"),
		CanWithdraw: true,
		Transactions: []models.Transaction{{
			ID:        "txn-1",
			UserID:    "user-1",
			Type:      models.TransactionDeposit,
			Direction: models.DirectionCredit,
			Amount:    decimal.NewFromInt(100),
			Status:    models.TransactionStatusCompleted,
			CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
	}, nil)

	rr := httptest.NewRecorder()
	f.handler.HandleGetWallet(rr, asUser(httptest.NewRequest(http.MethodGet, "/wallet", nil), walletOwner))
	f.assertExpectations(t)

	require.Equal(t, http.StatusOK, rr.Code)

	var data WalletResponseData
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &data))
	require.True(t, data.Wallet.Balance.Equal(decimal.RequireFromString("150.5")))
	require.True(t, data.CanWithdraw)
	require.Len(t, data.Wallet.Transactions, 1)
	require.Equal(t, "deposit", data.Wallet.Transactions[0].Type)
}

func TestHandleGetWalletShape(t *testing.T) {
	f := newFixture(t)

	f.ledger.On("Wallet", mock.Anything, "user-1").Return(&models.Wallet{
		UserID:      "user-1",
		Currency:    "USD",
		Balance:     decimal.NewFromInt(60),
		CanWithdraw: false,
	}, nil)

	rr := httptest.NewRecorder()
	f.handler.HandleGetWallet(rr, asUser(httptest.NewRequest(http.MethodGet, "/wallet", nil), walletOwner))
	f.assertExpectations(t)

	require.Equal(t, http.StatusOK, rr.Code)

	var shape struct {
		Wallet      map[string]json.RawMessage `json:"wallet"`
		CanWithdraw *bool                      `json:"canWithdraw"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &shape))
	require.NotNil(t, shape.CanWithdraw)
	require.False(t, *shape.CanWithdraw)
	require.JSONEq(t, `"60.00"`, string(shape.Wallet["balance"]))
	require.JSONEq(t, `[]`, string(shape.Wallet["transactions"]))
	require.NotContains(t, shape.Wallet, "can_withdraw")
	require.NotContains(t, shape.Wallet, "canWithdraw")
}

func TestHandleWalletRequestDeposit(t *testing.T) {
	f := newFixture(t)

	expected := ledger.DepositInput{
		Amount:      decimal.RequireFromString("25.50"),
		Method:      "bank",
		EvidenceURL: "https://res.cloudinary.com/demo/receipt.png",
	}
	f.ledger.On("RequestDeposit", mock.Anything, "user-1", mock.MatchedBy(func(in ledger.DepositInput) bool {
		return in.Amount.Equal(expected.Amount) && in.Method == expected.Method && in.EvidenceURL == expected.EvidenceURL
	})).Return(&models.Transaction{
		ID:     "txn-2",
		UserID: "user-1",
		Type:   models.TransactionDeposit,
		Amount: expected.Amount,
		Status: models.TransactionStatusPending,
	}, nil)

	req := jsonRequest(t, http.MethodPost, "/wallet", map[string]any{
		"action":      "deposit",
		"amount":      "25.50",
		"method":      "bank",
		"evidenceUrl": expected.EvidenceURL,
	})
	rr := httptest.NewRecorder()
	f.handler.HandleWalletRequest(rr, asUser(req, walletOwner))
	f.assertExpectations(t)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var data TransactionResponseData
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &data))
	require.Equal(t, "pending", data.Status)
}

func TestHandleWalletRequestWithdrawalErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"locked", models.ErrWithdrawalLocked, http.StatusForbidden},
		{"disabled", models.ErrWithdrawalsDisabled, http.StatusForbidden},
		{"insufficient", models.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"validation", models.NewValidationError("Destination address is required"), http.StatusUnprocessableEntity},
		{"maintenance", models.ErrMaintenance, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.ledger.On("RequestWithdrawal", mock.Anything, "user-1", mock.AnythingOfType("ledger.WithdrawalInput")).Return(nil, tt.err)

			req := jsonRequest(t, http.MethodPost, "/wallet", map[string]any{
				"action":  "withdraw",
				"amount":  40,
				"method":  "crypto",
				"address": "bc1qxyz",
			})
			rr := httptest.NewRecorder()
			f.handler.HandleWalletRequest(rr, asUser(req, walletOwner))
			f.assertExpectations(t)

			require.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestHandleWalletRequestUnknownAction(t *testing.T) {
	f := newFixture(t)

	req := jsonRequest(t, http.MethodPost, "/wallet", map[string]any{"action": "investment", "amount": 10})
	rr := httptest.NewRecorder()
	f.handler.HandleWalletRequest(rr, asUser(req, walletOwner))
	f.assertExpectations(t)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "Action must be either deposit or withdraw")
}

func TestHandleUpload(t *testing.T) {
	f := newFixture(t)
	f.uploader.On("Upload", mock.Anything, "receipt.png", mock.Anything).Return("https://res.cloudinary.com/demo/receipt.png", nil)

	req := multipartRequest(t, "/uploads", nil, "receipt.png", []byte("png-bytes"))
	rr := httptest.NewRecorder()
	f.handler.HandleUpload(rr, asUser(req, walletOwner))
	f.assertExpectations(t)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), "https://res.cloudinary.com/demo/receipt.png")
}

func TestHandleUploadFailure(t *testing.T) {
	f := newFixture(t)
	f.uploader.On("Upload", mock.Anything, "receipt.png", mock.Anything).Return("", errors.New("cloudinary timeout"))

	req := multipartRequest(t, "/uploads", nil, "receipt.png", []byte("png-bytes"))
	rr := httptest.NewRecorder()
	f.handler.HandleUpload(rr, asUser(req, walletOwner))
	f.assertExpectations(t)

	require.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestHandleUploadMissingFile(t *testing.T) {
	f := newFixture(t)

	req := multipartRequest(t, "/uploads", map[string]string{"note": "nothing"}, "", nil)
	rr := httptest.NewRecorder()
	f.handler.HandleUpload(rr, asUser(req, walletOwner))

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
