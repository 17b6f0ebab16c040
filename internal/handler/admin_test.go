package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cradoe/carvest/internal/ledger"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/repository/repotest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var adminActor = models.Actor{ID: "admin-1", Email: "admin@example.com"}

func TestHandleAdminListUsers(t *testing.T) {
	f := newFixture(t)
	repotest.CreateUser(t, f.db, "ada@example.com", "10")
	repotest.CreateUser(t, f.db, "bola@example.com", "20")

	rr := httptest.NewRecorder()
	f.handler.HandleAdminListUsers(rr, asUser(httptest.NewRequest(http.MethodGet, "/admin/users?search=bola", nil), kycAdmin))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var users []UserResponseData
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &users))
	require.Len(t, users, 1)
	require.Equal(t, "bola@example.com", users[0].Email)
}

func TestHandleAdminGetUser(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "ada@example.com", "10")

	req := httptest.NewRequest(http.MethodGet, "/admin/users/"+user.ID, nil)
	req.SetPathValue("id", user.ID)
	rr := httptest.NewRecorder()
	f.handler.HandleAdminGetUser(rr, asUser(req, kycAdmin))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "ada@example.com")

	req = httptest.NewRequest(http.MethodGet, "/admin/users/missing", nil)
	req.SetPathValue("id", "missing")
	rr = httptest.NewRecorder()
	f.handler.HandleAdminGetUser(rr, asUser(req, kycAdmin))
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleAdminSetRestrictions(t *testing.T) {
	f := newFixture(t)
	f.ledger.On("SetWithdrawalLock", mock.Anything, adminActor, "user-1", true).Return(&models.User{ID: "user-1", CanWithdraw: false}, nil)

	req := jsonRequest(t, http.MethodPatch, "/admin/users/user-1/restrictions", map[string]bool{"canWithdraw": false})
	req.SetPathValue("id", "user-1")
	rr := httptest.NewRecorder()
	f.handler.HandleAdminSetRestrictions(rr, asUser(req, kycAdmin))
	f.assertExpectations(t)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"can_withdraw": false`)

	req = jsonRequest(t, http.MethodPatch, "/admin/users/user-1/restrictions", map[string]string{})
	req.SetPathValue("id", "user-1")
	rr = httptest.NewRecorder()
	f.handler.HandleAdminSetRestrictions(rr, asUser(req, kycAdmin))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleAdminOverride(t *testing.T) {
	tests := []struct {
		name    string
		handler func(h *RouteHandler) http.HandlerFunc
		delta   decimal.Decimal
	}{
		{"credit", func(h *RouteHandler) http.HandlerFunc { return h.HandleAdminCredit }, decimal.NewFromInt(50)},
		{"debit", func(h *RouteHandler) http.HandlerFunc { return h.HandleAdminDebit }, decimal.NewFromInt(-50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.ledger.On("ApplyOverride", mock.Anything, adminActor, mock.MatchedBy(func(in ledger.OverrideInput) bool {
				return in.UserID == "user-1" && in.BalanceDelta.Equal(tt.delta) &&
					in.NewProfit != nil && in.NewProfit.Equal(decimal.NewFromInt(7)) &&
					in.NewInvested == nil && in.Description == "manual correction"
			})).Return(&ledger.OverrideResult{
				Transaction: &models.Transaction{ID: "txn-9", Type: models.TransactionAdjustment, Origin: models.OriginOverride},
				Balance:     decimal.NewFromInt(150),
			}, nil)

			req := jsonRequest(t, http.MethodPost, "/admin/users/"+tt.name, map[string]any{
				"userId":      "user-1",
				"amount":      "50",
				"description": "manual correction",
				"newProfit":   "7",
			})
			rr := httptest.NewRecorder()
			tt.handler(f.handler)(rr, asUser(req, kycAdmin))
			f.assertExpectations(t)

			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			require.Contains(t, rr.Body.String(), `"origin": "override"`)
		})
	}
}

func TestHandleAdminOverrideRejectsNegativeAmount(t *testing.T) {
	f := newFixture(t)

	req := jsonRequest(t, http.MethodPost, "/admin/users/deposit", map[string]any{
		"userId":      "user-1",
		"amount":      "-5",
		"description": "oops",
	})
	rr := httptest.NewRecorder()
	f.handler.HandleAdminCredit(rr, asUser(req, kycAdmin))
	f.assertExpectations(t)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleAdminListTransactions(t *testing.T) {
	f := newFixture(t)

	filter := repository.TransactionFilter{
		UserID: "user-1",
		Status: models.TransactionStatusPending,
		Type:   models.TransactionWithdrawal,
		Limit:  5,
		Offset: 5,
	}
	f.ledger.On("ListTransactions", mock.Anything, filter).Return([]models.Transaction{{ID: "txn-1"}}, nil)

	target := "/admin/transactions?status=pending&type=withdrawal&user_id=user-1&limit=5&page=2"
	rr := httptest.NewRecorder()
	f.handler.HandleAdminListTransactions(rr, asUser(httptest.NewRequest(http.MethodGet, target, nil), kycAdmin))
	f.assertExpectations(t)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"page": 2`)

	rr = httptest.NewRecorder()
	f.handler.HandleAdminListTransactions(rr, asUser(httptest.NewRequest(http.MethodGet, "/admin/transactions?status=failed", nil), kycAdmin))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestHandleAdminDecideTransaction(t *testing.T) {
	t.Run("forced decline", func(t *testing.T) {
		f := newFixture(t)

		input := ledger.DecisionInput{
			UserID:        "user-1",
			TransactionID: "txn-1",
			Outcome:       models.TransactionStatusCompleted,
		}
		f.ledger.On("Decide", mock.Anything, adminActor, input).Return(&ledger.Decision{
			Transaction: &models.Transaction{
				ID:     "txn-1",
				Status: models.TransactionStatusDeclined,
				Reason: sql.NullString{String: ledger.ReasonInsufficientBalance, Valid: true},
			},
			Requested: models.TransactionStatusCompleted,
			Forced:    true,
			Balance:   decimal.NewFromInt(30),
		}, nil)

		req := jsonRequest(t, http.MethodPatch, "/admin/transactions", map[string]string{
			"userId":        "user-1",
			"transactionId": "txn-1",
			"newStatus":     "completed",
		})
		rr := httptest.NewRecorder()
		f.handler.HandleAdminDecideTransaction(rr, asUser(req, kycAdmin))
		f.assertExpectations(t)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		res := decode(t, rr)
		require.Equal(t, "Transaction declined: "+ledger.ReasonInsufficientBalance, res.Message)
		require.Contains(t, string(res.Data), `"forced": true`)
	})

	t.Run("already decided", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.On("Decide", mock.Anything, adminActor, mock.Anything).Return(nil, fmt.Errorf("transaction is completed: %w", models.ErrInvalidState))

		req := jsonRequest(t, http.MethodPatch, "/admin/transactions", map[string]string{
			"userId":        "user-1",
			"transactionId": "txn-1",
			"newStatus":     "declined",
		})
		rr := httptest.NewRecorder()
		f.handler.HandleAdminDecideTransaction(rr, asUser(req, kycAdmin))
		f.assertExpectations(t)

		require.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		f := newFixture(t)

		req := jsonRequest(t, http.MethodPatch, "/admin/transactions", map[string]string{
			"userId":        "user-1",
			"transactionId": "txn-1",
			"newStatus":     "pending",
		})
		rr := httptest.NewRecorder()
		f.handler.HandleAdminDecideTransaction(rr, asUser(req, kycAdmin))
		f.assertExpectations(t)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestHandleAdminAudit(t *testing.T) {
	f := newFixture(t)

	actor := "admin-1"
	f.ledger.On("AuditTrail", mock.Anything, "user-1", 10, 0).Return([]models.AuditLog{{
		ID:       "audit-1",
		ActorID:  &actor,
		Entity:   models.AuditEntityTransaction,
		EntityID: "txn-1",
		Action:   models.AuditActionTransactionDecided,
		Metadata: []byte(`{"outcome":"completed"}`),
	}}, nil)

	rr := httptest.NewRecorder()
	f.handler.HandleAdminAudit(rr, asUser(httptest.NewRequest(http.MethodGet, "/admin/audit?user_id=user-1", nil), kycAdmin))
	f.assertExpectations(t)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"outcome": "completed"`)
}
