package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/repository/repotest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type staticSettings struct {
	settings models.Settings
}

func (s *staticSettings) Get(ctx context.Context) (models.Settings, error) {
	return s.settings, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []models.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]models.LedgerEvent(nil), p.events...)
}

type fixture struct {
	svc      *Service
	db       repository.Database
	settings *staticSettings
	events   *recordingPublisher
	admin    models.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, _ := repotest.New(t)
	settings := &staticSettings{settings: models.DefaultSettings()}
	events := &recordingPublisher{}

	svc := New(db, settings, events, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var mu sync.Mutex
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	admin := repotest.CreateAdmin(t, db, "admin@carvest.example")

	return &fixture{
		svc:      svc,
		db:       db,
		settings: settings,
		events:   events,
		admin:    models.Actor{ID: admin.ID, Email: admin.Email},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()

	user, found, err := f.db.User().GetOne(context.Background(), nil, userID)
	require.NoError(t, err)
	require.True(t, found)
	return user.Balance
}

func (f *fixture) withdraw(t *testing.T, userID, amount string) *models.Transaction {
	t.Helper()

	txn, err := f.svc.RequestWithdrawal(context.Background(), userID, WithdrawalInput{
		Amount:  dec(amount),
		Method:  "crypto",
		Address: "bc1qexampleaddress",
	})
	require.NoError(t, err)
	return txn
}

func (f *fixture) decide(userID, txnID string, outcome models.TransactionStatus) (*Decision, error) {
	return f.svc.Decide(context.Background(), f.admin, DecisionInput{
		UserID:        userID,
		TransactionID: txnID,
		Outcome:       outcome,
	})
}

func TestDepositPendingUntilApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "dep@example.com", "0")

	txn, err := f.svc.RequestDeposit(ctx, user.ID, DepositInput{
		Amount:      dec("250.00"),
		Method:      "bank",
		EvidenceURL: "https://res.cloudinary.com/demo/receipt.png",
	})
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusPending, txn.Status)
	require.True(t, f.balance(t, user.ID).IsZero())

	decision, err := f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	require.False(t, decision.Forced)
	require.Equal(t, models.TransactionStatusCompleted, decision.Transaction.Status)
	require.True(t, f.balance(t, user.ID).Equal(dec("250")))
	require.True(t, decision.Balance.Equal(dec("250")))

	events := f.events.Events()
	require.Len(t, events, 1)
	require.Equal(t, models.EventTransactionDecided, events[0].Kind)
	require.Equal(t, "completed", events[0].Status)
}

func TestDepositValidation(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "v@example.com", "0")

	tests := []struct {
		name  string
		input DepositInput
	}{
		{"missing evidence", DepositInput{Amount: dec("10"), Method: "bank"}},
		{"plain http evidence", DepositInput{Amount: dec("10"), Method: "bank", EvidenceURL: "http://x.example/r.png"}},
		{"three decimals", DepositInput{Amount: dec("10.001"), Method: "bank", EvidenceURL: "https://x.example/r.png"}},
		{"zero amount", DepositInput{Amount: decimal.Zero, Method: "bank", EvidenceURL: "https://x.example/r.png"}},
		{"unknown method", DepositInput{Amount: dec("10"), Method: "paypal", EvidenceURL: "https://x.example/r.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RequestDeposit(context.Background(), user.ID, tt.input)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	list, err := f.db.Transaction().ListByUser(context.Background(), nil, user.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRequestsBlockedInMaintenance(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "m@example.com", "100")
	f.settings.settings.MaintenanceMode = true

	_, err := f.svc.RequestDeposit(context.Background(), user.ID, DepositInput{
		Amount: dec("10"), Method: "bank", EvidenceURL: "https://x.example/r.png",
	})
	require.ErrorIs(t, err, models.ErrMaintenance)

	_, err = f.svc.RequestWithdrawal(context.Background(), user.ID, WithdrawalInput{
		Amount: dec("10"), Method: "bank", Address: "GB00 1234",
	})
	require.ErrorIs(t, err, models.ErrMaintenance)
}

func TestWithdrawalRequestChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "w@example.com", "100")

	_, err := f.svc.RequestWithdrawal(ctx, user.ID, WithdrawalInput{Amount: dec("150"), Method: "crypto", Address: "addr"})
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	_, err = f.svc.RequestWithdrawal(ctx, user.ID, WithdrawalInput{Amount: dec("50"), Method: "crypto"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	f.settings.settings.MinWithdrawalAmount = dec("20")
	_, err = f.svc.RequestWithdrawal(ctx, user.ID, WithdrawalInput{Amount: dec("10"), Method: "crypto", Address: "addr"})
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Errors[0], "20.00")

	f.settings.settings.WithdrawalEnabled = false
	_, err = f.svc.RequestWithdrawal(ctx, user.ID, WithdrawalInput{Amount: dec("50"), Method: "crypto", Address: "addr"})
	require.ErrorIs(t, err, models.ErrWithdrawalsDisabled)

	f.settings.settings.WithdrawalEnabled = true
	_, err = f.svc.SetWithdrawalLock(ctx, f.admin, user.ID, true)
	require.NoError(t, err)
	_, err = f.svc.RequestWithdrawal(ctx, user.ID, WithdrawalInput{Amount: dec("50"), Method: "crypto", Address: "addr"})
	require.ErrorIs(t, err, models.ErrWithdrawalLocked)

	list, err := f.db.Transaction().ListByUser(ctx, nil, user.ID)
	require.NoError(t, err)
	require.Empty(t, list)
	require.True(t, f.balance(t, user.ID).Equal(dec("100")))

	_, err = f.svc.SetWithdrawalLock(ctx, f.admin, user.ID, false)
	require.NoError(t, err)
	txn, err := f.svc.RequestWithdrawal(ctx, user.ID, WithdrawalInput{Amount: dec("50"), Method: "crypto", Address: "addr"})
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusPending, txn.Status)

	list, err = f.db.Transaction().ListByUser(ctx, nil, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.TransactionStatusPending, list[0].Status)
	require.True(t, f.balance(t, user.ID).Equal(dec("100")))
}

func TestWithdrawalFeeRecorded(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "fee@example.com", "100")
	f.settings.settings.WithdrawalFeePercent = dec("1.5")

	txn := f.withdraw(t, user.ID, "33.50")
	require.Equal(t, "0.50", txn.Fee.StringFixed(2))
	require.Equal(t, models.DirectionDebit, txn.Direction)

	_, err := f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	require.True(t, f.balance(t, user.ID).Equal(dec("66.5")), f.balance(t, user.ID).String())
}

func TestDeclineLeavesBalance(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "d@example.com", "100")
	txn := f.withdraw(t, user.ID, "40")

	decision, err := f.svc.Decide(context.Background(), f.admin, DecisionInput{
		UserID:        user.ID,
		TransactionID: txn.ID,
		Outcome:       models.TransactionStatusDeclined,
		Reason:        "address failed screening",
	})
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusDeclined, decision.Transaction.Status)
	require.Equal(t, "address failed screening", decision.Transaction.Reason.String)
	require.True(t, f.balance(t, user.ID).Equal(dec("100")))
}

func TestTerminalTransactionIsImmutable(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "term@example.com", "100")
	txn := f.withdraw(t, user.ID, "40")

	_, err := f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)

	_, err = f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.ErrorIs(t, err, models.ErrInvalidState)
	_, err = f.decide(user.ID, txn.ID, models.TransactionStatusDeclined)
	require.ErrorIs(t, err, models.ErrInvalidState)

	require.True(t, f.balance(t, user.ID).Equal(dec("60")))

	got, _, err := f.db.Transaction().GetOne(context.Background(), nil, txn.ID)
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusCompleted, got.Status)
	require.Len(t, f.events.Events(), 1)
}

func TestLockAfterRequestForcesDecline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "lock@example.com", "100")
	txn := f.withdraw(t, user.ID, "40")

	_, err := f.svc.SetWithdrawalLock(ctx, f.admin, user.ID, true)
	require.NoError(t, err)

	decision, err := f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	require.True(t, decision.Forced)
	require.Equal(t, models.TransactionStatusDeclined, decision.Transaction.Status)
	require.Equal(t, ReasonWithdrawalLocked, decision.Transaction.Reason.String)
	require.True(t, f.balance(t, user.ID).Equal(dec("100")))
}

func TestPlatformSwitchOffForcesDecline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "switch@example.com", "100")
	txn := f.withdraw(t, user.ID, "40")
	deposit, err := f.svc.RequestDeposit(ctx, user.ID, DepositInput{Amount: dec("5"), Method: "bank", EvidenceURL: "https://x.example/r.png"})
	require.NoError(t, err)

	f.settings.settings.WithdrawalEnabled = false

	decision, err := f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	require.True(t, decision.Forced)
	require.Equal(t, models.TransactionStatusDeclined, decision.Transaction.Status)
	require.Equal(t, ReasonWithdrawalsDisabled, decision.Transaction.Reason.String)
	require.True(t, decision.Balance.Equal(dec("100")))
	require.True(t, f.balance(t, user.ID).Equal(dec("100")))

	decision, err = f.decide(user.ID, deposit.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	require.False(t, decision.Forced)
	require.True(t, f.balance(t, user.ID).Equal(dec("105")))
}

func TestLockDoesNotBlockDeposits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "lockdep@example.com", "0")

	_, err := f.svc.SetWithdrawalLock(ctx, f.admin, user.ID, true)
	require.NoError(t, err)

	txn, err := f.svc.RequestDeposit(ctx, user.ID, DepositInput{Amount: dec("5"), Method: "global", EvidenceURL: "https://x.example/r.png"})
	require.NoError(t, err)

	decision, err := f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	require.False(t, decision.Forced)
	require.True(t, f.balance(t, user.ID).Equal(dec("5")))
}

func TestSecondApprovalDeclinedOnInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "seq@example.com", "100")
	first := f.withdraw(t, user.ID, "60")
	second := f.withdraw(t, user.ID, "60")

	_, err := f.decide(user.ID, first.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)

	decision, err := f.decide(user.ID, second.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	require.True(t, decision.Forced)
	require.Equal(t, ReasonInsufficientBalance, decision.Transaction.Reason.String)
	require.True(t, f.balance(t, user.ID).Equal(dec("40")))
}

func TestAdjustBalanceGuardWithinOneTx(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "guard@example.com", "100")
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tx, err := f.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, f.db.User().AdjustBalance(ctx, tx, user.ID, dec("-60"), now))
	err = f.db.User().AdjustBalance(ctx, tx, user.ID, dec("-60"), now)
	require.ErrorIs(t, err, models.ErrInsufficientFunds)
	require.NoError(t, tx.Commit())

	require.True(t, f.balance(t, user.ID).Equal(dec("40")))
}

// The test pool holds a single connection, so these approvals serialize on
// it. TestAdjustBalanceGuardWithinOneTx covers the conditional update alone.
func TestConcurrentApprovalsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "race@example.com", "100")
	ids := []string{f.withdraw(t, user.ID, "60").ID, f.withdraw(t, user.ID, "60").ID}

	var wg sync.WaitGroup
	results := make([]*Decision, len(ids))
	errs := make([]error, len(ids))

	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.decide(user.ID, id, models.TransactionStatusCompleted)
		}()
	}
	wg.Wait()

	completed := 0
	for i := range ids {
		require.NoError(t, errs[i])
		if results[i].Transaction.Status == models.TransactionStatusCompleted {
			completed++
		} else {
			require.Equal(t, ReasonInsufficientBalance, results[i].Transaction.Reason.String)
		}
	}

	require.Equal(t, 1, completed)
	require.True(t, f.balance(t, user.ID).Equal(dec("40")))
}

func TestDecideRejectsForeignAndNonQueueRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := repotest.CreateUser(t, f.db, "owner@example.com", "100")
	other := repotest.CreateUser(t, f.db, "other@example.com", "100")
	txn := f.withdraw(t, owner.ID, "10")

	_, err := f.decide(other.ID, txn.ID, models.TransactionStatusCompleted)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.decide(owner.ID, "missing", models.TransactionStatusCompleted)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.decide(owner.ID, txn.ID, models.TransactionStatusPending)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	profit := &models.Transaction{
		UserID:    owner.ID,
		Type:      models.TransactionProfit,
		Origin:    models.OriginSystem,
		Direction: models.DirectionCredit,
		Amount:    dec("3"),
		Status:    models.TransactionStatusPending,
	}
	require.NoError(t, f.db.Transaction().Insert(ctx, nil, profit))

	_, err = f.decide(owner.ID, profit.ID, models.TransactionStatusCompleted)
	require.ErrorIs(t, err, models.ErrInvalidState)
	require.True(t, f.balance(t, owner.ID).Equal(dec("100")))
}

func TestDecisionAuditRecordsAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "aud@example.com", "100")
	txn := f.withdraw(t, user.ID, "25")

	_, err := f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)

	entries, err := f.svc.AuditTrail(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	decided := entries[0]
	require.Equal(t, models.AuditActionTransactionDecided, decided.Action)
	require.Equal(t, f.admin.ID, *decided.ActorID)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(decided.Metadata, &meta))
	require.Equal(t, "100.00", meta["balance_before"])
	require.Equal(t, "75.00", meta["balance_after"])
	require.Equal(t, "completed", meta["status"])
}

func TestPublishFailureKeepsDecision(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker unavailable")
	user := repotest.CreateUser(t, f.db, "pub@example.com", "100")
	txn := f.withdraw(t, user.ID, "10")

	_, err := f.decide(user.ID, txn.ID, models.TransactionStatusCompleted)
	require.NoError(t, err)
	require.True(t, f.balance(t, user.ID).Equal(dec("90")))
}

func TestOverrideCreditAndPortfolio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "ovr@example.com", "10")
	pending := f.withdraw(t, user.ID, "5")

	invested := dec("1200")
	profit := dec("-35.5")
	result, err := f.svc.ApplyOverride(ctx, f.admin, OverrideInput{
		UserID:       user.ID,
		BalanceDelta: dec("90"),
		NewInvested:  &invested,
		NewProfit:    &profit,
		Description:  "Wire received outside the app",
	})
	require.NoError(t, err)
	require.True(t, result.Balance.Equal(dec("100")))

	got, _, err := f.db.User().GetOne(ctx, nil, user.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(dec("100")))
	require.True(t, got.TotalCost.Equal(invested))
	require.True(t, got.TotalProfitLoss.Equal(profit))

	adj := result.Transaction
	require.Equal(t, models.TransactionAdjustment, adj.Type)
	require.Equal(t, models.OriginOverride, adj.Origin)
	require.Equal(t, models.TransactionStatusCompleted, adj.Status)
	require.Equal(t, models.DirectionCredit, adj.Direction)
	require.Equal(t, "Wire received outside the app", adj.Description.String)

	still, _, err := f.db.Transaction().GetOne(ctx, nil, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusPending, still.Status)

	wallet, err := f.svc.Wallet(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, wallet.Transactions, 2)
	require.Equal(t, adj.ID, wallet.Transactions[0].ID)

	entries, err := f.svc.AuditTrail(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, models.AuditActionOverrideApplied, entries[0].Action)

	var meta struct {
		Prior map[string]string `json:"prior"`
		New   map[string]string `json:"new"`
	}
	require.NoError(t, json.Unmarshal(entries[0].Metadata, &meta))
	require.Equal(t, "10.00", meta.Prior["balance"])
	require.Equal(t, "100.00", meta.New["balance"])
	require.Equal(t, "-35.50", meta.New["total_profit_loss"])

	events := f.events.Events()
	require.Equal(t, models.EventOverrideApplied, events[len(events)-1].Kind)
}

func TestOverrideDebitCannotGoNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "neg@example.com", "30")

	invested := dec("10")
	_, err := f.svc.ApplyOverride(ctx, f.admin, OverrideInput{
		UserID:       user.ID,
		BalanceDelta: dec("-31"),
		NewInvested:  &invested,
		Description:  "chargeback",
	})
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	got, _, err := f.db.User().GetOne(ctx, nil, user.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(dec("30")))
	require.True(t, got.TotalCost.IsZero())

	wallet, err := f.svc.Wallet(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, wallet.Transactions)

	result, err := f.svc.ApplyOverride(ctx, f.admin, OverrideInput{
		UserID:       user.ID,
		BalanceDelta: dec("-30"),
		Description:  "chargeback",
	})
	require.NoError(t, err)
	require.Equal(t, models.DirectionDebit, result.Transaction.Direction)
	require.True(t, result.Transaction.Amount.Equal(dec("30")))
	require.True(t, f.balance(t, user.ID).IsZero())
}

func TestOverrideValidation(t *testing.T) {
	f := newFixture(t)
	user := repotest.CreateUser(t, f.db, "ov@example.com", "30")
	negative := dec("-1")

	tests := []struct {
		name  string
		input OverrideInput
	}{
		{"no description", OverrideInput{UserID: user.ID, BalanceDelta: dec("1")}},
		{"nothing to change", OverrideInput{UserID: user.ID, Description: "noop"}},
		{"negative invested", OverrideInput{UserID: user.ID, NewInvested: &negative, Description: "x"}},
		{"sub-cent delta", OverrideInput{UserID: user.ID, BalanceDelta: dec("0.001"), Description: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ApplyOverride(context.Background(), f.admin, tt.input)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	_, err := f.svc.ApplyOverride(context.Background(), f.admin, OverrideInput{UserID: "missing", BalanceDelta: dec("1"), Description: "x"})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetWithdrawalLockAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "gate@example.com", "0")

	updated, err := f.svc.SetWithdrawalLock(ctx, f.admin, user.ID, true)
	require.NoError(t, err)
	require.False(t, updated.CanWithdraw)

	updated, err = f.svc.SetWithdrawalLock(ctx, f.admin, user.ID, false)
	require.NoError(t, err)
	require.True(t, updated.CanWithdraw)

	entries, err := f.svc.AuditTrail(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.AuditActionWithdrawalLock, entries[0].Action)
	require.JSONEq(t, `{"prior_can_withdraw":false,"can_withdraw":true}`, string(entries[0].Metadata))

	_, err = f.svc.SetWithdrawalLock(ctx, f.admin, "missing", true)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestWalletNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := repotest.CreateUser(t, f.db, "hist@example.com", "100")

	first := f.withdraw(t, user.ID, "1")
	second := f.withdraw(t, user.ID, "2")

	wallet, err := f.svc.Wallet(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, wallet.CanWithdraw)
	require.Equal(t, "USD", wallet.Currency)
	require.Equal(t, second.ID, wallet.Transactions[0].ID)
	require.Equal(t, first.ID, wallet.Transactions[1].ID)

	_, err = f.svc.Wallet(ctx, "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}
