// Package ledger owns every change to a wallet balance: user deposit and
// withdrawal requests, admin decisions on them, direct admin overrides and
// the per-user withdrawal lock.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/jmoiron/sqlx"
)

const publishTimeout = 5 * time.Second

type SettingsProvider interface {
	Get(ctx context.Context) (models.Settings, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.LedgerEvent) error
}

type Service struct {
	db       repository.Database
	settings SettingsProvider
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

func New(db repository.Database, settings SettingsProvider, events EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		db:       db,
		settings: settings,
		events:   events,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Wallet returns the balance, history and portfolio for one user.
func (s *Service) Wallet(ctx context.Context, userID string) (*models.Wallet, error) {
	user, found, err := s.db.User().GetOne(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}

	transactions, err := s.db.Transaction().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	return &models.Wallet{
		UserID:       user.ID,
		Currency:     user.Currency,
		Balance:      user.Balance,
		CanWithdraw:  user.CanWithdraw,
		Portfolio:    user.Portfolio,
		Transactions: transactions,
	}, nil
}

func (s *Service) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]models.Transaction, error) {
	return s.db.Transaction().List(ctx, filter)
}

func (s *Service) AuditTrail(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, error) {
	return s.db.Audit().List(ctx, userID, limit, offset)
}

// lockUser loads the row under FOR UPDATE so balance changes for one user
// are applied one at a time.
func (s *Service) lockUser(ctx context.Context, tx *sqlx.Tx, userID string) (*models.User, error) {
	user, found, err := s.db.User().GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return user, nil
}

func (s *Service) audit(ctx context.Context, tx *sqlx.Tx, actorID, userID, entity, entityID, action string, metadata map[string]any, at time.Time) error {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	entry := &models.AuditLog{
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Metadata:  raw,
		CreatedAt: at,
	}
	if actorID != "" {
		entry.ActorID = &actorID
	}
	if userID != "" {
		entry.UserID = &userID
	}

	return s.db.Audit().Insert(ctx, tx, entry)
}

// publish runs after commit. A broker failure is logged and never undoes the
// committed change.
func (s *Service) publish(ctx context.Context, event models.LedgerEvent) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("could not publish ledger event", "kind", event.Kind, "user_id", event.UserID, "error", err.Error())
	}
}
