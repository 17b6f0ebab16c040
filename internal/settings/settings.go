package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cradoe/carvest/internal/cache"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/validator"
	"github.com/shopspring/decimal"
)

const cacheKey = "settings:platform"

// Store is the subset of the redis cache used here.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Patch holds the fields an administrator wants to change. Nil fields are
// left as they are.
type Patch struct {
	WithdrawalEnabled     *bool            `json:"withdrawalEnabled"`
	WithdrawalFeePercent  *decimal.Decimal `json:"withdrawalFeePercent"`
	MinWithdrawalAmount   *decimal.Decimal `json:"minWithdrawalAmount"`
	MaintenanceMode       *bool            `json:"maintenanceMode"`
	AllowNewRegistrations *bool            `json:"allowNewRegistrations"`
	SystemNotice          *string          `json:"systemNotice"`
}

type Service struct {
	db     repository.Database
	cache  Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func New(db repository.Database, store Store, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Service{
		db:     db,
		cache:  store,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the current settings. The cached copy is at most ttl old;
// cache failures fall through to the database.
func (s *Service) Get(ctx context.Context) (models.Settings, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			var cached models.Settings
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("discarding malformed settings cache entry")
		case !errors.Is(err, cache.ErrMiss):
			s.logger.Warn("settings cache unavailable", "error", err.Error())
		}
	}

	values, err := s.db.Settings().GetAll(ctx, nil)
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	current := fromValues(values)
	s.store(ctx, current)

	return current, nil
}

func (s *Service) Update(ctx context.Context, actor models.Actor, patch Patch) (models.Settings, error) {
	if err := validatePatch(patch); err != nil {
		return models.Settings{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Settings{}, err
	}
	defer tx.Rollback()

	values, err := s.db.Settings().GetAll(ctx, tx)
	if err != nil {
		return models.Settings{}, err
	}

	prior := fromValues(values)
	next := apply(prior, patch)
	now := s.now()

	changed := map[string]string{}
	priorValues := toValues(prior)
	for key, value := range toValues(next) {
		if _, stored := values[key]; stored && priorValues[key] == value {
			continue
		}
		if err := s.db.Settings().Upsert(ctx, tx, key, value, now); err != nil {
			return models.Settings{}, err
		}
		changed[key] = value
	}

	metadata, err := json.Marshal(map[string]any{
		"prior":   prior,
		"new":     next,
		"changed": changed,
	})
	if err != nil {
		return models.Settings{}, err
	}

	entry := &models.AuditLog{
		Entity:    models.AuditEntitySettings,
		EntityID:  "platform",
		Action:    models.AuditActionSettingsUpdated,
		Metadata:  metadata,
		CreatedAt: now,
	}
	if actor.ID != "" {
		entry.ActorID = &actor.ID
	}
	if err := s.db.Audit().Insert(ctx, tx, entry); err != nil {
		return models.Settings{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Settings{}, err
	}

	s.invalidate(ctx)
	s.logger.Info("platform settings updated", "admin_id", actor.ID, "changed", changed)

	return next, nil
}

func (s *Service) store(ctx context.Context, current models.Settings) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, cacheKey, string(raw), s.ttl); err != nil {
		s.logger.Warn("could not cache settings", "error", err.Error())
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.logger.Warn("could not invalidate settings cache", "error", err.Error())
	}
}

func validatePatch(p Patch) error {
	var v validator.Validator

	if p.WithdrawalFeePercent != nil {
		fee := *p.WithdrawalFeePercent
		v.Check(!fee.IsNegative() && fee.LessThanOrEqual(decimal.NewFromInt(100)), "Withdrawal fee percent must be between 0 and 100")
	}
	if p.MinWithdrawalAmount != nil {
		v.Check(!p.MinWithdrawalAmount.IsNegative(), "Minimum withdrawal amount cannot be negative")
	}
	if p.SystemNotice != nil {
		v.Check(validator.MaxRunes(*p.SystemNotice, 500), "System notice must not be more than 500 characters")
	}

	if v.HasErrors() {
		return models.NewValidationError(v.Errors...)
	}
	return nil
}

func apply(s models.Settings, p Patch) models.Settings {
	if p.WithdrawalEnabled != nil {
		s.WithdrawalEnabled = *p.WithdrawalEnabled
	}
	if p.WithdrawalFeePercent != nil {
		s.WithdrawalFeePercent = *p.WithdrawalFeePercent
	}
	if p.MinWithdrawalAmount != nil {
		s.MinWithdrawalAmount = *p.MinWithdrawalAmount
	}
	if p.MaintenanceMode != nil {
		s.MaintenanceMode = *p.MaintenanceMode
	}
	if p.AllowNewRegistrations != nil {
		s.AllowNewRegistrations = *p.AllowNewRegistrations
	}
	if p.SystemNotice != nil {
		s.SystemNotice = *p.SystemNotice
	}
	return s
}

// fromValues starts from the defaults so a missing or unparsable row never
// disables a gate by accident.
func fromValues(values map[string]string) models.Settings {
	s := models.DefaultSettings()

	if b, err := strconv.ParseBool(values[models.SettingWithdrawalEnabled]); err == nil {
		s.WithdrawalEnabled = b
	}
	if d, err := decimal.NewFromString(values[models.SettingWithdrawalFeePercent]); err == nil {
		s.WithdrawalFeePercent = d
	}
	if d, err := decimal.NewFromString(values[models.SettingMinWithdrawalAmount]); err == nil {
		s.MinWithdrawalAmount = d
	}
	if b, err := strconv.ParseBool(values[models.SettingMaintenanceMode]); err == nil {
		s.MaintenanceMode = b
	}
	if b, err := strconv.ParseBool(values[models.SettingAllowNewRegistrations]); err == nil {
		s.AllowNewRegistrations = b
	}
	s.SystemNotice = values[models.SettingSystemNotice]

	return s
}

func toValues(s models.Settings) map[string]string {
	return map[string]string{
		models.SettingWithdrawalEnabled:     strconv.FormatBool(s.WithdrawalEnabled),
		models.SettingWithdrawalFeePercent:  s.WithdrawalFeePercent.String(),
		models.SettingMinWithdrawalAmount:   s.MinWithdrawalAmount.String(),
		models.SettingMaintenanceMode:       strconv.FormatBool(s.MaintenanceMode),
		models.SettingAllowNewRegistrations: strconv.FormatBool(s.AllowNewRegistrations),
		models.SettingSystemNotice:          s.SystemNotice,
	}
}
