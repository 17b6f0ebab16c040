package seeders

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/gopass"
)

const defaultTimeout = 5 * time.Second

type Seeder struct {
	DB     repository.Database
	Logger *slog.Logger
}

func New(db repository.Database, logger *slog.Logger) *Seeder {
	return &Seeder{
		DB:     db,
		Logger: logger,
	}
}

// Run is idempotent. Existing rows are left untouched so the seeder never
// resets a value an administrator has changed.
func (seeder *Seeder) Run(ctx context.Context, adminEmail, adminPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := seeder.seedSettings(ctx); err != nil {
		return err
	}

	if adminEmail == "" {
		seeder.Logger.Warn("ADMIN_EMAIL not set, skipping admin account")
		return nil
	}

	return seeder.seedAdmin(ctx, adminEmail, adminPassword)
}

func (seeder *Seeder) seedSettings(ctx context.Context) error {
	existing, err := seeder.DB.Settings().GetAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	d := models.DefaultSettings()
	defaults := map[string]string{
		models.SettingWithdrawalEnabled:     strconv.FormatBool(d.WithdrawalEnabled),
		models.SettingWithdrawalFeePercent:  d.WithdrawalFeePercent.String(),
		models.SettingMinWithdrawalAmount:   d.MinWithdrawalAmount.String(),
		models.SettingMaintenanceMode:       strconv.FormatBool(d.MaintenanceMode),
		models.SettingAllowNewRegistrations: strconv.FormatBool(d.AllowNewRegistrations),
		models.SettingSystemNotice:          d.SystemNotice,
	}

	now := time.Now().UTC()
	for key, value := range defaults {
		if _, ok := existing[key]; ok {
			continue
		}
		if err := seeder.DB.Settings().Upsert(ctx, nil, key, value, now); err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
		seeder.Logger.Info("seeded setting", "key", key, "value", value)
	}

	return nil
}

func (seeder *Seeder) seedAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	_, found, err := seeder.DB.User().GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}
	if found {
		seeder.Logger.Info("admin account already exists", "email", email)
		return nil
	}

	if _, errs := gopass.Validate(password); errs != nil {
		return fmt.Errorf("admin password rejected: %v", errs)
	}

	hash, err := gopass.Hash(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Name:           "Administrator",
		Email:          email,
		Role:           models.RoleAdmin,
		HashedPassword: hash,
		Active:         true,
		CanWithdraw:    true,
	}
	if err := seeder.DB.User().Insert(ctx, nil, admin); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}

	seeder.Logger.Info("seeded admin account", "email", email, "user_id", admin.ID)
	return nil
}
