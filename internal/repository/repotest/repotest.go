// Package repotest provides an in-memory sqlite Database mirroring the
// postgres schema, for service and handler tests.
package repotest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL DEFAULT 'user',
	hashed_password TEXT NOT NULL,
	country TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT 'USD',
	active BOOLEAN NOT NULL DEFAULT 1,
	kyc_level TEXT NOT NULL DEFAULT 'LEVEL_1',
	kyc_document_type TEXT,
	kyc_document_url TEXT,
	kyc_submitted_at DATETIME,
	kyc_rejection_reason TEXT,
	can_withdraw BOOLEAN NOT NULL DEFAULT 1,
	balance NUMERIC NOT NULL DEFAULT 0 CHECK (balance >= 0),
	total_cost NUMERIC NOT NULL DEFAULT 0,
	total_profit_loss NUMERIC NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME
);

CREATE TABLE wallet_transactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users (id),
	type TEXT NOT NULL,
	origin TEXT NOT NULL DEFAULT 'user',
	direction TEXT NOT NULL,
	amount NUMERIC NOT NULL CHECK (amount >= 0),
	fee NUMERIC NOT NULL DEFAULT 0,
	method TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	evidence_url TEXT,
	address TEXT,
	description TEXT,
	reason TEXT,
	decided_by TEXT,
	decided_at DATETIME,
	created_at DATETIME NOT NULL
);

CREATE TABLE audit_logs (
	id TEXT PRIMARY KEY,
	actor_id TEXT,
	user_id TEXT,
	entity TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL
);

CREATE TABLE settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

var seq atomic.Int64

// New opens a fresh shared-cache in-memory database. A single connection is
// used so concurrent transactions serialise as they would on a row lock.
func New(t testing.TB) (repository.Database, *sqlx.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return repository.NewFromDB(db), db
}

// SeedSettings writes the default platform settings rows.
func SeedSettings(t testing.TB, database repository.Database) {
	t.Helper()

	d := models.DefaultSettings()
	values := map[string]string{
		models.SettingWithdrawalEnabled:     fmt.Sprint(d.WithdrawalEnabled),
		models.SettingWithdrawalFeePercent:  d.WithdrawalFeePercent.String(),
		models.SettingMinWithdrawalAmount:   d.MinWithdrawalAmount.String(),
		models.SettingMaintenanceMode:       fmt.Sprint(d.MaintenanceMode),
		models.SettingAllowNewRegistrations: fmt.Sprint(d.AllowNewRegistrations),
		models.SettingSystemNotice:          d.SystemNotice,
	}

	for key, value := range values {
		if err := database.Settings().Upsert(context.Background(), nil, key, value, time.Now().UTC()); err != nil {
			t.Fatalf("seed setting %s: %v", key, err)
		}
	}
}

// CreateUser inserts an active user with the given balance.
func CreateUser(t testing.TB, database repository.Database, email string, balance string) *models.User {
	t.Helper()

	user := &models.User{
		Name:           "Test User",
		Email:          email,
		Role:           models.RoleUser,
		HashedPassword: "not-a-real-hash",
		Country:        "NG",
		Currency:       "USD",
		Active:         true,
		CanWithdraw:    true,
		Balance:        decimal.RequireFromString(balance),
	}

	if err := database.User().Insert(context.Background(), nil, user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}

	return user
}

// CreateAdmin inserts an active admin account.
func CreateAdmin(t testing.TB, database repository.Database, email string) *models.User {
	t.Helper()

	admin := &models.User{
		Name:           "Admin",
		Email:          email,
		Role:           models.RoleAdmin,
		HashedPassword: "not-a-real-hash",
		Active:         true,
		CanWithdraw:    true,
	}

	if err := database.User().Insert(context.Background(), nil, admin); err != nil {
		t.Fatalf("create admin %s: %v", email, err)
	}

	return admin
}
