package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type SettingsRepository interface {
	GetAll(ctx context.Context, tx *sqlx.Tx) (map[string]string, error)
	Upsert(ctx context.Context, tx *sqlx.Tx, key, value string, at time.Time) error
}

type SettingsRepositoryImpl struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &SettingsRepositoryImpl{db: db}
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func (repo *SettingsRepositoryImpl) GetAll(ctx context.Context, tx *sqlx.Tx) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []settingRow
	if err := sqlx.SelectContext(ctx, ext(repo.db, tx), &rows, `SELECT key, value FROM settings`); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}

	return values, nil
}

func (repo *SettingsRepositoryImpl) Upsert(ctx context.Context, tx *sqlx.Tx, key, value string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := ext(repo.db, tx)
	query := q.Rebind(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)

	_, err := q.ExecContext(ctx, query, key, value, at)
	return err
}
