package repository

import (
	"context"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AuditRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, entry *models.AuditLog) error
	List(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, error)
}

type AuditRepositoryImpl struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &AuditRepositoryImpl{db: db}
}

func (repo *AuditRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, entry *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if len(entry.Metadata) == 0 {
		entry.Metadata = []byte("{}")
	}

	q := ext(repo.db, tx)
	query := q.Rebind(`
		INSERT INTO audit_logs (id, actor_id, user_id, entity, entity_id, action, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	// metadata goes over the wire as text so postgres casts it to jsonb
	_, err := q.ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.UserID,
		entry.Entity,
		entry.EntityID,
		entry.Action,
		string(entry.Metadata),
		entry.CreatedAt,
	)
	return err
}

// List returns audit entries newest first, optionally scoped to one user.
func (repo *AuditRepositoryImpl) List(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	limit, offset = clampPage(limit, offset)

	query := `SELECT id, actor_id, user_id, entity, entity_id, action, metadata, created_at FROM audit_logs`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	entries := []models.AuditLog{}
	if err := repo.db.SelectContext(ctx, &entries, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return entries, nil
}
