package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const transactionColumns = `id, user_id, type, origin, direction, amount, fee, method, status,
	evidence_url, address, description, reason, decided_by, decided_at, created_at`

type TransactionFilter struct {
	UserID string
	Status models.TransactionStatus
	Type   models.TransactionType
	Limit  int
	Offset int
}

type TransactionRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, txn *models.Transaction) error
	GetOne(ctx context.Context, tx *sqlx.Tx, id string) (*models.Transaction, bool, error)
	ListByUser(ctx context.Context, tx *sqlx.Tx, userID string) ([]models.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
	Finalize(ctx context.Context, tx *sqlx.Tx, id string, status models.TransactionStatus, reason, decidedBy string, at time.Time) error
}

type TransactionRepositoryImpl struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

func (repo *TransactionRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, txn *models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	if txn.Origin == "" {
		txn.Origin = models.OriginUser
	}

	q := ext(repo.db, tx)
	query := q.Rebind(`
		INSERT INTO wallet_transactions (id, user_id, type, origin, direction, amount, fee, method,
			status, evidence_url, address, description, reason, decided_by, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := q.ExecContext(ctx, query,
		txn.ID,
		txn.UserID,
		txn.Type,
		txn.Origin,
		txn.Direction,
		txn.Amount,
		txn.Fee,
		txn.Method,
		txn.Status,
		txn.EvidenceURL,
		txn.Address,
		txn.Description,
		txn.Reason,
		txn.DecidedBy,
		txn.DecidedAt,
		txn.CreatedAt,
	)
	return err
}

func (repo *TransactionRepositoryImpl) GetOne(ctx context.Context, tx *sqlx.Tx, id string) (*models.Transaction, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var txn models.Transaction

	q := ext(repo.db, tx)
	err := sqlx.GetContext(ctx, q, &txn, q.Rebind(`SELECT `+transactionColumns+` FROM wallet_transactions WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &txn, true, nil
}

// ListByUser returns the wallet history newest first.
func (repo *TransactionRepositoryImpl) ListByUser(ctx context.Context, tx *sqlx.Tx, userID string) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	transactions := []models.Transaction{}

	q := ext(repo.db, tx)
	query := q.Rebind(`
		SELECT ` + transactionColumns + ` FROM wallet_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`)

	if err := sqlx.SelectContext(ctx, q, &transactions, query, userID); err != nil {
		return nil, err
	}

	return transactions, nil
}

func (repo *TransactionRepositoryImpl) List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		where []string
		args  []any
	)

	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}

	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit, offset := clampPage(filter.Limit, filter.Offset)
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	transactions := []models.Transaction{}
	if err := repo.db.SelectContext(ctx, &transactions, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return transactions, nil
}

// Finalize moves a pending transaction to a terminal status. A row that is
// no longer pending is left untouched and ErrInvalidState is returned.
func (repo *TransactionRepositoryImpl) Finalize(ctx context.Context, tx *sqlx.Tx, id string, status models.TransactionStatus, reason, decidedBy string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if !status.IsTerminal() {
		return fmt.Errorf("cannot finalize to %q: %w", status, models.ErrInvalidState)
	}

	q := ext(repo.db, tx)
	query := q.Rebind(`
		UPDATE wallet_transactions
		SET status = ?, reason = ?, decided_by = ?, decided_at = ?
		WHERE id = ? AND status = ?`)

	res, err := q.ExecContext(ctx, query,
		status,
		sql.NullString{String: reason, Valid: reason != ""},
		sql.NullString{String: decidedBy, Valid: decidedBy != ""},
		at,
		id,
		models.TransactionStatusPending,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction is no longer pending: %w", models.ErrInvalidState)
	}

	return nil
}
