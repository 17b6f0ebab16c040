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
	"github.com/shopspring/decimal"
)

const userColumns = `id, name, email, role, hashed_password, country, currency, active,
	kyc_level, kyc_document_type, kyc_document_url, kyc_submitted_at, kyc_rejection_reason,
	can_withdraw, balance, total_cost, total_profit_loss, created_at, updated_at`

type UserFilter struct {
	KYCLevel models.KYCLevel
	Search   string
	Limit    int
	Offset   int
}

type UserRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, user *models.User) error
	GetOne(ctx context.Context, tx *sqlx.Tx, id string) (*models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, bool, error)
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.User, bool, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, error)

	AdjustBalance(ctx context.Context, tx *sqlx.Tx, id string, delta decimal.Decimal, at time.Time) error
	SetPortfolio(ctx context.Context, tx *sqlx.Tx, id string, portfolio models.Portfolio, at time.Time) error
	SetCanWithdraw(ctx context.Context, tx *sqlx.Tx, id string, canWithdraw bool, at time.Time) error

	SubmitKYC(ctx context.Context, tx *sqlx.Tx, id string, documentType models.DocumentType, documentURL string, at time.Time) error
	DecideKYC(ctx context.Context, tx *sqlx.Tx, id string, level models.KYCLevel, reason string, at time.Time) error
}

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.KYCLevel == "" {
		user.KYCLevel = models.KYCLevel1
	}
	if user.Currency == "" {
		user.Currency = "USD"
	}

	q := ext(repo.db, tx)
	query := q.Rebind(`
		INSERT INTO users (id, name, email, role, hashed_password, country, currency, active,
			kyc_level, can_withdraw, balance, total_cost, total_profit_loss, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		strings.ToLower(user.Email),
		user.Role,
		user.HashedPassword,
		user.Country,
		user.Currency,
		user.Active,
		user.KYCLevel,
		user.CanWithdraw,
		user.Balance,
		user.TotalCost,
		user.TotalProfitLoss,
		user.CreatedAt,
	)
	return err
}

func (repo *UserRepositoryImpl) GetOne(ctx context.Context, tx *sqlx.Tx, id string) (*models.User, bool, error) {
	q := ext(repo.db, tx)
	return repo.getOne(ctx, q, q.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
}

func (repo *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	return repo.getOne(ctx, repo.db, repo.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), strings.ToLower(email))
}

// GetForUpdate locks the user row for the rest of tx. All balance mutations
// for a user go through this lock first.
func (repo *UserRepositoryImpl) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.User, bool, error) {
	if tx == nil {
		return nil, false, errors.New("GetForUpdate requires a transaction")
	}
	return repo.getOne(ctx, tx, tx.Rebind(forUpdate(tx, `SELECT `+userColumns+` FROM users WHERE id = ?`)), id)
}

func (repo *UserRepositoryImpl) getOne(ctx context.Context, q sqlx.QueryerContext, query string, arg string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var user models.User

	err := sqlx.GetContext(ctx, q, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &user, true, nil
}

func (repo *UserRepositoryImpl) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		where []string
		args  []any
	)

	if filter.KYCLevel != "" {
		where = append(where, "kyc_level = ?")
		args = append(args, filter.KYCLevel)
	}
	if filter.Search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR email LIKE ?)")
		term := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, term, term)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit, offset := clampPage(filter.Limit, filter.Offset)
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	users := []models.User{}
	err := repo.db.SelectContext(ctx, &users, repo.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return users, nil
}

// AdjustBalance applies delta only when the resulting balance stays
// non-negative. The check and the write are one statement.
func (repo *UserRepositoryImpl) AdjustBalance(ctx context.Context, tx *sqlx.Tx, id string, delta decimal.Decimal, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := ext(repo.db, tx)
	query := q.Rebind(`
		UPDATE users SET balance = balance + ?, updated_at = ?
		WHERE id = ? AND balance + ? >= 0`)

	res, err := q.ExecContext(ctx, query, delta, at, id, delta)
	if err != nil {
		return err
	}

	if err := repo.expectOne(ctx, q, res, id); err != nil {
		if errors.Is(err, errNoRows) {
			return models.ErrInsufficientFunds
		}
		return err
	}

	return nil
}

func (repo *UserRepositoryImpl) SetPortfolio(ctx context.Context, tx *sqlx.Tx, id string, portfolio models.Portfolio, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := ext(repo.db, tx)
	query := q.Rebind(`UPDATE users SET total_cost = ?, total_profit_loss = ?, updated_at = ? WHERE id = ?`)

	res, err := q.ExecContext(ctx, query, portfolio.TotalCost, portfolio.TotalProfitLoss, at, id)
	if err != nil {
		return err
	}

	return ignoreUnchanged(repo.expectOne(ctx, q, res, id))
}

func (repo *UserRepositoryImpl) SetCanWithdraw(ctx context.Context, tx *sqlx.Tx, id string, canWithdraw bool, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := ext(repo.db, tx)
	query := q.Rebind(`UPDATE users SET can_withdraw = ?, updated_at = ? WHERE id = ?`)

	res, err := q.ExecContext(ctx, query, canWithdraw, at, id)
	if err != nil {
		return err
	}

	return ignoreUnchanged(repo.expectOne(ctx, q, res, id))
}

// SubmitKYC moves the user to PENDING. It only succeeds from LEVEL_1 or
// REJECTED; the previous rejection reason is kept until the next decision.
func (repo *UserRepositoryImpl) SubmitKYC(ctx context.Context, tx *sqlx.Tx, id string, documentType models.DocumentType, documentURL string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := ext(repo.db, tx)
	query := q.Rebind(`
		UPDATE users SET kyc_level = ?, kyc_document_type = ?, kyc_document_url = ?,
			kyc_submitted_at = ?, updated_at = ?
		WHERE id = ? AND kyc_level IN (?, ?)`)

	res, err := q.ExecContext(ctx, query,
		models.KYCPending, documentType, documentURL, at, at,
		id, models.KYCLevel1, models.KYCRejected,
	)
	if err != nil {
		return err
	}

	if err := repo.expectOne(ctx, q, res, id); err != nil {
		if errors.Is(err, errNoRows) {
			return fmt.Errorf("kyc submission not accepted: %w", models.ErrInvalidState)
		}
		return err
	}

	return nil
}

// DecideKYC resolves a PENDING submission. Approval clears the previous
// rejection reason; the document itself is always retained.
func (repo *UserRepositoryImpl) DecideKYC(ctx context.Context, tx *sqlx.Tx, id string, level models.KYCLevel, reason string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rejection := sql.NullString{String: reason, Valid: level == models.KYCRejected}

	q := ext(repo.db, tx)
	query := q.Rebind(`
		UPDATE users SET kyc_level = ?, kyc_rejection_reason = ?, updated_at = ?
		WHERE id = ? AND kyc_level = ?`)

	res, err := q.ExecContext(ctx, query, level, rejection, at, id, models.KYCPending)
	if err != nil {
		return err
	}

	if err := repo.expectOne(ctx, q, res, id); err != nil {
		if errors.Is(err, errNoRows) {
			return fmt.Errorf("no pending kyc submission: %w", models.ErrInvalidState)
		}
		return err
	}

	return nil
}

var errNoRows = errors.New("no rows affected")

// expectOne turns a zero-row update into ErrNotFound when the user is
// missing, or errNoRows when a guard clause filtered the row out.
func (repo *UserRepositoryImpl) expectOne(ctx context.Context, q sqlx.ExtContext, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = sqlx.GetContext(ctx, q, &exists, q.Rebind(`SELECT COUNT(*) FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if exists == 0 {
		return models.ErrNotFound
	}

	return errNoRows
}

func ignoreUnchanged(err error) error {
	if errors.Is(err, errNoRows) {
		return nil
	}
	return err
}
