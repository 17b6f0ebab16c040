package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID             string          `db:"id"`
	Name           string          `db:"name"`
	Email          string          `db:"email"`
	Role           Role            `db:"role"`
	HashedPassword string          `db:"hashed_password"`
	Country        string          `db:"country"`
	Currency       string          `db:"currency"`
	Active         bool            `db:"active"`
	KYCLevel       KYCLevel        `db:"kyc_level"`
	CanWithdraw    bool            `db:"can_withdraw"`
	Balance        decimal.Decimal `db:"balance"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      sql.NullTime    `db:"updated_at"`

	KYCData
	Portfolio
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Portfolio fields are driven by the investment lifecycle and may be
// overridden by an administrator.
type Portfolio struct {
	TotalCost       decimal.Decimal `db:"total_cost"`
	TotalProfitLoss decimal.Decimal `db:"total_profit_loss"`
}

// Actor identifies who performs a privileged operation.
type Actor struct {
	ID    string
	Email string
}
