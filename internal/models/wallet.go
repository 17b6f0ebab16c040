package models

import "github.com/shopspring/decimal"

// Wallet is the read model returned to the wallet owner.
type Wallet struct {
	UserID       string
	Currency     string
	Balance      decimal.Decimal
	CanWithdraw  bool
	Portfolio    Portfolio
	Transactions []Transaction
}
