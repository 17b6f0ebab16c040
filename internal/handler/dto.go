package handler

import (
	"encoding/json"
	"time"

	"github.com/cradoe/carvest/internal/models"
	"github.com/shopspring/decimal"
)

// Money renders a currency amount with exactly two decimal places, "60.00".
type Money struct {
	decimal.Decimal
}

func money(d decimal.Decimal) Money {
	return Money{d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

type TransactionResponseData struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Type        string     `json:"type"`
	Origin      string     `json:"origin"`
	Direction   string     `json:"direction"`
	Amount      Money      `json:"amount"`
	Fee         Money      `json:"fee"`
	Method      string     `json:"method,omitempty"`
	Status      string     `json:"status"`
	EvidenceURL string     `json:"evidence_url,omitempty"`
	Address     string     `json:"address,omitempty"`
	Description string     `json:"description,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	DecidedBy   string     `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	Date        time.Time  `json:"date"`
}

func newTransactionResponse(t *models.Transaction) TransactionResponseData {
	data := TransactionResponseData{
		ID:          t.ID,
		UserID:      t.UserID,
		Type:        string(t.Type),
		Origin:      string(t.Origin),
		Direction:   string(t.Direction),
		Amount:      money(t.Amount),
		Fee:         money(t.Fee),
		Method:      t.Method,
		Status:      string(t.Status),
		EvidenceURL: t.EvidenceURL.String,
		Address:     t.Address.String,
		Description: t.Description.String,
		Reason:      t.Reason.String,
		DecidedBy:   t.DecidedBy.String,
		Date:        t.CreatedAt,
	}
	if t.DecidedAt.Valid {
		data.DecidedAt = &t.DecidedAt.Time
	}
	return data
}

func newTransactionList(list []models.Transaction) []TransactionResponseData {
	data := make([]TransactionResponseData, 0, len(list))
	for i := range list {
		data = append(data, newTransactionResponse(&list[i]))
	}
	return data
}

type PortfolioResponseData struct {
	TotalCost       Money `json:"total_cost"`
	TotalProfitLoss Money `json:"total_profit_loss"`
}

type WalletBalanceData struct {
	Balance      Money                     `json:"balance"`
	Currency     string                    `json:"currency"`
	Portfolio    PortfolioResponseData     `json:"portfolio"`
	Transactions []TransactionResponseData `json:"transactions"`
}

// WalletResponseData keeps canWithdraw beside the wallet, not inside it.
type WalletResponseData struct {
	Wallet      WalletBalanceData `json:"wallet"`
	CanWithdraw bool              `json:"canWithdraw"`
}

func newWalletResponse(w *models.Wallet) WalletResponseData {
	return WalletResponseData{
		Wallet: WalletBalanceData{
			Balance:  money(w.Balance),
			Currency: w.Currency,
			Portfolio: PortfolioResponseData{
				TotalCost:       money(w.Portfolio.TotalCost),
				TotalProfitLoss: money(w.Portfolio.TotalProfitLoss),
			},
			Transactions: newTransactionList(w.Transactions),
		},
		CanWithdraw: w.CanWithdraw,
	}
}

type KYCResponseData struct {
	Level           string     `json:"kyc_level"`
	DocumentType    string     `json:"document_type,omitempty"`
	DocumentURL     string     `json:"document_url,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

func newKYCResponse(u *models.User) KYCResponseData {
	data := KYCResponseData{
		Level:           string(u.KYCLevel),
		DocumentType:    u.DocumentType.String,
		DocumentURL:     u.DocumentURL.String,
		RejectionReason: u.RejectionReason.String,
	}
	if u.SubmittedAt.Valid {
		data.SubmittedAt = &u.SubmittedAt.Time
	}
	return data
}

type UserResponseData struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Role        string                `json:"role"`
	Country     string                `json:"country"`
	Currency    string                `json:"currency"`
	Active      bool                  `json:"active"`
	CanWithdraw bool                  `json:"can_withdraw"`
	Balance     Money                 `json:"balance"`
	Portfolio   PortfolioResponseData `json:"portfolio"`
	KYC         KYCResponseData       `json:"kyc"`
	CreatedAt   time.Time             `json:"created_at"`
}

func newUserResponse(u *models.User) UserResponseData {
	return UserResponseData{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		Country:     u.Country,
		Currency:    u.Currency,
		Active:      u.Active,
		CanWithdraw: u.CanWithdraw,
		Balance:     money(u.Balance),
		Portfolio: PortfolioResponseData{
			TotalCost:       money(u.TotalCost),
			TotalProfitLoss: money(u.TotalProfitLoss),
		},
		KYC:       newKYCResponse(u),
		CreatedAt: u.CreatedAt,
	}
}

func newUserList(list []models.User) []UserResponseData {
	data := make([]UserResponseData, 0, len(list))
	for i := range list {
		data = append(data, newUserResponse(&list[i]))
	}
	return data
}

type AuditResponseData struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actor_id,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Action    string          `json:"action"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}

func newAuditList(list []models.AuditLog) []AuditResponseData {
	data := make([]AuditResponseData, 0, len(list))
	for _, entry := range list {
		item := AuditResponseData{
			ID:        entry.ID,
			Entity:    entry.Entity,
			EntityID:  entry.EntityID,
			Action:    entry.Action,
			Metadata:  json.RawMessage(entry.Metadata),
			CreatedAt: entry.CreatedAt,
		}
		if entry.ActorID != nil {
			item.ActorID = *entry.ActorID
		}
		if entry.UserID != nil {
			item.UserID = *entry.UserID
		}
		if !json.Valid(item.Metadata) {
			item.Metadata = json.RawMessage("{}")
		}
		data = append(data, item)
	}
	return data
}
