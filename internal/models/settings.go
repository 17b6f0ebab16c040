package models

import "github.com/shopspring/decimal"

// Settings are platform-wide switches read by gating logic on every request.
type Settings struct {
	WithdrawalEnabled     bool            `json:"withdrawal_enabled"`
	WithdrawalFeePercent  decimal.Decimal `json:"withdrawal_fee_percent"`
	MinWithdrawalAmount   decimal.Decimal `json:"min_withdrawal_amount"`
	MaintenanceMode       bool            `json:"maintenance_mode"`
	AllowNewRegistrations bool            `json:"allow_new_registrations"`
	SystemNotice          string          `json:"system_notice"`
}

func DefaultSettings() Settings {
	return Settings{
		WithdrawalEnabled:     true,
		WithdrawalFeePercent:  decimal.Zero,
		MinWithdrawalAmount:   decimal.Zero,
		AllowNewRegistrations: true,
	}
}

const (
	SettingWithdrawalEnabled     = "withdrawal_enabled"
	SettingWithdrawalFeePercent  = "withdrawal_fee_percent"
	SettingMinWithdrawalAmount   = "min_withdrawal_amount"
	SettingMaintenanceMode       = "maintenance_mode"
	SettingAllowNewRegistrations = "allow_new_registrations"
	SettingSystemNotice          = "system_notice"
)
