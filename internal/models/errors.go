package models

import (
	"errors"
	"strings"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrWithdrawalLocked    = errors.New("withdrawals are restricted on this account")
	ErrWithdrawalsDisabled = errors.New("withdrawals are temporarily disabled")
	ErrInvalidState        = errors.New("operation not allowed in the current state")
	ErrMaintenance         = errors.New("the platform is under maintenance")
	ErrUploadFailed        = errors.New("file upload failed")
)

// ValidationError carries every failed check so the caller can render
// them inline.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}
