package services

import "errors"

// Common service errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive or suspended")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrUnauthorized       = errors.New("not authorized")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrDuplicate          = errors.New("duplicate record")
	ErrPeriodClosed       = errors.New("accounting period is closed")
	ErrUnbalancedEntry    = errors.New("debits and credits do not balance")
	ErrPaymentRecorded    = errors.New("payments have been recorded against this voucher")
	ErrEmptyDetails       = errors.New("voucher has no detail lines")
)
