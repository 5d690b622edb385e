package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeBalance     = errors.New("balance cannot be negative")

	// Transfer errors
	ErrSameAccount    = errors.New("cannot transfer to same account")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrTransferFailed = errors.New("transfer failed after debit")

	// Redemption errors
	ErrInvalidRedemption = errors.New("invalid redemption")
	ErrRedemptionFailed  = errors.New("redemption failed")
	ErrUnknownSkill      = errors.New("unknown skill")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
