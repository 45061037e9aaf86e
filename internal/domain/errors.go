package domain

import "errors"

var (
	// Stock errors
	ErrInsufficientStock = errors.New("insufficient stock for requested amount")
	ErrStockNotFound     = errors.New("stock record not found")
	ErrInconsistentState = errors.New("stock counters are inconsistent")

	// Reference errors
	ErrKioskNotFound    = errors.New("kiosk not found")
	ErrKioskInactive    = errors.New("kiosk is not active")
	ErrKioskExists      = errors.New("kiosk already exists")
	ErrCurrencyNotFound = errors.New("currency not supported")

	// Amount errors
	ErrInvalidAmount = errors.New("amount must be a positive whole number of minor units")
)
