package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidKioskName      = errors.New("invalid kiosk name")
	ErrInvalidCurrency       = errors.New("invalid currency code")
	ErrInvalidDenomination   = errors.New("invalid denomination")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrEmptyLines            = errors.New("movement requires at least one line")
	ErrDuplicateDenomination = errors.New("duplicate denomination in lines")
	ErrInvalidDirection      = errors.New("invalid movement direction")
	ErrInvalidStatus         = errors.New("invalid movement status")
	ErrInvalidMode           = errors.New("invalid reservation mode")
	ErrInvalidOutcome        = errors.New("invalid payment outcome")
	ErrMissingTransactionRef = errors.New("transaction reference is required")
	ErrAmountTooLarge        = errors.New("amount exceeds maximum allowed")
)

// Validation constants
const (
	MaxKioskNameLength = 255
	MinKioskNameLength = 1
	MaxTransactionRef  = 128
	// MaxReserveAmount bounds a single reservation in minor units. Amounts
	// beyond it could not fit in a kiosk anyway and would only blow up the
	// selector's DP table.
	MaxReserveAmount = int64(1_000_000_000)
)

// ValidateKioskName validates kiosk name
func ValidateKioskName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinKioskNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidKioskName)
	}

	if len(name) > MaxKioskNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidKioskName, MaxKioskNameLength)
	}

	// Check for SQL injection attempts
	dangerous := []string{"--", "/*", "*/", ";", "DROP", "DELETE", "INSERT", "UPDATE"}
	nameUpper := strings.ToUpper(name)
	for _, pattern := range dangerous {
		if strings.Contains(nameUpper, pattern) {
			return fmt.Errorf("%w: contains forbidden characters", ErrInvalidKioskName)
		}
	}

	return nil
}

// ValidateCurrency validates a currency code against the catalog. Malformed
// codes and unsupported ones fail differently so callers can tell a typo
// from a currency the platform simply does not carry.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if len(currency) != 3 {
		return fmt.Errorf("%w: %q is not an ISO 4217 code", ErrInvalidCurrency, currency)
	}

	if _, err := CurrencyByCode(currency); err != nil {
		return fmt.Errorf("%w: %s", ErrCurrencyNotFound, currency)
	}

	return nil
}

// ValidateAmount validates a reservation amount in minor units.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if amount > MaxReserveAmount {
		return fmt.Errorf("%w: maximum amount is %d", ErrAmountTooLarge, MaxReserveAmount)
	}

	return nil
}

// ValidateDenomination checks that value is a denomination the currency
// actually circulates in.
func ValidateDenomination(currency Currency, value int64) error {
	if value <= 0 {
		return ErrInvalidDenomination
	}

	if !currency.HasDenomination(value) {
		return fmt.Errorf("%w: %s has no denomination %d", ErrInvalidDenomination, currency.Code, value)
	}

	return nil
}

// ValidateLines checks movement lines: non-empty, positive quantities,
// at most one line per denomination.
func ValidateLines(lines []MovementLine) error {
	if len(lines) == 0 {
		return ErrEmptyLines
	}

	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if line.Denomination <= 0 {
			return ErrInvalidDenomination
		}
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if seen[line.Denomination] {
			return fmt.Errorf("%w: %d", ErrDuplicateDenomination, line.Denomination)
		}
		seen[line.Denomination] = true
	}

	return nil
}

// ValidateMode validates a reservation mode.
func ValidateMode(mode ReserveMode) error {
	switch mode {
	case ReserveModeImmediate, ReserveModeDeferred:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// ValidateOutcome validates a payment outcome.
func ValidateOutcome(outcome PaymentOutcome) error {
	switch outcome {
	case PaymentSucceeded, PaymentFailed:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}
}

// ValidateTransactionRef validates an external transaction reference.
func ValidateTransactionRef(ref string) error {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return ErrMissingTransactionRef
	}

	if len(ref) > MaxTransactionRef {
		return fmt.Errorf("%w: reference exceeds %d characters", ErrMissingTransactionRef, MaxTransactionRef)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
