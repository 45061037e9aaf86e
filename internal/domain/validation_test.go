package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateKioskName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateKioskName("Airport Terminal B"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateKioskName("   ")
		if !errors.Is(err, ErrInvalidKioskName) {
			t.Fatalf("expected ErrInvalidKioskName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxKioskNameLength+1)
		err := ValidateKioskName(tooLong)
		if !errors.Is(err, ErrInvalidKioskName) {
			t.Fatalf("expected ErrInvalidKioskName, got %v", err)
		}
	})

	t.Run("name with dangerous tokens", func(t *testing.T) {
		err := ValidateKioskName("kiosk; DROP TABLE stock_levels;")
		if !errors.Is(err, ErrInvalidKioskName) {
			t.Fatalf("expected ErrInvalidKioskName, got %v", err)
		}
	})
}

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("usd"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("XY"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrCurrencyNotFound) {
		t.Fatalf("expected ErrCurrencyNotFound, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(37000); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(-1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	if err := ValidateAmount(MaxReserveAmount + 1); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateDenomination(t *testing.T) {
	t.Parallel()

	usd, _ := CurrencyByCode("USD")

	if err := ValidateDenomination(usd, 2000); err != nil {
		t.Fatalf("expected valid denomination, got %v", err)
	}

	if err := ValidateDenomination(usd, 0); !errors.Is(err, ErrInvalidDenomination) {
		t.Fatalf("expected ErrInvalidDenomination for zero, got %v", err)
	}

	if err := ValidateDenomination(usd, 2500); !errors.Is(err, ErrInvalidDenomination) {
		t.Fatalf("expected ErrInvalidDenomination for unknown face value, got %v", err)
	}
}

func TestValidateLines(t *testing.T) {
	t.Parallel()

	valid := []MovementLine{
		{Denomination: 10000, Quantity: 3},
		{Denomination: 2000, Quantity: 1},
	}
	if err := ValidateLines(valid); err != nil {
		t.Fatalf("expected valid lines, got %v", err)
	}

	if err := ValidateLines(nil); !errors.Is(err, ErrEmptyLines) {
		t.Fatalf("expected ErrEmptyLines, got %v", err)
	}

	duplicated := []MovementLine{
		{Denomination: 10000, Quantity: 3},
		{Denomination: 10000, Quantity: 1},
	}
	if err := ValidateLines(duplicated); !errors.Is(err, ErrDuplicateDenomination) {
		t.Fatalf("expected ErrDuplicateDenomination, got %v", err)
	}

	zeroQty := []MovementLine{{Denomination: 10000, Quantity: 0}}
	if err := ValidateLines(zeroQty); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestValidateMode(t *testing.T) {
	t.Parallel()

	if err := ValidateMode(ReserveModeImmediate); err != nil {
		t.Fatalf("expected immediate to be valid, got %v", err)
	}

	if err := ValidateMode(ReserveModeDeferred); err != nil {
		t.Fatalf("expected deferred to be valid, got %v", err)
	}

	if err := ValidateMode(ReserveMode("eventual")); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestValidateOutcome(t *testing.T) {
	t.Parallel()

	if err := ValidateOutcome(PaymentSucceeded); err != nil {
		t.Fatalf("expected succeeded to be valid, got %v", err)
	}

	if err := ValidateOutcome(PaymentOutcome("maybe")); !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
}

func TestValidateTransactionRef(t *testing.T) {
	t.Parallel()

	if err := ValidateTransactionRef("pay-7f3b2c"); err != nil {
		t.Fatalf("expected valid reference, got %v", err)
	}

	if err := ValidateTransactionRef("  "); !errors.Is(err, ErrMissingTransactionRef) {
		t.Fatalf("expected ErrMissingTransactionRef, got %v", err)
	}

	if err := ValidateTransactionRef(strings.Repeat("r", MaxTransactionRef+1)); !errors.Is(err, ErrMissingTransactionRef) {
		t.Fatalf("expected ErrMissingTransactionRef for oversized reference, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, err := ValidatePagination(0, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", limit, offset)
	}

	limit, offset, err = ValidatePagination(5000, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 1000 || offset != 20 {
		t.Fatalf("expected clamped limit, got limit=%d offset=%d", limit, offset)
	}
}
