package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/iho/cashstock/internal/adapter/http/dto"
	"github.com/iho/cashstock/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrKioskNotFound),
		errors.Is(err, domain.ErrMovementNotFound),
		errors.Is(err, domain.ErrStockNotFound),
		errors.Is(err, domain.ErrNoPendingMovement),
		errors.Is(err, domain.ErrCurrencyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrKioskExists),
		errors.Is(err, domain.ErrKioskInactive),
		errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidKioskName),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidDenomination),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyLines),
		errors.Is(err, domain.ErrDuplicateDenomination),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidOutcome),
		errors.Is(err, domain.ErrMissingTransactionRef):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseAmountQuery reads the amount query parameter as a decimal in major
// units and converts it to minor units of the given currency.
func parseAmountQuery(r *http.Request, currencyCode string) (int64, error) {
	raw := r.URL.Query().Get("amount")
	if raw == "" {
		return 0, domain.ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, domain.ErrInvalidAmount
	}

	currency, err := domain.CurrencyByCode(currencyCode)
	if err != nil {
		return 0, err
	}

	return currency.ToMinorUnits(amount)
}
