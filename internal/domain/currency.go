package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes a supported currency and the physical denominations
// kiosks hold for it. Denomination values are in the currency's smallest
// unit (cents for USD) and sorted descending.
type Currency struct {
	Code          string
	Name          string
	Symbol        string
	Exponent      int32
	Denominations []int64
}

var currencies = map[string]Currency{
	"USD": {
		Code:          "USD",
		Name:          "US Dollar",
		Symbol:        "$",
		Exponent:      2,
		Denominations: []int64{10000, 5000, 2000, 1000, 500, 200, 100},
	},
	"EUR": {
		Code:          "EUR",
		Name:          "Euro",
		Symbol:        "€",
		Exponent:      2,
		Denominations: []int64{50000, 20000, 10000, 5000, 2000, 1000, 500},
	},
	"PYG": {
		Code:          "PYG",
		Name:          "Guaraní",
		Symbol:        "₲",
		Exponent:      0,
		Denominations: []int64{100000, 50000, 20000, 10000, 5000, 2000},
	},
	"BRL": {
		Code:          "BRL",
		Name:          "Real",
		Symbol:        "R$",
		Exponent:      2,
		Denominations: []int64{20000, 10000, 5000, 2000, 1000, 500, 200},
	},
	"ARS": {
		Code:          "ARS",
		Name:          "Peso Argentino",
		Symbol:        "$",
		Exponent:      2,
		Denominations: []int64{2000000, 1000000, 200000, 100000, 50000, 20000, 10000},
	},
}

// CurrencyByCode looks up a supported currency.
func CurrencyByCode(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	c, ok := currencies[code]
	if !ok {
		return Currency{}, ErrCurrencyNotFound
	}
	return c, nil
}

// Currencies returns the catalog sorted by code.
func Currencies() []Currency {
	out := make([]Currency, 0, len(currencies))
	for _, c := range currencies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// HasDenomination reports whether value is a known denomination of the currency.
func (c Currency) HasDenomination(value int64) bool {
	for _, d := range c.Denominations {
		if d == value {
			return true
		}
	}
	return false
}

// ToMinorUnits converts a decimal amount in major units (e.g. "370.00" USD)
// to minor units. Fractions smaller than the currency's exponent are rejected.
func (c Currency) ToMinorUnits(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(c.Exponent)
	if !shifted.IsInteger() {
		return 0, ErrInvalidAmount
	}
	if !shifted.BigInt().IsInt64() {
		return 0, ErrAmountTooLarge
	}
	return shifted.IntPart(), nil
}

// FromMinorUnits converts minor units back to a decimal in major units.
func (c Currency) FromMinorUnits(value int64) decimal.Decimal {
	return decimal.New(value, -c.Exponent)
}
