package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

// KioskResponse represents a kiosk in API responses.
type KioskResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KioskFromDomain converts domain kiosk to response.
func KioskFromDomain(k *domain.Kiosk) *KioskResponse {
	return &KioskResponse{
		ID:        k.ID,
		Name:      k.Name,
		Location:  k.Location,
		Active:    k.Active,
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

// KiosksFromDomain converts domain kiosks to responses.
func KiosksFromDomain(kiosks []*domain.Kiosk) []*KioskResponse {
	result := make([]*KioskResponse, len(kiosks))
	for i, k := range kiosks {
		result[i] = KioskFromDomain(k)
	}
	return result
}

// ListKiosksResponse wraps a kiosk listing.
type ListKiosksResponse struct {
	Kiosks []*KioskResponse `json:"kiosks"`
	Total  int64            `json:"total"`
}

// StockLevelResponse represents one denomination's counters. Denomination
// is in major units; counts are physical pieces.
type StockLevelResponse struct {
	Denomination decimal.Decimal `json:"denomination"`
	Total        int64           `json:"total"`
	Reserved     int64           `json:"reserved"`
	Free         int64           `json:"free"`
}

// StockStatusResponse represents a kiosk's stock for one currency.
type StockStatusResponse struct {
	KioskID    string                `json:"kiosk_id"`
	Currency   string                `json:"currency"`
	Levels     []*StockLevelResponse `json:"levels"`
	TotalValue decimal.Decimal       `json:"total_value"`
	FreeValue  decimal.Decimal       `json:"free_value"`
	AsOf       time.Time             `json:"as_of"`
}

// StockStatusFromUseCase converts a stock snapshot to a response.
func StockStatusFromUseCase(s *usecase.StockStatus) *StockStatusResponse {
	// Persisted stock only carries catalog currencies.
	currency, _ := domain.CurrencyByCode(s.Currency)

	levels := make([]*StockLevelResponse, len(s.Levels))
	for i, level := range s.Levels {
		levels[i] = &StockLevelResponse{
			Denomination: currency.FromMinorUnits(level.Denomination),
			Total:        level.Total,
			Reserved:     level.Reserved,
			Free:         level.Free(),
		}
	}

	return &StockStatusResponse{
		KioskID:    s.KioskID,
		Currency:   s.Currency,
		Levels:     levels,
		TotalValue: currency.FromMinorUnits(s.TotalValue),
		FreeValue:  currency.FromMinorUnits(s.FreeValue),
		AsOf:       s.AsOf,
	}
}

// CombinationLineResponse is one denomination count in a quote.
type CombinationLineResponse struct {
	Denomination decimal.Decimal `json:"denomination"`
	Quantity     int64           `json:"quantity"`
}

// QuoteResponse is an advisory payout combination. Nothing is reserved.
type QuoteResponse struct {
	KioskID  string                     `json:"kiosk_id"`
	Currency string                     `json:"currency"`
	Amount   decimal.Decimal            `json:"amount"`
	Pieces   int64                      `json:"pieces"`
	Lines    []*CombinationLineResponse `json:"lines"`
}

// QuoteFromDomain converts a combination to a response.
func QuoteFromDomain(kioskID, currencyCode string, combination domain.Combination) *QuoteResponse {
	currency, _ := domain.CurrencyByCode(currencyCode)

	lines := make([]*CombinationLineResponse, 0, len(combination))
	for _, denomination := range combination.Denominations() {
		lines = append(lines, &CombinationLineResponse{
			Denomination: currency.FromMinorUnits(denomination),
			Quantity:     combination[denomination],
		})
	}

	return &QuoteResponse{
		KioskID:  kioskID,
		Currency: currency.Code,
		Amount:   currency.FromMinorUnits(combination.Amount()),
		Pieces:   combination.Pieces(),
		Lines:    lines,
	}
}

// ComposableResponse reports whether an amount can be paid out exactly.
type ComposableResponse struct {
	KioskID    string          `json:"kiosk_id"`
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	Composable bool            `json:"composable"`
}

// MovementLineResponse is one denomination line of a movement.
type MovementLineResponse struct {
	Denomination decimal.Decimal `json:"denomination"`
	Quantity     int64           `json:"quantity"`
}

// MovementResponse represents a stock movement in API responses.
type MovementResponse struct {
	ID             string                  `json:"id"`
	KioskID        string                  `json:"kiosk_id"`
	Currency       string                  `json:"currency"`
	Direction      string                  `json:"direction"`
	Status         string                  `json:"status"`
	TransactionRef string                  `json:"transaction_ref,omitempty"`
	Reason         string                  `json:"reason,omitempty"`
	Amount         decimal.Decimal         `json:"amount"`
	Pieces         int64                   `json:"pieces"`
	Lines          []*MovementLineResponse `json:"lines"`
	CreatedAt      time.Time               `json:"created_at"`
	ProcessedAt    *time.Time              `json:"processed_at,omitempty"`
}

// MovementFromDomain converts domain movement to response.
func MovementFromDomain(m *domain.Movement) *MovementResponse {
	currency, _ := domain.CurrencyByCode(m.Currency)

	lines := make([]*MovementLineResponse, len(m.Lines))
	for i, line := range m.Lines {
		lines[i] = &MovementLineResponse{
			Denomination: currency.FromMinorUnits(line.Denomination),
			Quantity:     line.Quantity,
		}
	}

	return &MovementResponse{
		ID:             m.ID,
		KioskID:        m.KioskID,
		Currency:       m.Currency,
		Direction:      string(m.Direction),
		Status:         string(m.Status),
		TransactionRef: m.TransactionRef,
		Reason:         m.Reason,
		Amount:         currency.FromMinorUnits(m.Amount()),
		Pieces:         m.Combination().Pieces(),
		Lines:          lines,
		CreatedAt:      m.CreatedAt,
		ProcessedAt:    m.ProcessedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// ListMovementsResponse wraps a movement listing.
type ListMovementsResponse struct {
	Movements []*MovementResponse `json:"movements"`
	Total     int64               `json:"total"`
}

// StockDiscrepancyResponse describes one denomination whose counters
// disagree with the movement log.
type StockDiscrepancyResponse struct {
	Denomination     decimal.Decimal `json:"denomination"`
	Total            int64           `json:"total"`
	Reserved         int64           `json:"reserved"`
	ExpectedReserved int64           `json:"expected_reserved"`
	Detail           string          `json:"detail,omitempty"`
}

// ConsistencyReportResponse is the result of a stock consistency check.
type ConsistencyReportResponse struct {
	KioskID       string                      `json:"kiosk_id"`
	Currency      string                      `json:"currency"`
	Consistent    bool                        `json:"consistent"`
	Discrepancies []*StockDiscrepancyResponse `json:"discrepancies"`
	CheckedAt     time.Time                   `json:"checked_at"`
}

// ConsistencyReportFromUseCase converts a consistency report to a response.
func ConsistencyReportFromUseCase(report *usecase.StockConsistencyReport) *ConsistencyReportResponse {
	currency, _ := domain.CurrencyByCode(report.Currency)

	discrepancies := make([]*StockDiscrepancyResponse, len(report.Discrepancies))
	for i, d := range report.Discrepancies {
		discrepancies[i] = &StockDiscrepancyResponse{
			Denomination:     currency.FromMinorUnits(d.Denomination),
			Total:            d.Total,
			Reserved:         d.Reserved,
			ExpectedReserved: d.ExpectedReserved,
			Detail:           d.Detail,
		}
	}

	return &ConsistencyReportResponse{
		KioskID:       report.KioskID,
		Currency:      report.Currency,
		Consistent:    report.Consistent,
		Discrepancies: discrepancies,
		CheckedAt:     report.CheckedAt,
	}
}

// CurrencyResponse represents a supported currency and its denominations.
type CurrencyResponse struct {
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Symbol        string            `json:"symbol"`
	Exponent      int32             `json:"exponent"`
	Denominations []decimal.Decimal `json:"denominations"`
}

// CurrenciesFromDomain converts the currency catalog to responses.
func CurrenciesFromDomain(currencies []domain.Currency) []*CurrencyResponse {
	result := make([]*CurrencyResponse, len(currencies))
	for i, c := range currencies {
		denominations := make([]decimal.Decimal, len(c.Denominations))
		for j, d := range c.Denominations {
			denominations[j] = c.FromMinorUnits(d)
		}
		result[i] = &CurrencyResponse{
			Code:          c.Code,
			Name:          c.Name,
			Symbol:        c.Symbol,
			Exponent:      c.Exponent,
			Denominations: denominations,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
