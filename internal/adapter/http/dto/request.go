package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

// CreateKioskRequest represents a request to provision a kiosk.
type CreateKioskRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateKioskRequest) ToUseCaseInput() usecase.CreateKioskInput {
	return usecase.CreateKioskInput{
		Name:     r.Name,
		Location: r.Location,
	}
}

// ReserveRequest represents a request to reserve cash for a payout.
// Amount is in major units ("370.00"); the currency's exponent drives
// the conversion.
type ReserveRequest struct {
	TransactionRef string          `json:"transaction_ref,omitempty"`
	KioskID        string          `json:"kiosk_id"`
	Currency       string          `json:"currency"`
	Amount         decimal.Decimal `json:"amount"`
	Mode           string          `json:"mode"`
}

// ToUseCaseInput converts to use case input.
func (r *ReserveRequest) ToUseCaseInput() (usecase.ReserveInput, error) {
	currency, err := domain.CurrencyByCode(r.Currency)
	if err != nil {
		return usecase.ReserveInput{}, err
	}

	amount, err := currency.ToMinorUnits(r.Amount)
	if err != nil {
		return usecase.ReserveInput{}, err
	}

	return usecase.ReserveInput{
		TransactionRef: r.TransactionRef,
		KioskID:        r.KioskID,
		Currency:       currency.Code,
		Amount:         amount,
		Mode:           domain.ReserveMode(r.Mode),
	}, nil
}

// CancelMovementRequest carries the cancellation reason.
type CancelMovementRequest struct {
	Reason string `json:"reason"`
}

// PaymentResolvedRequest is the payment collaborator's webhook payload.
type PaymentResolvedRequest struct {
	TransactionRef string `json:"transaction_ref"`
	Outcome        string `json:"outcome"`
}

// MovementLineItem is one denomination line in a deposit or withdrawal.
// Denomination is in major units ("100" for a hundred-dollar bill).
type MovementLineItem struct {
	Denomination decimal.Decimal `json:"denomination"`
	Quantity     int64           `json:"quantity"`
}

// AdjustStockRequest represents a deposit or withdrawal body.
type AdjustStockRequest struct {
	Lines  []MovementLineItem `json:"lines"`
	Reason string             `json:"reason,omitempty"`
}

// ToDepositInput converts to use case input for the kiosk and currency
// taken from the URL.
func (r *AdjustStockRequest) ToDepositInput(kioskID, currencyCode string) (usecase.DepositInput, error) {
	currency, err := domain.CurrencyByCode(currencyCode)
	if err != nil {
		return usecase.DepositInput{}, err
	}

	lines, err := linesToDomain(currency, r.Lines)
	if err != nil {
		return usecase.DepositInput{}, err
	}

	return usecase.DepositInput{
		KioskID:  kioskID,
		Currency: currency.Code,
		Lines:    lines,
		Reason:   r.Reason,
	}, nil
}

// ToWithdrawInput converts to use case input for the kiosk and currency
// taken from the URL.
func (r *AdjustStockRequest) ToWithdrawInput(kioskID, currencyCode string) (usecase.WithdrawInput, error) {
	currency, err := domain.CurrencyByCode(currencyCode)
	if err != nil {
		return usecase.WithdrawInput{}, err
	}

	lines, err := linesToDomain(currency, r.Lines)
	if err != nil {
		return usecase.WithdrawInput{}, err
	}

	return usecase.WithdrawInput{
		KioskID:  kioskID,
		Currency: currency.Code,
		Lines:    lines,
		Reason:   r.Reason,
	}, nil
}

func linesToDomain(currency domain.Currency, items []MovementLineItem) ([]domain.MovementLine, error) {
	lines := make([]domain.MovementLine, 0, len(items))
	for _, item := range items {
		value, err := currency.ToMinorUnits(item.Denomination)
		if err != nil {
			return nil, domain.ErrInvalidDenomination
		}
		lines = append(lines, domain.MovementLine{
			Denomination: value,
			Quantity:     item.Quantity,
		})
	}
	return lines, nil
}
