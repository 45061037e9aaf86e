package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashstock/internal/adapter/http/dto"
	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

// StockService defines the stock behavior needed by StockHandler.
type StockService interface {
	Status(ctx context.Context, kioskID, currency string) (*usecase.StockStatus, error)
	Composable(ctx context.Context, kioskID, currency string, amount int64) (bool, error)
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Movement, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Movement, error)
}

// ConsistencyService defines the reconciliation behavior needed by StockHandler.
type ConsistencyService interface {
	CheckStock(ctx context.Context, kioskID, currency string) (*usecase.StockConsistencyReport, error)
}

// StockHandler handles stock-related HTTP requests.
type StockHandler struct {
	stockUC       StockService
	consistencyUC ConsistencyService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockUC StockService, consistencyUC ConsistencyService) *StockHandler {
	return &StockHandler{stockUC: stockUC, consistencyUC: consistencyUC}
}

// Status returns per-denomination counters for one kiosk and currency.
func (h *StockHandler) Status(w http.ResponseWriter, r *http.Request) {
	kioskID := chi.URLParam(r, "kioskID")
	currency := chi.URLParam(r, "currency")
	if kioskID == "" || currency == "" {
		writeError(w, http.StatusBadRequest, "missing kiosk ID or currency", "")
		return
	}

	status, err := h.stockUC.Status(r.Context(), kioskID, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get stock status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StockStatusFromUseCase(status))
}

// Composable reports whether the amount can be paid out exactly from free
// stock. Advisory only; the answer can change before a reservation lands.
func (h *StockHandler) Composable(w http.ResponseWriter, r *http.Request) {
	kioskID := chi.URLParam(r, "kioskID")
	currency := chi.URLParam(r, "currency")
	if kioskID == "" || currency == "" {
		writeError(w, http.StatusBadRequest, "missing kiosk ID or currency", "")
		return
	}

	amount, err := parseAmountQuery(r, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid amount", err.Error())
		return
	}

	ok, err := h.stockUC.Composable(r.Context(), kioskID, currency, amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check amount", err.Error())
		return
	}

	currencyInfo, _ := domain.CurrencyByCode(currency)
	writeJSON(w, http.StatusOK, dto.ComposableResponse{
		KioskID:    kioskID,
		Currency:   currencyInfo.Code,
		Amount:     currencyInfo.FromMinorUnits(amount),
		Composable: ok,
	})
}

// Deposit records replenishment stock arriving at a kiosk.
func (h *StockHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	kioskID := chi.URLParam(r, "kioskID")
	currency := chi.URLParam(r, "currency")
	if kioskID == "" || currency == "" {
		writeError(w, http.StatusBadRequest, "missing kiosk ID or currency", "")
		return
	}

	var req dto.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToDepositInput(kioskID, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid deposit", err.Error())
		return
	}

	movement, err := h.stockUC.Deposit(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to deposit stock", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Withdraw records cash physically removed from a kiosk outside the payout
// flow, such as collection runs.
func (h *StockHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	kioskID := chi.URLParam(r, "kioskID")
	currency := chi.URLParam(r, "currency")
	if kioskID == "" || currency == "" {
		writeError(w, http.StatusBadRequest, "missing kiosk ID or currency", "")
		return
	}

	var req dto.AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToWithdrawInput(kioskID, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "invalid withdrawal", err.Error())
		return
	}

	movement, err := h.stockUC.Withdraw(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to withdraw stock", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Consistency verifies the stored counters against the movement log. A
// divergent stock still answers 200; the report carries the discrepancies.
func (h *StockHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	kioskID := chi.URLParam(r, "kioskID")
	currency := chi.URLParam(r, "currency")
	if kioskID == "" || currency == "" {
		writeError(w, http.StatusBadRequest, "missing kiosk ID or currency", "")
		return
	}

	report, err := h.consistencyUC.CheckStock(r.Context(), kioskID, currency)
	if err != nil && report == nil {
		writeError(w, mapDomainError(err), "failed to check stock", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyReportFromUseCase(report))
}
