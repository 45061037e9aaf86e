package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashstock/internal/adapter/http/dto"
	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

// ReservationService defines the behavior needed by ReservationHandler.
type ReservationService interface {
	Quote(ctx context.Context, kioskID, currency string, amount int64) (domain.Combination, error)
	Reserve(ctx context.Context, input usecase.ReserveInput) (*domain.Movement, error)
	Confirm(ctx context.Context, movementID string) (*domain.Movement, error)
	Cancel(ctx context.Context, movementID, reason string) (*domain.Movement, error)
	ResolvePayment(ctx context.Context, transactionRef string, outcome domain.PaymentOutcome) (*domain.Movement, error)
}

// ReservationHandler handles the payout reservation lifecycle.
type ReservationHandler struct {
	reservationUC ReservationService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(reservationUC ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationUC: reservationUC}
}

// Quote computes a payout combination without reserving anything.
func (h *ReservationHandler) Quote(w http.ResponseWriter, r *http.Request) {
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

	combination, err := h.reservationUC.Quote(r.Context(), kioskID, currency, amount)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to quote payout", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromDomain(kioskID, currency, combination))
}

// Reserve selects denominations for the amount and puts them on hold.
func (h *ReservationHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req dto.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, mapDomainError(err), "invalid reservation", err.Error())
		return
	}

	movement, err := h.reservationUC.Reserve(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reserve stock", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Confirm settles a pending movement: the cash left the kiosk.
func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	movementID := chi.URLParam(r, "movementID")
	if movementID == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	movement, err := h.reservationUC.Confirm(r.Context(), movementID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to confirm movement", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// Cancel releases a pending movement's holds. The body is optional; an
// empty one cancels without a reason.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	movementID := chi.URLParam(r, "movementID")
	if movementID == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	var req dto.CancelMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.reservationUC.Cancel(r.Context(), movementID, req.Reason)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to cancel movement", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// PaymentResolved settles the pending movement for a transaction reference
// after the payment collaborator reports the outcome. Success confirms,
// failure cancels.
func (h *ReservationHandler) PaymentResolved(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentResolvedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.reservationUC.ResolvePayment(r.Context(), req.TransactionRef, domain.PaymentOutcome(req.Outcome))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to resolve payment", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}
