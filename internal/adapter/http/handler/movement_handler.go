package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashstock/internal/adapter/http/dto"
	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	GetMovement(ctx context.Context, id string) (*domain.Movement, error)
	ListMovements(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error)
}

// MovementHandler handles movement history HTTP requests.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Get retrieves a movement by ID.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "movementID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	movement, err := h.movementUC.GetMovement(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get movement", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// List lists movements, newest first. Filters by kiosk, currency and status
// via query parameters.
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	movements, err := h.movementUC.ListMovements(r.Context(), usecase.ListMovementsInput{
		KioskID:  query.Get("kiosk_id"),
		Currency: query.Get("currency"),
		Status:   query.Get("status"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list movements", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ListMovementsResponse{
		Movements: dto.MovementsFromDomain(movements),
		Total:     int64(len(movements)),
	})
}
