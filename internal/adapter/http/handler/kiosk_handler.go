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

// KioskService defines the behavior needed by KioskHandler.
type KioskService interface {
	CreateKiosk(ctx context.Context, input usecase.CreateKioskInput) (*domain.Kiosk, error)
	GetKiosk(ctx context.Context, id string) (*domain.Kiosk, error)
	ListKiosks(ctx context.Context, input usecase.ListKiosksInput) ([]*domain.Kiosk, error)
	DeactivateKiosk(ctx context.Context, id string) (*domain.Kiosk, error)
}

// KioskHandler handles kiosk-related HTTP requests.
type KioskHandler struct {
	kioskUC KioskService
}

// NewKioskHandler creates a new KioskHandler.
func NewKioskHandler(kioskUC KioskService) *KioskHandler {
	return &KioskHandler{kioskUC: kioskUC}
}

// Create provisions a new kiosk.
func (h *KioskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateKioskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	kiosk, err := h.kioskUC.CreateKiosk(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create kiosk", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.KioskFromDomain(kiosk))
}

// Get retrieves a kiosk by ID.
func (h *KioskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "kioskID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing kiosk ID", "")
		return
	}

	kiosk, err := h.kioskUC.GetKiosk(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get kiosk", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.KioskFromDomain(kiosk))
}

// List lists kiosks.
func (h *KioskHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	kiosks, err := h.kioskUC.ListKiosks(r.Context(), usecase.ListKiosksInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list kiosks", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListKiosksResponse{
		Kiosks: dto.KiosksFromDomain(kiosks),
		Total:  int64(len(kiosks)),
	})
}

// Deactivate takes a kiosk out of service. Existing pending movements are
// unaffected; new reservations against it are rejected.
func (h *KioskHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "kioskID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing kiosk ID", "")
		return
	}

	kiosk, err := h.kioskUC.DeactivateKiosk(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to deactivate kiosk", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.KioskFromDomain(kiosk))
}
