package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/cashstock/internal/adapter/http/dto"
	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

type movementServiceStub struct {
	getFn  func(ctx context.Context, id string) (*domain.Movement, error)
	listFn func(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error)
}

func (s *movementServiceStub) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	return s.getFn(ctx, id)
}

func (s *movementServiceStub) ListMovements(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error) {
	return s.listFn(ctx, input)
}

func TestMovementHandler_Get(t *testing.T) {
	now := time.Now()
	processed := now.Add(time.Minute)
	handler := NewMovementHandler(&movementServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Movement, error) {
			return &domain.Movement{
				ID:          id,
				KioskID:     "kiosk-1",
				Currency:    "USD",
				Direction:   domain.DirectionOutbound,
				Status:      domain.MovementStatusConfirmed,
				Lines:       []domain.MovementLine{{Denomination: 10000, Quantity: 2}},
				CreatedAt:   now,
				ProcessedAt: &processed,
			}, nil
		},
		listFn: func(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error) {
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/movements/mov-1", nil)
	req = setChiURLParam(req, "movementID", "mov-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.MovementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "mov-1" || resp.Amount.String() != "200" || resp.ProcessedAt == nil {
		t.Fatalf("unexpected movement: %+v", resp)
	}
}

func TestMovementHandler_Get_NotFound(t *testing.T) {
	handler := NewMovementHandler(&movementServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Movement, error) {
			return nil, domain.ErrMovementNotFound
		},
		listFn: func(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error) {
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/movements/missing", nil)
	req = setChiURLParam(req, "movementID", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMovementHandler_List_Filters(t *testing.T) {
	var captured usecase.ListMovementsInput
	handler := NewMovementHandler(&movementServiceStub{
		listFn: func(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error) {
			captured = input
			return []*domain.Movement{
				{ID: "mov-1", Currency: "USD", Status: domain.MovementStatusPending},
			}, nil
		},
		getFn: func(ctx context.Context, id string) (*domain.Movement, error) { return nil, nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/movements?kiosk_id=kiosk-1&currency=USD&status=pending&limit=10&offset=5", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if captured.KioskID != "kiosk-1" || captured.Currency != "USD" || captured.Status != "pending" {
		t.Fatalf("expected filters to propagate, got %+v", captured)
	}
	if captured.Limit != 10 || captured.Offset != 5 {
		t.Fatalf("expected limit=10 offset=5, got %+v", captured)
	}

	var resp dto.ListMovementsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(resp.Movements))
	}
}

func TestMovementHandler_List_InvalidStatus(t *testing.T) {
	handler := NewMovementHandler(&movementServiceStub{
		listFn: func(ctx context.Context, input usecase.ListMovementsInput) ([]*domain.Movement, error) {
			return nil, domain.ErrInvalidStatus
		},
		getFn: func(ctx context.Context, id string) (*domain.Movement, error) { return nil, nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/movements?status=bogus", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
