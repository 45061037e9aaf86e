package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashstock/internal/adapter/http/dto"
	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

type kioskServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateKioskInput) (*domain.Kiosk, error)
	getFn        func(ctx context.Context, id string) (*domain.Kiosk, error)
	listFn       func(ctx context.Context, input usecase.ListKiosksInput) ([]*domain.Kiosk, error)
	deactivateFn func(ctx context.Context, id string) (*domain.Kiosk, error)
}

func (s *kioskServiceStub) CreateKiosk(ctx context.Context, input usecase.CreateKioskInput) (*domain.Kiosk, error) {
	return s.createFn(ctx, input)
}

func (s *kioskServiceStub) GetKiosk(ctx context.Context, id string) (*domain.Kiosk, error) {
	return s.getFn(ctx, id)
}

func (s *kioskServiceStub) ListKiosks(ctx context.Context, input usecase.ListKiosksInput) ([]*domain.Kiosk, error) {
	return s.listFn(ctx, input)
}

func (s *kioskServiceStub) DeactivateKiosk(ctx context.Context, id string) (*domain.Kiosk, error) {
	return s.deactivateFn(ctx, id)
}

func newKioskStub() *kioskServiceStub {
	return &kioskServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateKioskInput) (*domain.Kiosk, error) {
			return &domain.Kiosk{ID: "kiosk-1"}, nil
		},
		getFn: func(ctx context.Context, id string) (*domain.Kiosk, error) {
			return &domain.Kiosk{ID: id}, nil
		},
		listFn: func(ctx context.Context, input usecase.ListKiosksInput) ([]*domain.Kiosk, error) {
			return []*domain.Kiosk{}, nil
		},
		deactivateFn: func(ctx context.Context, id string) (*domain.Kiosk, error) {
			return &domain.Kiosk{ID: id}, nil
		},
	}
}

func TestKioskHandler_Create_Success(t *testing.T) {
	kiosk := &domain.Kiosk{
		ID:       "kiosk-1",
		Name:     "airport-t1",
		Location: "Terminal 1",
		Active:   true,
	}

	var captured usecase.CreateKioskInput
	stub := newKioskStub()
	stub.createFn = func(ctx context.Context, input usecase.CreateKioskInput) (*domain.Kiosk, error) {
		captured = input
		return kiosk, nil
	}
	handler := NewKioskHandler(stub)

	body, _ := json.Marshal(dto.CreateKioskRequest{
		Name:     "airport-t1",
		Location: "Terminal 1",
	})

	req := httptest.NewRequest(http.MethodPost, "/kiosks", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Name != "airport-t1" || captured.Location != "Terminal 1" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.KioskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "kiosk-1" || !resp.Active {
		t.Fatalf("expected kiosk-1 active, got %+v", resp)
	}
}

func TestKioskHandler_Create_InvalidJSON(t *testing.T) {
	stub := newKioskStub()
	stub.createFn = func(ctx context.Context, input usecase.CreateKioskInput) (*domain.Kiosk, error) {
		t.Fatal("CreateKiosk should not be called for invalid payload")
		return nil, nil
	}
	handler := NewKioskHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/kiosks", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestKioskHandler_Create_Duplicate(t *testing.T) {
	stub := newKioskStub()
	stub.createFn = func(ctx context.Context, input usecase.CreateKioskInput) (*domain.Kiosk, error) {
		return nil, domain.ErrKioskExists
	}
	handler := NewKioskHandler(stub)

	body, _ := json.Marshal(dto.CreateKioskRequest{Name: "airport-t1"})
	req := httptest.NewRequest(http.MethodPost, "/kiosks", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestKioskHandler_Create_InvalidName(t *testing.T) {
	stub := newKioskStub()
	stub.createFn = func(ctx context.Context, input usecase.CreateKioskInput) (*domain.Kiosk, error) {
		return nil, domain.ErrInvalidKioskName
	}
	handler := NewKioskHandler(stub)

	body, _ := json.Marshal(dto.CreateKioskRequest{Name: ""})
	req := httptest.NewRequest(http.MethodPost, "/kiosks", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestKioskHandler_Get(t *testing.T) {
	stub := newKioskStub()
	stub.getFn = func(ctx context.Context, id string) (*domain.Kiosk, error) {
		if id != "kiosk-1" {
			t.Fatalf("expected id kiosk-1, got %s", id)
		}
		return &domain.Kiosk{ID: id, Name: "airport-t1"}, nil
	}
	handler := NewKioskHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/kiosks/kiosk-1", nil)
	req = setChiURLParam(req, "kioskID", "kiosk-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestKioskHandler_Get_NotFound(t *testing.T) {
	stub := newKioskStub()
	stub.getFn = func(ctx context.Context, id string) (*domain.Kiosk, error) {
		return nil, domain.ErrKioskNotFound
	}
	handler := NewKioskHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/kiosks/missing", nil)
	req = setChiURLParam(req, "kioskID", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestKioskHandler_List(t *testing.T) {
	stub := newKioskStub()
	stub.listFn = func(ctx context.Context, input usecase.ListKiosksInput) ([]*domain.Kiosk, error) {
		if input.Limit != 5 || input.Offset != 2 {
			t.Fatalf("expected limit=5 offset=2, got %+v", input)
		}
		return []*domain.Kiosk{{ID: "kiosk-1"}, {ID: "kiosk-2"}}, nil
	}
	handler := NewKioskHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/kiosks?limit=5&offset=2", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListKiosksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Kiosks) != 2 {
		t.Fatalf("expected 2 kiosks, got %d", len(resp.Kiosks))
	}
}

func TestKioskHandler_Deactivate(t *testing.T) {
	stub := newKioskStub()
	stub.deactivateFn = func(ctx context.Context, id string) (*domain.Kiosk, error) {
		return &domain.Kiosk{ID: id, Active: false}, nil
	}
	handler := NewKioskHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/kiosks/kiosk-1", nil)
	req = setChiURLParam(req, "kioskID", "kiosk-1")
	rec := httptest.NewRecorder()

	handler.Deactivate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.KioskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Active {
		t.Fatalf("expected deactivated kiosk, got %+v", resp)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
