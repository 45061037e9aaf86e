package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/infrastructure/metrics"
)

// KioskUseCase handles kiosk provisioning.
type KioskUseCase struct {
	txManager  TransactionManager
	kioskRepo  KioskRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewKioskUseCase creates a new KioskUseCase.
func NewKioskUseCase(
	txManager TransactionManager,
	kioskRepo KioskRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *KioskUseCase {
	return &KioskUseCase{
		txManager:  txManager,
		kioskRepo:  kioskRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// CreateKioskInput represents input for provisioning a kiosk.
type CreateKioskInput struct {
	Name     string
	Location string
}

// CreateKiosk provisions a new kiosk. Stock rows appear later, on first
// deposit per denomination.
func (uc *KioskUseCase) CreateKiosk(ctx context.Context, input CreateKioskInput) (*domain.Kiosk, error) {
	if err := domain.ValidateKioskName(input.Name); err != nil {
		return nil, err
	}

	existing, err := uc.kioskRepo.GetByName(ctx, input.Name)
	if err != nil && !errors.Is(err, domain.ErrKioskNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrKioskExists
	}

	now := time.Now().UTC()

	kiosk := &domain.Kiosk{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Location:  input.Location,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.kioskRepo.CreateTx(txCtx, tx, kiosk); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   kiosk.ID,
		AggregateType: domain.AggregateTypeKiosk,
		EventType:     domain.EventTypeKioskCreated,
		Payload: map[string]any{
			"kiosk_id": kiosk.ID,
			"name":     kiosk.Name,
			"location": kiosk.Location,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.KiosksCreated.Inc()
	}

	return kiosk, nil
}

// GetKiosk retrieves a kiosk by ID.
func (uc *KioskUseCase) GetKiosk(ctx context.Context, id string) (*domain.Kiosk, error) {
	return uc.kioskRepo.GetByID(ctx, id)
}

// ListKiosksInput represents input for listing kiosks.
type ListKiosksInput struct {
	Limit  int
	Offset int
}

// ListKiosks lists kiosks with pagination.
func (uc *KioskUseCase) ListKiosks(ctx context.Context, input ListKiosksInput) ([]*domain.Kiosk, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.kioskRepo.List(ctx, input.Limit, input.Offset)
}

// DeactivateKiosk takes a kiosk out of service. Pending movements stay
// resolvable; new reservations and deposits are rejected.
func (uc *KioskUseCase) DeactivateKiosk(ctx context.Context, id string) (*domain.Kiosk, error) {
	kiosk, err := uc.kioskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !kiosk.Active {
		return kiosk, nil
	}

	now := time.Now().UTC()
	if err := uc.kioskRepo.SetActive(ctx, id, false, now); err != nil {
		return nil, err
	}

	kiosk.Active = false
	kiosk.UpdatedAt = now

	return kiosk, nil
}
