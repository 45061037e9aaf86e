package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/usecase"
)

// MockKioskRepository is a mock implementation of KioskRepository.
type MockKioskRepository struct {
	mu     sync.RWMutex
	kiosks map[string]*domain.Kiosk

	CreateFunc    func(ctx context.Context, kiosk *domain.Kiosk) error
	CreateTxFunc  func(ctx context.Context, tx usecase.Transaction, kiosk *domain.Kiosk) error
	GetByIDFunc   func(ctx context.Context, id string) (*domain.Kiosk, error)
	GetByNameFunc func(ctx context.Context, name string) (*domain.Kiosk, error)
	ListFunc      func(ctx context.Context, limit, offset int) ([]*domain.Kiosk, error)
	SetActiveFunc func(ctx context.Context, id string, active bool, updatedAt time.Time) error
}

func NewMockKioskRepository() *MockKioskRepository {
	return &MockKioskRepository{
		kiosks: make(map[string]*domain.Kiosk),
	}
}

func (m *MockKioskRepository) Create(ctx context.Context, kiosk *domain.Kiosk) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, kiosk)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kiosks[kiosk.ID] = kiosk
	return nil
}

func (m *MockKioskRepository) CreateTx(ctx context.Context, tx usecase.Transaction, kiosk *domain.Kiosk) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, kiosk)
	}
	return m.Create(ctx, kiosk)
}

func (m *MockKioskRepository) GetByID(ctx context.Context, id string) (*domain.Kiosk, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k, ok := m.kiosks[id]; ok {
		return k, nil
	}
	return nil, domain.ErrKioskNotFound
}

func (m *MockKioskRepository) GetByName(ctx context.Context, name string) (*domain.Kiosk, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range m.kiosks {
		if k.Name == name {
			return k, nil
		}
	}
	return nil, domain.ErrKioskNotFound
}

func (m *MockKioskRepository) List(ctx context.Context, limit, offset int) ([]*domain.Kiosk, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var kiosks []*domain.Kiosk
	for _, k := range m.kiosks {
		kiosks = append(kiosks, k)
	}
	sort.Slice(kiosks, func(i, j int) bool { return kiosks[i].ID < kiosks[j].ID })
	return kiosks, nil
}

func (m *MockKioskRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.kiosks[id]; ok {
		k.Active = active
		k.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrKioskNotFound
}

// MockStockRepository is a mock implementation of StockRepository.
type MockStockRepository struct {
	mu     sync.RWMutex
	levels map[string]*domain.StockLevel

	ListFunc          func(ctx context.Context, kioskID, currency string) ([]*domain.StockLevel, error)
	ListForUpdateFunc func(ctx context.Context, tx usecase.Transaction, kioskID, currency string) ([]*domain.StockLevel, error)
	CreateTxFunc      func(ctx context.Context, tx usecase.Transaction, level *domain.StockLevel) error
	UpdateCountsFunc  func(ctx context.Context, tx usecase.Transaction, id string, total, reserved int64, updatedAt time.Time) error
}

func NewMockStockRepository() *MockStockRepository {
	return &MockStockRepository{
		levels: make(map[string]*domain.StockLevel),
	}
}

// Seed installs a stock level directly, bypassing the repository contract.
func (m *MockStockRepository) Seed(level *domain.StockLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[level.ID] = level
}

// Level returns a seeded level by id for assertions.
func (m *MockStockRepository) Level(id string) *domain.StockLevel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.levels[id]
}

func (m *MockStockRepository) List(ctx context.Context, kioskID, currency string) ([]*domain.StockLevel, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, kioskID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var levels []*domain.StockLevel
	for _, level := range m.levels {
		if level.KioskID == kioskID && level.Currency == currency {
			levels = append(levels, level)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Denomination > levels[j].Denomination })
	return levels, nil
}

func (m *MockStockRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction, kioskID, currency string) ([]*domain.StockLevel, error) {
	if m.ListForUpdateFunc != nil {
		return m.ListForUpdateFunc(ctx, tx, kioskID, currency)
	}
	return m.List(ctx, kioskID, currency)
}

func (m *MockStockRepository) CreateTx(ctx context.Context, tx usecase.Transaction, level *domain.StockLevel) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, level)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[level.ID] = level
	return nil
}

func (m *MockStockRepository) UpdateCounts(ctx context.Context, tx usecase.Transaction, id string, total, reserved int64, updatedAt time.Time) error {
	if m.UpdateCountsFunc != nil {
		return m.UpdateCountsFunc(ctx, tx, id, total, reserved, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if level, ok := m.levels[id]; ok {
		level.Total = total
		level.Reserved = reserved
		level.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrStockNotFound
}

// MockMovementRepository is a mock implementation of MovementRepository.
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements map[string]*domain.Movement

	CreateFunc                     func(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error
	GetByIDFunc                    func(ctx context.Context, id string) (*domain.Movement, error)
	GetByIDForUpdateFunc           func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Movement, error)
	GetPendingByTransactionRefFunc func(ctx context.Context, ref string) (*domain.Movement, error)
	UpdateStatusFunc               func(ctx context.Context, tx usecase.Transaction, id string, status domain.MovementStatus, reason string, processedAt time.Time) error
	ListFunc                       func(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error)
	SumPendingByDenominationFunc   func(ctx context.Context, tx usecase.Transaction, kioskID, currency string) (map[int64]int64, error)
}

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{
		movements: make(map[string]*domain.Movement),
	}
}

// Seed installs a movement directly, bypassing the repository contract.
func (m *MockMovementRepository) Seed(movement *domain.Movement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements[movement.ID] = movement
}

func (m *MockMovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements[movement.ID] = movement
	return nil
}

func (m *MockMovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mv, ok := m.movements[id]; ok {
		return mv, nil
	}
	return nil, domain.ErrMovementNotFound
}

func (m *MockMovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Movement, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockMovementRepository) GetPendingByTransactionRef(ctx context.Context, ref string) (*domain.Movement, error) {
	if m.GetPendingByTransactionRefFunc != nil {
		return m.GetPendingByTransactionRefFunc(ctx, ref)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var newest *domain.Movement
	for _, mv := range m.movements {
		if mv.TransactionRef != ref || mv.Status != domain.MovementStatusPending {
			continue
		}
		if newest == nil || mv.CreatedAt.After(newest.CreatedAt) {
			newest = mv
		}
	}
	if newest == nil {
		return nil, domain.ErrNoPendingMovement
	}
	return newest, nil
}

func (m *MockMovementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.MovementStatus, reason string, processedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, reason, processedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.movements[id]
	if !ok {
		return domain.ErrMovementNotFound
	}
	mv.Status = status
	mv.Reason = reason
	mv.ProcessedAt = &processedAt
	return nil
}

func (m *MockMovementRepository) List(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var movements []*domain.Movement
	for _, mv := range m.movements {
		if filter.KioskID != "" && mv.KioskID != filter.KioskID {
			continue
		}
		if filter.Currency != "" && mv.Currency != filter.Currency {
			continue
		}
		if filter.Status != "" && mv.Status != filter.Status {
			continue
		}
		movements = append(movements, mv)
	}
	sort.Slice(movements, func(i, j int) bool { return movements[i].CreatedAt.After(movements[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(movements) {
			return nil, nil
		}
		movements = movements[filter.Offset:]
	}
	if filter.Limit > 0 && len(movements) > filter.Limit {
		movements = movements[:filter.Limit]
	}
	return movements, nil
}

func (m *MockMovementRepository) SumPendingByDenomination(ctx context.Context, tx usecase.Transaction, kioskID, currency string) (map[int64]int64, error) {
	if m.SumPendingByDenominationFunc != nil {
		return m.SumPendingByDenominationFunc(ctx, tx, kioskID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sums := make(map[int64]int64)
	for _, mv := range m.movements {
		if mv.KioskID != kioskID || mv.Currency != currency || mv.Status != domain.MovementStatusPending {
			continue
		}
		for _, line := range mv.Lines {
			sums[line.Denomination] += line.Quantity
		}
	}
	return sums, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregateFunc  func(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns all recorded events for assertions.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			events = append(events, e)
		}
		if limit > 0 && len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	if m.GetByAggregateFunc != nil {
		return m.GetByAggregateFunc(ctx, aggregateType, aggregateID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.OutboxEvent
	for _, e := range m.events {
		if e.Published && e.CreatedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}
