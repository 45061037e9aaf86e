package usecase

import (
	"context"
	"time"

	"github.com/iho/cashstock/internal/domain"
)

// KioskRepository defines data access for kiosks.
type KioskRepository interface {
	Create(ctx context.Context, kiosk *domain.Kiosk) error
	CreateTx(ctx context.Context, tx Transaction, kiosk *domain.Kiosk) error
	GetByID(ctx context.Context, id string) (*domain.Kiosk, error)
	GetByName(ctx context.Context, name string) (*domain.Kiosk, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Kiosk, error)
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
}

// StockRepository defines data access for per-denomination stock levels.
type StockRepository interface {
	// List returns the levels for one kiosk/currency pair, descending by
	// denomination, without locking. Used for advisory reads.
	List(ctx context.Context, kioskID, currency string) ([]*domain.StockLevel, error)
	// ListForUpdate locks the pair's rows for the duration of tx. Rows are
	// locked in a stable order to avoid lock-order deadlocks.
	ListForUpdate(ctx context.Context, tx Transaction, kioskID, currency string) ([]*domain.StockLevel, error)
	CreateTx(ctx context.Context, tx Transaction, level *domain.StockLevel) error
	UpdateCounts(ctx context.Context, tx Transaction, id string, total, reserved int64, updatedAt time.Time) error
}

// MovementRepository defines data access for movements and their lines.
type MovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.Movement) error
	GetByID(ctx context.Context, id string) (*domain.Movement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Movement, error)
	GetPendingByTransactionRef(ctx context.Context, ref string) (*domain.Movement, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.MovementStatus, reason string, processedAt time.Time) error
	List(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error)
	// SumPendingByDenomination aggregates line quantities of pending movements,
	// keyed by denomination. Runs inside tx so the consistency check sees the
	// same snapshot as the locked stock rows.
	SumPendingByDenomination(ctx context.Context, tx Transaction, kioskID, currency string) (map[int64]int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Retrier retries an operation on transient database failures such as
// deadlocks and serialization errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
