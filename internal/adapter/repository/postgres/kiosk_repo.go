package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/infrastructure/postgres/generated"
	"github.com/iho/cashstock/internal/usecase"
)

// KioskRepository implements usecase.KioskRepository.
type KioskRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewKioskRepository creates a new KioskRepository.
func NewKioskRepository(pool *pgxpool.Pool) *KioskRepository {
	return &KioskRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new kiosk.
func (r *KioskRepository) Create(ctx context.Context, kiosk *domain.Kiosk) error {
	_, err := r.queries.CreateKiosk(ctx, createKioskParams(kiosk))

	return err
}

// CreateTx creates a new kiosk within a transaction.
func (r *KioskRepository) CreateTx(ctx context.Context, tx usecase.Transaction, kiosk *domain.Kiosk) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateKiosk(ctx, createKioskParams(kiosk))

	return err
}

// GetByID retrieves a kiosk by ID.
func (r *KioskRepository) GetByID(ctx context.Context, id string) (*domain.Kiosk, error) {
	row, err := r.queries.GetKioskByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKioskNotFound
		}

		return nil, err
	}

	return rowToKiosk(row), nil
}

// GetByName retrieves a kiosk by its unique name.
func (r *KioskRepository) GetByName(ctx context.Context, name string) (*domain.Kiosk, error) {
	row, err := r.queries.GetKioskByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKioskNotFound
		}

		return nil, err
	}

	return rowToKiosk(row), nil
}

// List lists kiosks with pagination.
func (r *KioskRepository) List(ctx context.Context, limit, offset int) ([]*domain.Kiosk, error) {
	rows, err := r.queries.ListKiosks(ctx, generated.ListKiosksParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	kiosks := make([]*domain.Kiosk, 0, len(rows))
	for _, row := range rows {
		kiosks = append(kiosks, rowToKiosk(row))
	}

	return kiosks, nil
}

// SetActive flips a kiosk's active flag.
func (r *KioskRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	return r.queries.SetKioskActive(ctx, generated.SetKioskActiveParams{
		ID:        id,
		Active:    active,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

func createKioskParams(kiosk *domain.Kiosk) generated.CreateKioskParams {
	return generated.CreateKioskParams{
		ID:        kiosk.ID,
		Name:      kiosk.Name,
		Location:  kiosk.Location,
		Active:    kiosk.Active,
		CreatedAt: timeToPgTimestamptz(kiosk.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(kiosk.UpdatedAt),
	}
}

func rowToKiosk(row generated.Kiosk) *domain.Kiosk {
	return &domain.Kiosk{
		ID:        row.ID,
		Name:      row.Name,
		Location:  row.Location,
		Active:    row.Active,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

// Type conversion helpers.
func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}

	t := ts.Time

	return &t
}
