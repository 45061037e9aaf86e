package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/infrastructure/postgres/generated"
	"github.com/iho/cashstock/internal/usecase"
)

// StockRepository implements usecase.StockRepository.
type StockRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewStockRepository creates a new StockRepository.
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// List retrieves the stock levels for one kiosk/currency pair without locking.
func (r *StockRepository) List(ctx context.Context, kioskID, currency string) ([]*domain.StockLevel, error) {
	rows, err := r.queries.ListStockLevels(ctx, generated.ListStockLevelsParams{
		KioskID:  kioskID,
		Currency: currency,
	})
	if err != nil {
		return nil, err
	}

	levels := make([]*domain.StockLevel, 0, len(rows))
	for _, row := range rows {
		levels = append(levels, rowToStockLevel(row))
	}

	return levels, nil
}

// ListForUpdate retrieves the pair's stock levels with FOR UPDATE locks held
// until the transaction ends. Rows come back in a fixed order so concurrent
// transactions acquire them without deadlocking.
func (r *StockRepository) ListForUpdate(ctx context.Context, tx usecase.Transaction, kioskID, currency string) ([]*domain.StockLevel, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	rows, err := queries.ListStockLevelsForUpdate(ctx, generated.ListStockLevelsForUpdateParams{
		KioskID:  kioskID,
		Currency: currency,
	})
	if err != nil {
		return nil, err
	}

	levels := make([]*domain.StockLevel, 0, len(rows))
	for _, row := range rows {
		levels = append(levels, rowToStockLevel(row))
	}

	return levels, nil
}

// CreateTx creates a stock level row within a transaction.
func (r *StockRepository) CreateTx(ctx context.Context, tx usecase.Transaction, level *domain.StockLevel) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateStockLevel(ctx, generated.CreateStockLevelParams{
		ID:           level.ID,
		KioskID:      level.KioskID,
		Currency:     level.Currency,
		Denomination: level.Denomination,
		Total:        level.Total,
		Reserved:     level.Reserved,
		CreatedAt:    timeToPgTimestamptz(level.CreatedAt),
		UpdatedAt:    timeToPgTimestamptz(level.UpdatedAt),
	})

	return err
}

// UpdateCounts writes back a level's total and reserved counters.
func (r *StockRepository) UpdateCounts(ctx context.Context, tx usecase.Transaction, id string, total, reserved int64, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.UpdateStockLevelCounts(ctx, generated.UpdateStockLevelCountsParams{
		ID:        id,
		Total:     total,
		Reserved:  reserved,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

func rowToStockLevel(row generated.StockLevel) *domain.StockLevel {
	return &domain.StockLevel{
		ID:           row.ID,
		KioskID:      row.KioskID,
		Currency:     row.Currency,
		Denomination: row.Denomination,
		Total:        row.Total,
		Reserved:     row.Reserved,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}
