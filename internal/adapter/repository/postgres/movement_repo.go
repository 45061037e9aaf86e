package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashstock/internal/domain"
	"github.com/iho/cashstock/internal/infrastructure/postgres/generated"
	"github.com/iho/cashstock/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return &MovementRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts a movement header and its lines within a transaction.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateStockMovement(ctx, generated.CreateStockMovementParams{
		ID:             movement.ID,
		KioskID:        movement.KioskID,
		Currency:       movement.Currency,
		Direction:      string(movement.Direction),
		Status:         string(movement.Status),
		TransactionRef: movement.TransactionRef,
		Reason:         movement.Reason,
		CreatedAt:      timeToPgTimestamptz(movement.CreatedAt),
		ProcessedAt:    timePtrToPgTimestamptz(movement.ProcessedAt),
	})
	if err != nil {
		return err
	}

	for _, line := range movement.Lines {
		_, err := queries.CreateStockMovementLine(ctx, generated.CreateStockMovementLineParams{
			ID:           line.ID,
			MovementID:   movement.ID,
			Denomination: line.Denomination,
			Quantity:     line.Quantity,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a movement with its lines.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	row, err := r.queries.GetStockMovementByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}

		return nil, err
	}

	lines, err := r.queries.GetMovementLines(ctx, id)
	if err != nil {
		return nil, err
	}

	return rowToMovement(row, lines), nil
}

// GetByIDForUpdate retrieves a movement with a FOR UPDATE lock on the header.
// The lock serializes state transitions; lines are immutable once written.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Movement, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	row, err := queries.GetStockMovementByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}

		return nil, err
	}

	lines, err := queries.GetMovementLines(ctx, id)
	if err != nil {
		return nil, err
	}

	return rowToMovement(row, lines), nil
}

// GetPendingByTransactionRef retrieves the newest pending movement carrying
// the external transaction reference.
func (r *MovementRepository) GetPendingByTransactionRef(ctx context.Context, ref string) (*domain.Movement, error) {
	row, err := r.queries.GetPendingMovementByTransactionRef(ctx, ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoPendingMovement
		}

		return nil, err
	}

	lines, err := r.queries.GetMovementLines(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	return rowToMovement(row, lines), nil
}

// UpdateStatus writes a movement's terminal state.
func (r *MovementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.MovementStatus, reason string, processedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.UpdateStockMovementStatus(ctx, generated.UpdateStockMovementStatusParams{
		ID:          id,
		Status:      string(status),
		Reason:      reason,
		ProcessedAt: timeToPgTimestamptz(processedAt),
	})
}

// List retrieves movements matching the filter, newest first, lines included.
func (r *MovementRepository) List(ctx context.Context, filter domain.MovementFilter) ([]*domain.Movement, error) {
	rows, err := r.queries.ListStockMovements(ctx, generated.ListStockMovementsParams{
		KioskID:  filter.KioskID,
		Currency: filter.Currency,
		Status:   string(filter.Status),
		Limit:    int32(filter.Limit),
		Offset:   int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	lineRows, err := r.queries.GetMovementLinesByMovementIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	linesByMovement := make(map[string][]generated.StockMovementLine, len(rows))
	for _, line := range lineRows {
		linesByMovement[line.MovementID] = append(linesByMovement[line.MovementID], line)
	}

	movements := make([]*domain.Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, rowToMovement(row, linesByMovement[row.ID]))
	}

	return movements, nil
}

// SumPendingByDenomination aggregates pending line quantities per denomination
// for one kiosk/currency pair, inside the caller's transaction.
func (r *MovementRepository) SumPendingByDenomination(ctx context.Context, tx usecase.Transaction, kioskID, currency string) (map[int64]int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	rows, err := queries.SumPendingLineQuantities(ctx, generated.SumPendingLineQuantitiesParams{
		KioskID:  kioskID,
		Currency: currency,
	})
	if err != nil {
		return nil, err
	}

	sums := make(map[int64]int64, len(rows))
	for _, row := range rows {
		sums[row.Denomination] = row.Quantity
	}

	return sums, nil
}

func rowToMovement(row generated.StockMovement, lineRows []generated.StockMovementLine) *domain.Movement {
	lines := make([]domain.MovementLine, 0, len(lineRows))
	for _, line := range lineRows {
		lines = append(lines, domain.MovementLine{
			ID:           line.ID,
			MovementID:   line.MovementID,
			Denomination: line.Denomination,
			Quantity:     line.Quantity,
		})
	}

	return &domain.Movement{
		ID:             row.ID,
		KioskID:        row.KioskID,
		Currency:       row.Currency,
		Direction:      domain.MovementDirection(row.Direction),
		Status:         domain.MovementStatus(row.Status),
		TransactionRef: row.TransactionRef,
		Reason:         row.Reason,
		Lines:          lines,
		CreatedAt:      row.CreatedAt.Time,
		ProcessedAt:    pgTimestamptzToTimePtr(row.ProcessedAt),
	}
}
