
package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createStockMovement = `-- name: CreateStockMovement :one
INSERT INTO stock_movements (id, kiosk_id, currency, direction, status, transaction_ref, reason, created_at, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, kiosk_id, currency, direction, status, transaction_ref, reason, created_at, processed_at
`

type CreateStockMovementParams struct {
	ID             string             `json:"id"`
	KioskID        string             `json:"kiosk_id"`
	Currency       string             `json:"currency"`
	Direction      string             `json:"direction"`
	Status         string             `json:"status"`
	TransactionRef string             `json:"transaction_ref"`
	Reason         string             `json:"reason"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	ProcessedAt    pgtype.Timestamptz `json:"processed_at"`
}

func (q *Queries) CreateStockMovement(ctx context.Context, arg CreateStockMovementParams) (StockMovement, error) {
	row := q.db.QueryRow(ctx, createStockMovement,
		arg.ID,
		arg.KioskID,
		arg.Currency,
		arg.Direction,
		arg.Status,
		arg.TransactionRef,
		arg.Reason,
		arg.CreatedAt,
		arg.ProcessedAt,
	)
	var i StockMovement
	err := row.Scan(
		&i.ID,
		&i.KioskID,
		&i.Currency,
		&i.Direction,
		&i.Status,
		&i.TransactionRef,
		&i.Reason,
		&i.CreatedAt,
		&i.ProcessedAt,
	)
	return i, err
}

const createStockMovementLine = `-- name: CreateStockMovementLine :one
INSERT INTO stock_movement_lines (id, movement_id, denomination, quantity)
VALUES ($1, $2, $3, $4)
RETURNING id, movement_id, denomination, quantity
`

type CreateStockMovementLineParams struct {
	ID           string `json:"id"`
	MovementID   string `json:"movement_id"`
	Denomination int64  `json:"denomination"`
	Quantity     int64  `json:"quantity"`
}

func (q *Queries) CreateStockMovementLine(ctx context.Context, arg CreateStockMovementLineParams) (StockMovementLine, error) {
	row := q.db.QueryRow(ctx, createStockMovementLine,
		arg.ID,
		arg.MovementID,
		arg.Denomination,
		arg.Quantity,
	)
	var i StockMovementLine
	err := row.Scan(
		&i.ID,
		&i.MovementID,
		&i.Denomination,
		&i.Quantity,
	)
	return i, err
}

const getMovementLines = `-- name: GetMovementLines :many
SELECT id, movement_id, denomination, quantity FROM stock_movement_lines
WHERE movement_id = $1
ORDER BY denomination DESC
`

func (q *Queries) GetMovementLines(ctx context.Context, movementID string) ([]StockMovementLine, error) {
	rows, err := q.db.Query(ctx, getMovementLines, movementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockMovementLine{}
	for rows.Next() {
		var i StockMovementLine
		if err := rows.Scan(
			&i.ID,
			&i.MovementID,
			&i.Denomination,
			&i.Quantity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getMovementLinesByMovementIDs = `-- name: GetMovementLinesByMovementIDs :many
SELECT id, movement_id, denomination, quantity FROM stock_movement_lines
WHERE movement_id = ANY($1::text[])
ORDER BY movement_id, denomination DESC
`

func (q *Queries) GetMovementLinesByMovementIDs(ctx context.Context, dollar_1 []string) ([]StockMovementLine, error) {
	rows, err := q.db.Query(ctx, getMovementLinesByMovementIDs, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockMovementLine{}
	for rows.Next() {
		var i StockMovementLine
		if err := rows.Scan(
			&i.ID,
			&i.MovementID,
			&i.Denomination,
			&i.Quantity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPendingMovementByTransactionRef = `-- name: GetPendingMovementByTransactionRef :one
SELECT id, kiosk_id, currency, direction, status, transaction_ref, reason, created_at, processed_at FROM stock_movements
WHERE transaction_ref = $1 AND status = 'pending'
ORDER BY created_at DESC
LIMIT 1
`

func (q *Queries) GetPendingMovementByTransactionRef(ctx context.Context, transactionRef string) (StockMovement, error) {
	row := q.db.QueryRow(ctx, getPendingMovementByTransactionRef, transactionRef)
	var i StockMovement
	err := row.Scan(
		&i.ID,
		&i.KioskID,
		&i.Currency,
		&i.Direction,
		&i.Status,
		&i.TransactionRef,
		&i.Reason,
		&i.CreatedAt,
		&i.ProcessedAt,
	)
	return i, err
}

const getStockMovementByID = `-- name: GetStockMovementByID :one
SELECT id, kiosk_id, currency, direction, status, transaction_ref, reason, created_at, processed_at FROM stock_movements WHERE id = $1
`

func (q *Queries) GetStockMovementByID(ctx context.Context, id string) (StockMovement, error) {
	row := q.db.QueryRow(ctx, getStockMovementByID, id)
	var i StockMovement
	err := row.Scan(
		&i.ID,
		&i.KioskID,
		&i.Currency,
		&i.Direction,
		&i.Status,
		&i.TransactionRef,
		&i.Reason,
		&i.CreatedAt,
		&i.ProcessedAt,
	)
	return i, err
}

const getStockMovementByIDForUpdate = `-- name: GetStockMovementByIDForUpdate :one
SELECT id, kiosk_id, currency, direction, status, transaction_ref, reason, created_at, processed_at FROM stock_movements WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetStockMovementByIDForUpdate(ctx context.Context, id string) (StockMovement, error) {
	row := q.db.QueryRow(ctx, getStockMovementByIDForUpdate, id)
	var i StockMovement
	err := row.Scan(
		&i.ID,
		&i.KioskID,
		&i.Currency,
		&i.Direction,
		&i.Status,
		&i.TransactionRef,
		&i.Reason,
		&i.CreatedAt,
		&i.ProcessedAt,
	)
	return i, err
}

const listStockMovements = `-- name: ListStockMovements :many
SELECT id, kiosk_id, currency, direction, status, transaction_ref, reason, created_at, processed_at FROM stock_movements
WHERE ($1::text = '' OR kiosk_id = $1)
  AND ($2::text = '' OR currency = $2)
  AND ($3::text = '' OR status = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5
`

type ListStockMovementsParams struct {
	KioskID  string `json:"kiosk_id"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

func (q *Queries) ListStockMovements(ctx context.Context, arg ListStockMovementsParams) ([]StockMovement, error) {
	rows, err := q.db.Query(ctx, listStockMovements,
		arg.KioskID,
		arg.Currency,
		arg.Status,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockMovement{}
	for rows.Next() {
		var i StockMovement
		if err := rows.Scan(
			&i.ID,
			&i.KioskID,
			&i.Currency,
			&i.Direction,
			&i.Status,
			&i.TransactionRef,
			&i.Reason,
			&i.CreatedAt,
			&i.ProcessedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumPendingLineQuantities = `-- name: SumPendingLineQuantities :many
SELECT l.denomination, COALESCE(SUM(l.quantity), 0)::BIGINT AS quantity
FROM stock_movement_lines l
JOIN stock_movements m ON m.id = l.movement_id
WHERE m.kiosk_id = $1 AND m.currency = $2 AND m.status = 'pending'
GROUP BY l.denomination
`

type SumPendingLineQuantitiesParams struct {
	KioskID  string `json:"kiosk_id"`
	Currency string `json:"currency"`
}

type SumPendingLineQuantitiesRow struct {
	Denomination int64 `json:"denomination"`
	Quantity     int64 `json:"quantity"`
}

func (q *Queries) SumPendingLineQuantities(ctx context.Context, arg SumPendingLineQuantitiesParams) ([]SumPendingLineQuantitiesRow, error) {
	rows, err := q.db.Query(ctx, sumPendingLineQuantities, arg.KioskID, arg.Currency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SumPendingLineQuantitiesRow{}
	for rows.Next() {
		var i SumPendingLineQuantitiesRow
		if err := rows.Scan(&i.Denomination, &i.Quantity); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateStockMovementStatus = `-- name: UpdateStockMovementStatus :exec
UPDATE stock_movements
SET status = $2, reason = $3, processed_at = $4
WHERE id = $1
`

type UpdateStockMovementStatusParams struct {
	ID          string             `json:"id"`
	Status      string             `json:"status"`
	Reason      string             `json:"reason"`
	ProcessedAt pgtype.Timestamptz `json:"processed_at"`
}

func (q *Queries) UpdateStockMovementStatus(ctx context.Context, arg UpdateStockMovementStatusParams) error {
	_, err := q.db.Exec(ctx, updateStockMovementStatus,
		arg.ID,
		arg.Status,
		arg.Reason,
		arg.ProcessedAt,
	)
	return err
}
