
package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createStockLevel = `-- name: CreateStockLevel :one
INSERT INTO stock_levels (id, kiosk_id, currency, denomination, total, reserved, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, kiosk_id, currency, denomination, total, reserved, created_at, updated_at
`

type CreateStockLevelParams struct {
	ID           string             `json:"id"`
	KioskID      string             `json:"kiosk_id"`
	Currency     string             `json:"currency"`
	Denomination int64              `json:"denomination"`
	Total        int64              `json:"total"`
	Reserved     int64              `json:"reserved"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateStockLevel(ctx context.Context, arg CreateStockLevelParams) (StockLevel, error) {
	row := q.db.QueryRow(ctx, createStockLevel,
		arg.ID,
		arg.KioskID,
		arg.Currency,
		arg.Denomination,
		arg.Total,
		arg.Reserved,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i StockLevel
	err := row.Scan(
		&i.ID,
		&i.KioskID,
		&i.Currency,
		&i.Denomination,
		&i.Total,
		&i.Reserved,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listStockLevels = `-- name: ListStockLevels :many
SELECT id, kiosk_id, currency, denomination, total, reserved, created_at, updated_at FROM stock_levels
WHERE kiosk_id = $1 AND currency = $2
ORDER BY denomination DESC
`

type ListStockLevelsParams struct {
	KioskID  string `json:"kiosk_id"`
	Currency string `json:"currency"`
}

func (q *Queries) ListStockLevels(ctx context.Context, arg ListStockLevelsParams) ([]StockLevel, error) {
	rows, err := q.db.Query(ctx, listStockLevels, arg.KioskID, arg.Currency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockLevel{}
	for rows.Next() {
		var i StockLevel
		if err := rows.Scan(
			&i.ID,
			&i.KioskID,
			&i.Currency,
			&i.Denomination,
			&i.Total,
			&i.Reserved,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listStockLevelsForUpdate = `-- name: ListStockLevelsForUpdate :many
SELECT id, kiosk_id, currency, denomination, total, reserved, created_at, updated_at FROM stock_levels
WHERE kiosk_id = $1 AND currency = $2
ORDER BY denomination DESC
FOR UPDATE
`

type ListStockLevelsForUpdateParams struct {
	KioskID  string `json:"kiosk_id"`
	Currency string `json:"currency"`
}

func (q *Queries) ListStockLevelsForUpdate(ctx context.Context, arg ListStockLevelsForUpdateParams) ([]StockLevel, error) {
	rows, err := q.db.Query(ctx, listStockLevelsForUpdate, arg.KioskID, arg.Currency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []StockLevel{}
	for rows.Next() {
		var i StockLevel
		if err := rows.Scan(
			&i.ID,
			&i.KioskID,
			&i.Currency,
			&i.Denomination,
			&i.Total,
			&i.Reserved,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateStockLevelCounts = `-- name: UpdateStockLevelCounts :exec
UPDATE stock_levels
SET total = $2, reserved = $3, updated_at = $4
WHERE id = $1
`

type UpdateStockLevelCountsParams struct {
	ID        string             `json:"id"`
	Total     int64              `json:"total"`
	Reserved  int64              `json:"reserved"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateStockLevelCounts(ctx context.Context, arg UpdateStockLevelCountsParams) error {
	_, err := q.db.Exec(ctx, updateStockLevelCounts, arg.ID, arg.Total, arg.Reserved, arg.UpdatedAt)
	return err
}
