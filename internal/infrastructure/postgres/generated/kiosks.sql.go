
package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countKiosks = `-- name: CountKiosks :one
SELECT COUNT(*) FROM kiosks
`

func (q *Queries) CountKiosks(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countKiosks)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createKiosk = `-- name: CreateKiosk :one
INSERT INTO kiosks (id, name, location, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, location, active, created_at, updated_at
`

type CreateKioskParams struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Location  string             `json:"location"`
	Active    bool               `json:"active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateKiosk(ctx context.Context, arg CreateKioskParams) (Kiosk, error) {
	row := q.db.QueryRow(ctx, createKiosk,
		arg.ID,
		arg.Name,
		arg.Location,
		arg.Active,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Kiosk
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Location,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getKioskByID = `-- name: GetKioskByID :one
SELECT id, name, location, active, created_at, updated_at FROM kiosks WHERE id = $1
`

func (q *Queries) GetKioskByID(ctx context.Context, id string) (Kiosk, error) {
	row := q.db.QueryRow(ctx, getKioskByID, id)
	var i Kiosk
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Location,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getKioskByName = `-- name: GetKioskByName :one
SELECT id, name, location, active, created_at, updated_at FROM kiosks WHERE name = $1
`

func (q *Queries) GetKioskByName(ctx context.Context, name string) (Kiosk, error) {
	row := q.db.QueryRow(ctx, getKioskByName, name)
	var i Kiosk
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Location,
		&i.Active,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listKiosks = `-- name: ListKiosks :many
SELECT id, name, location, active, created_at, updated_at FROM kiosks ORDER BY created_at DESC LIMIT $1 OFFSET $2
`

type ListKiosksParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListKiosks(ctx context.Context, arg ListKiosksParams) ([]Kiosk, error) {
	rows, err := q.db.Query(ctx, listKiosks, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Kiosk{}
	for rows.Next() {
		var i Kiosk
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Location,
			&i.Active,
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

const setKioskActive = `-- name: SetKioskActive :exec
UPDATE kiosks
SET active = $2, updated_at = $3
WHERE id = $1
`

type SetKioskActiveParams struct {
	ID        string             `json:"id"`
	Active    bool               `json:"active"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) SetKioskActive(ctx context.Context, arg SetKioskActiveParams) error {
	_, err := q.db.Exec(ctx, setKioskActive, arg.ID, arg.Active, arg.UpdatedAt)
	return err
}
