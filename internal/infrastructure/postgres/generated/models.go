
package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Kiosk struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Location  string             `json:"location"`
	Active    bool               `json:"active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type StockLevel struct {
	ID           string             `json:"id"`
	KioskID      string             `json:"kiosk_id"`
	Currency     string             `json:"currency"`
	Denomination int64              `json:"denomination"`
	Total        int64              `json:"total"`
	Reserved     int64              `json:"reserved"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type StockMovementLine struct {
	ID           string `json:"id"`
	MovementID   string `json:"movement_id"`
	Denomination int64  `json:"denomination"`
	Quantity     int64  `json:"quantity"`
}

type StockMovement struct {
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
