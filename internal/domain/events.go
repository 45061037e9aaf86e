package domain

import "time"

// Event types
const (
	EventTypeMovementReserved  = "movement.reserved"
	EventTypeMovementConfirmed = "movement.confirmed"
	EventTypeMovementCancelled = "movement.cancelled"
	EventTypeStockDeposited    = "stock.deposited"
	EventTypeStockWithdrawn    = "stock.withdrawn"
	EventTypeKioskCreated      = "kiosk.created"
)

// Aggregate types
const (
	AggregateTypeMovement = "movement"
	AggregateTypeStock    = "stock"
	AggregateTypeKiosk    = "kiosk"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// MovementReservedEvent payload
type MovementReservedEvent struct {
	MovementID     string `json:"movement_id"`
	KioskID        string `json:"kiosk_id"`
	Currency       string `json:"currency"`
	Amount         string `json:"amount"`
	Pieces         int64  `json:"pieces"`
	Mode           string `json:"mode"`
	TransactionRef string `json:"transaction_ref,omitempty"`
}

// MovementConfirmedEvent payload
type MovementConfirmedEvent struct {
	MovementID string `json:"movement_id"`
	KioskID    string `json:"kiosk_id"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
}

// MovementCancelledEvent payload
type MovementCancelledEvent struct {
	MovementID string `json:"movement_id"`
	KioskID    string `json:"kiosk_id"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
	Reason     string `json:"reason"`
}

// StockDepositedEvent payload
type StockDepositedEvent struct {
	MovementID string `json:"movement_id"`
	KioskID    string `json:"kiosk_id"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
	Pieces     int64  `json:"pieces"`
}

// StockWithdrawnEvent payload
type StockWithdrawnEvent struct {
	MovementID string `json:"movement_id"`
	KioskID    string `json:"kiosk_id"`
	Currency   string `json:"currency"`
	Amount     string `json:"amount"`
	Pieces     int64  `json:"pieces"`
}

// KioskCreatedEvent payload
type KioskCreatedEvent struct {
	KioskID  string `json:"kiosk_id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}
