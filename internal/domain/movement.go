package domain

import (
	"errors"
	"time"
)

var (
	ErrMovementNotFound       = errors.New("movement not found")
	ErrInvalidStateTransition = errors.New("movement is not pending")
	ErrNoPendingMovement      = errors.New("no pending movement for transaction")
)

type MovementDirection string

const (
	DirectionOutbound MovementDirection = "outbound"
	DirectionInbound  MovementDirection = "inbound"
)

type MovementStatus string

const (
	MovementStatusPending   MovementStatus = "pending"
	MovementStatusConfirmed MovementStatus = "confirmed"
	MovementStatusCancelled MovementStatus = "cancelled"
)

// ReserveMode selects whether a reservation settles instantly or waits for
// an external payment outcome.
type ReserveMode string

const (
	ReserveModeImmediate ReserveMode = "immediate"
	ReserveModeDeferred  ReserveMode = "deferred"
)

// PaymentOutcome is the payment collaborator's verdict for a transaction.
type PaymentOutcome string

const (
	PaymentSucceeded PaymentOutcome = "succeeded"
	PaymentFailed    PaymentOutcome = "failed"
)

// MovementLine is one denomination's share of a movement.
type MovementLine struct {
	ID           string
	MovementID   string
	Denomination int64
	Quantity     int64
}

// Value returns the line's monetary value in minor units.
func (l MovementLine) Value() int64 {
	return l.Denomination * l.Quantity
}

// Movement is one stock-change lifecycle instance: a header plus one line
// per denomination. Created once; transitions out of pending exactly once;
// immutable after reaching a terminal state.
type Movement struct {
	ID             string
	KioskID        string
	Currency       string
	Direction      MovementDirection
	Status         MovementStatus
	TransactionRef string
	Reason         string
	Lines          []MovementLine
	CreatedAt      time.Time
	ProcessedAt    *time.Time
}

// Amount returns the movement's total value in minor units.
func (m *Movement) Amount() int64 {
	var sum int64
	for _, line := range m.Lines {
		sum += line.Value()
	}
	return sum
}

// Combination returns the movement's lines as a denomination map.
func (m *Movement) Combination() Combination {
	return CombinationFromLines(m.Lines)
}

// IsPending reports whether the movement can still transition.
func (m *Movement) IsPending() bool {
	return m.Status == MovementStatusPending
}

// MovementFilter defines filters for querying movements.
type MovementFilter struct {
	KioskID  string
	Currency string
	Status   MovementStatus
	Limit    int
	Offset   int
}

// Validate checks structural invariants: direction and status are known,
// at least one line, each line positive, one line per denomination.
func (m *Movement) Validate() error {
	switch m.Direction {
	case DirectionOutbound, DirectionInbound:
	default:
		return ErrInvalidDirection
	}
	switch m.Status {
	case MovementStatusPending, MovementStatusConfirmed, MovementStatusCancelled:
	default:
		return ErrInvalidStatus
	}
	return ValidateLines(m.Lines)
}
