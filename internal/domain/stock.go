package domain

import "time"

// StockLevel is the authoritative piece count for one denomination at one
// kiosk. Reserved pieces are committed to pending movements; free pieces
// are available for new reservations. Invariant: 0 <= Reserved <= Total.
type StockLevel struct {
	ID           string
	KioskID      string
	Currency     string
	Denomination int64
	Total        int64
	Reserved     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Free returns pieces available for new reservations.
func (s *StockLevel) Free() int64 {
	return s.Total - s.Reserved
}

// Value returns the monetary value of total stock in minor units.
func (s *StockLevel) Value() int64 {
	return s.Total * s.Denomination
}

// FreeValue returns the monetary value of free stock in minor units.
func (s *StockLevel) FreeValue() int64 {
	return s.Free() * s.Denomination
}

// Validate checks the counter invariant.
func (s *StockLevel) Validate() error {
	if s.Denomination <= 0 {
		return ErrInvalidDenomination
	}
	if s.Total < 0 || s.Reserved < 0 || s.Reserved > s.Total {
		return ErrInconsistentState
	}
	return nil
}

// Reserve commits qty free pieces to a pending movement.
func (s *StockLevel) Reserve(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if s.Free() < qty {
		return ErrInsufficientStock
	}
	s.Reserved += qty
	return nil
}

// Release returns qty reserved pieces to free stock.
func (s *StockLevel) Release(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if s.Reserved < qty {
		return ErrInconsistentState
	}
	s.Reserved -= qty
	return nil
}

// Settle removes qty reserved pieces from the kiosk entirely.
func (s *StockLevel) Settle(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if s.Reserved < qty || s.Total < qty {
		return ErrInconsistentState
	}
	s.Total -= qty
	s.Reserved -= qty
	return nil
}

// Deposit adds qty pieces to total stock.
func (s *StockLevel) Deposit(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	s.Total += qty
	return nil
}

// Withdraw removes qty free pieces without a pending phase.
func (s *StockLevel) Withdraw(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if s.Free() < qty {
		return ErrInsufficientStock
	}
	s.Total -= qty
	return nil
}
