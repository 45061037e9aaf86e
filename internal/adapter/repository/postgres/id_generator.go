package postgres

import (
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator issues ULIDs for kiosks, movements and events. ULIDs sort
// lexicographically by creation time, which keeps movement listings in
// chronological order without a separate sequence column.
type ULIDGenerator struct{}

// NewULIDGenerator creates a ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}
