package domain

import "time"

// Kiosk is an unattended terminal holding physical cash stock.
type Kiosk struct {
	ID        string
	Name      string
	Location  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if kiosk is valid.
func (k *Kiosk) Validate() error {
	return ValidateKioskName(k.Name)
}
