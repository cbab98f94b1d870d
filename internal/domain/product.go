package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the root of truth for stock. AvailableStock is only ever
// mutated under a row lock; 0 <= AvailableStock <= TotalStock holds at
// all times.
type Product struct {
	ID             string
	Name           string
	Price          decimal.Decimal
	TotalStock     int
	AvailableStock int
	CreatedAt      time.Time
}

// CanReserve reports whether quantity units are currently available.
// Reservation decisions must re-check under the row lock; this is a
// display-path convenience only.
func (p Product) CanReserve(quantity int) bool {
	return p.AvailableStock >= quantity
}
