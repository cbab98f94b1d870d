package domain

import "time"

// Hold reserves a quantity of a product's stock for a bounded window.
// A hold is terminal once consumed; consumption happens either when the
// hold converts into an order or when it is released (expiry or manual).
type Hold struct {
	ID         string
	ProductID  string
	Quantity   int
	ExpiresAt  time.Time
	IsConsumed bool
	CreatedAt  time.Time
}

// IsValid reports whether the hold can still be converted into an order.
func (h Hold) IsValid(now time.Time) bool {
	return !h.IsConsumed && h.ExpiresAt.After(now)
}
