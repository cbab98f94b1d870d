package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a confirmed purchase derived from a hold. Status moves
// pending -> paid or pending -> cancelled; both end states are terminal.
// TotalPrice is computed once at creation and frozen.
type Order struct {
	ID         string
	HoldID     string
	ProductID  string
	Quantity   int
	TotalPrice decimal.Decimal
	Status     OrderStatus
	CreatedAt  time.Time
}

// CanBeUpdated reports whether the order is still pending.
func (o Order) CanBeUpdated() bool {
	return o.Status == OrderStatusPending
}
