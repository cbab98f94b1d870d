package domain

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrHoldNotFound      = errors.New("hold not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock available")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrHoldAlreadyUsed   = errors.New("hold has already been used")
	ErrHoldExpired       = errors.New("hold has expired")
	ErrDuplicateWebhook  = errors.New("webhook idempotency key already exists")
	ErrInvalidID         = errors.New("invalid id")
)
