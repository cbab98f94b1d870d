package domain

import "time"

type WebhookStatus string

const (
	WebhookStatusSuccess WebhookStatus = "success"
	WebhookStatusFailure WebhookStatus = "failure"
)

// PaymentWebhook is an append-mostly dedup record for an externally
// delivered payment outcome. OrderID is nil while the referenced order
// does not exist yet; Payload then retains the original order identifier
// under "order_id" so a retry pass can correlate later. Rows are never
// mutated except to attach the order and flip Processed.
type PaymentWebhook struct {
	ID             string
	IdempotencyKey string
	OrderID        *string
	Status         WebhookStatus
	Payload        map[string]any
	Processed      bool
	CreatedAt      time.Time
}

// PayloadOrderID extracts the retained order identifier, if any.
func (w PaymentWebhook) PayloadOrderID() (string, bool) {
	v, ok := w.Payload["order_id"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
