package http

import (
	"context"
	"net/http"

	"github.com/ZeinaZayed4/flash-sale/internal/app"
	"github.com/ZeinaZayed4/flash-sale/internal/domain"
)

// WebhookProcessor is the minimal interface needed to apply a payment
// notification.
type WebhookProcessor interface {
	Process(ctx context.Context, in app.ProcessWebhookInput) (app.ProcessWebhookResult, error)
}

// HandlePaymentWebhook returns an HTTP handler for the payment gateway
// callback. Replays and early deliveries are successful outcomes, not
// errors: the gateway must never be told to stop retrying because of a
// state it cannot see.
func HandlePaymentWebhook(svc WebhookProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		req, ok := decodeJSON[paymentWebhookRequest](w, r)
		if !ok {
			return
		}
		if req.IdempotencyKey == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "idempotency_key is required")
			return
		}
		if req.OrderID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "order_id is required")
			return
		}
		status := domain.WebhookStatus(req.Status)
		if status != domain.WebhookStatusSuccess && status != domain.WebhookStatusFailure {
			writeError(w, http.StatusBadRequest, codeInvalidStatus, "status must be success or failure")
			return
		}

		result, err := svc.Process(r.Context(), app.ProcessWebhookInput{
			IdempotencyKey: req.IdempotencyKey,
			OrderID:        req.OrderID,
			Status:         status,
			Payload:        req.Payload,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		httpStatus := http.StatusOK
		if result.Outcome == app.OutcomeOrderNotFound {
			httpStatus = http.StatusAccepted
		}
		writeJSON(w, httpStatus, paymentWebhookResponse{
			Status:        result.Outcome,
			WebhookID:     result.WebhookID,
			OrderID:       result.OrderID,
			PaymentStatus: string(result.PaymentStatus),
		})
	}
}

type paymentWebhookRequest struct {
	IdempotencyKey string         `json:"idempotency_key"`
	OrderID        string         `json:"order_id"`
	Status         string         `json:"status"`
	Payload        map[string]any `json:"payload"`
}

type paymentWebhookResponse struct {
	Status        string `json:"status"`
	WebhookID     string `json:"webhook_id"`
	OrderID       string `json:"order_id,omitempty"`
	PaymentStatus string `json:"payment_status"`
}
