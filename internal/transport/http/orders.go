package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
)

// OrderCreator is the minimal interface needed to convert a hold.
type OrderCreator interface {
	CreateFromHold(ctx context.Context, holdID string) (domain.Order, error)
}

// HandleCreateOrder returns an HTTP handler that converts a valid hold
// into a pending order.
func HandleCreateOrder(svc OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		req, ok := decodeJSON[createOrderRequest](w, r)
		if !ok {
			return
		}
		if req.HoldID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "hold_id is required")
			return
		}

		order, err := svc.CreateFromHold(r.Context(), req.HoldID)
		if err != nil {
			switch err {
			case domain.ErrHoldNotFound:
				writeError(w, http.StatusNotFound, codeHoldNotFound, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case domain.ErrHoldAlreadyUsed:
				writeError(w, http.StatusConflict, codeHoldAlreadyUsed, err.Error())
			case domain.ErrHoldExpired:
				writeError(w, http.StatusConflict, codeHoldExpired, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, createOrderResponse{
			OrderID:    order.ID,
			HoldID:     order.HoldID,
			ProductID:  order.ProductID,
			Quantity:   order.Quantity,
			TotalPrice: order.TotalPrice.String(),
			Status:     string(order.Status),
			CreatedAt:  order.CreatedAt,
		})
	}
}

// decodeJSON decodes a request body with unknown fields rejected,
// writing the error response itself on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return req, false
	}
	return req, true
}

type createOrderRequest struct {
	HoldID string `json:"hold_id"`
}

type createOrderResponse struct {
	OrderID    string    `json:"order_id"`
	HoldID     string    `json:"hold_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice string    `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
