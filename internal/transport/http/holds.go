package http

import (
	"context"
	"net/http"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/app"
	"github.com/ZeinaZayed4/flash-sale/internal/domain"
)

// HoldCreator is the minimal interface needed to create a hold.
type HoldCreator interface {
	CreateHold(ctx context.Context, in app.CreateHoldInput) (domain.Hold, error)
}

// HandleCreateHold returns an HTTP handler for creating holds.
func HandleCreateHold(svc HoldCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		req, ok := decodeJSON[createHoldRequest](w, r)
		if !ok {
			return
		}
		if req.ProductID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "product_id is required")
			return
		}
		if req.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidQuantity, domain.ErrInvalidQuantity.Error())
			return
		}

		hold, err := svc.CreateHold(r.Context(), app.CreateHoldInput{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			switch err {
			case domain.ErrInvalidQuantity:
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case domain.ErrProductNotFound:
				writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
			case domain.ErrInsufficientStock:
				writeError(w, http.StatusConflict, codeInsufficientStock, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, createHoldResponse{
			HoldID:    hold.ID,
			ProductID: hold.ProductID,
			Quantity:  hold.Quantity,
			ExpiresAt: hold.ExpiresAt,
		})
	}
}

type createHoldRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createHoldResponse struct {
	HoldID    string    `json:"hold_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expires_at"`
}
