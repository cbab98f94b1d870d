package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
)

// ProductFetcher is the minimal interface needed to show a product.
type ProductFetcher interface {
	Snapshot(ctx context.Context, productID string) (domain.Product, error)
}

// HandleGetProduct returns an HTTP handler for the cached product view.
func HandleGetProduct(svc ProductFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		productID, ok := parseProductPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		product, err := svc.Snapshot(r.Context(), productID)
		if err != nil {
			switch err {
			case domain.ErrProductNotFound:
				writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusOK, productResponse{
			ID:             product.ID,
			Name:           product.Name,
			Price:          product.Price.String(),
			TotalStock:     product.TotalStock,
			AvailableStock: product.AvailableStock,
			CreatedAt:      product.CreatedAt,
		})
	}
}

func parseProductPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "products" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type productResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Price          string    `json:"price"`
	TotalStock     int       `json:"total_stock"`
	AvailableStock int       `json:"available_stock"`
	CreatedAt      time.Time `json:"created_at"`
}
