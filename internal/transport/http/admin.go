package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/ZeinaZayed4/flash-sale/internal/app"
	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/shopspring/decimal"
)

const adminTokenHeader = "X-Admin-Token"

// AdminProductService is the minimal interface for the admin surface.
type AdminProductService interface {
	CreateProduct(ctx context.Context, in app.CreateProductInput) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// HandleAdminProducts returns an HTTP handler for creating and listing
// products. Requests must carry the configured admin token.
func HandleAdminProducts(svc AdminProductService, adminToken string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if adminToken == "" || subtle.ConstantTimeCompare([]byte(r.Header.Get(adminTokenHeader)), []byte(adminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, codeForbidden, "invalid admin token")
			return
		}

		switch r.Method {
		case http.MethodGet:
			products, err := svc.ListProducts(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]productResponse, 0, len(products))
			for _, p := range products {
				resp = append(resp, productResponse{
					ID:             p.ID,
					Name:           p.Name,
					Price:          p.Price.String(),
					TotalStock:     p.TotalStock,
					AvailableStock: p.AvailableStock,
					CreatedAt:      p.CreatedAt,
				})
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			req, ok := decodeJSON[createProductRequest](w, r)
			if !ok {
				return
			}
			if req.Name == "" {
				writeError(w, http.StatusBadRequest, codeProductNameRequired, "name is required")
				return
			}
			price, err := decimal.NewFromString(req.Price)
			if err != nil || price.IsNegative() {
				writeError(w, http.StatusBadRequest, codeInvalidPrice, "price must be a non-negative decimal string")
				return
			}
			if req.TotalStock < 0 {
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, "total_stock must be non-negative")
				return
			}

			product, err := svc.CreateProduct(r.Context(), app.CreateProductInput{
				Name:       req.Name,
				Price:      price,
				TotalStock: req.TotalStock,
			})
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			writeJSON(w, http.StatusCreated, productResponse{
				ID:             product.ID,
				Name:           product.Name,
				Price:          product.Price.String(),
				TotalStock:     product.TotalStock,
				AvailableStock: product.AvailableStock,
				CreatedAt:      product.CreatedAt,
			})
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type createProductRequest struct {
	Name       string `json:"name"`
	Price      string `json:"price"`
	TotalStock int    `json:"total_stock"`
}
