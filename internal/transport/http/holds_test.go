package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/app"
	"github.com/ZeinaZayed4/flash-sale/internal/domain"
)

func TestHandleCreateHold(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	successHold := domain.Hold{
		ID:        "hold-123",
		ProductID: "prod-1",
		Quantity:  2,
		ExpiresAt: now.Add(2 * time.Minute),
	}

	tests := []struct {
		name           string
		method         string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"product_id":"prod-1","quantity":2}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"hold_id":"hold-123"`,
		},
		{
			name:           "invalid json",
			body:           `{"product_id":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing product id",
			body:           `{"quantity":2}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid quantity",
			body:           `{"product_id":"prod-1","quantity":0}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "product not found",
			body:           `{"product_id":"prod-1","quantity":1}`,
			serviceErr:     domain.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid id",
			body:           `{"product_id":"not-a-uuid","quantity":1}`,
			serviceErr:     domain.ErrInvalidID,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "insufficient stock",
			body:           `{"product_id":"prod-1","quantity":1}`,
			serviceErr:     domain.ErrInsufficientStock,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"insufficient_stock"`,
		},
		{
			name:           "internal error",
			body:           `{"product_id":"prod-1","quantity":1}`,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubHoldService{
				hold: successHold,
				err:  tt.serviceErr,
			}
			method := tt.method
			if method == "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, "/holds", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler := HandleCreateHold(svc)
			handler.ServeHTTP(rec, req)

			res := rec.Result()
			if res.StatusCode != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, res.StatusCode)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
		})
	}
}

type stubHoldService struct {
	hold domain.Hold
	err  error
}

func (s *stubHoldService) CreateHold(_ context.Context, _ app.CreateHoldInput) (domain.Hold, error) {
	if s.err != nil {
		return domain.Hold{}, s.err
	}
	return s.hold, nil
}
