package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestCache(t *testing.T) *ProductCache {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb, err := NewRedisClient(ctx, addr, "", 15)
	if err != nil {
		t.Skipf("skipping Redis integration tests: %v", err)
	}
	t.Cleanup(func() {
		_ = rdb.FlushDB(context.Background()).Err()
		_ = rdb.Close()
	})
	return NewProductCache(rdb)
}

func TestProductCache(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	product := domain.Product{
		ID:             "prod-1",
		Name:           "Flash Widget",
		Price:          decimal.RequireFromString("19.99"),
		TotalStock:     100,
		AvailableStock: 42,
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("miss returns nil without error", func(t *testing.T) {
		got, err := cache.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil on miss, got %+v", got)
		}
	})

	t.Run("set then get preserves the decimal price", func(t *testing.T) {
		if err := cache.Set(ctx, product, time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}

		got, err := cache.Get(ctx, "prod-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got == nil {
			t.Fatalf("expected hit")
		}
		if !got.Price.Equal(decimal.RequireFromString("19.99")) {
			t.Fatalf("expected price 19.99, got %s", got.Price)
		}
		if got.AvailableStock != 42 {
			t.Fatalf("expected available 42, got %d", got.AvailableStock)
		}
	})

	t.Run("invalidate removes the entry", func(t *testing.T) {
		if err := cache.Set(ctx, product, time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := cache.Invalidate(ctx, "prod-1"); err != nil {
			t.Fatalf("invalidate: %v", err)
		}

		got, err := cache.Get(ctx, "prod-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != nil {
			t.Fatalf("expected miss after invalidation, got %+v", got)
		}
	})

	t.Run("entry expires with its TTL", func(t *testing.T) {
		if err := cache.Set(ctx, product, 50*time.Millisecond); err != nil {
			t.Fatalf("set: %v", err)
		}
		time.Sleep(100 * time.Millisecond)

		got, err := cache.Get(ctx, "prod-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != nil {
			t.Fatalf("expected miss after TTL, got %+v", got)
		}
	})
}

func TestProductSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	product := domain.Product{
		ID:             "prod-1",
		Name:           "Flash Widget",
		Price:          decimal.RequireFromString("0.05"),
		TotalStock:     3,
		AvailableStock: 1,
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	got, err := fromDomain(product).toDomain()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !got.Price.Equal(product.Price) {
		t.Fatalf("expected price %s, got %s", product.Price, got.Price)
	}
	if got.ID != product.ID || got.Name != product.Name || got.AvailableStock != product.AvailableStock {
		t.Fatalf("unexpected round trip: %+v", got)
	}
	if !got.CreatedAt.Equal(product.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", product.CreatedAt, got.CreatedAt)
	}
}
