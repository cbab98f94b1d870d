package app

import (
	"context"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"go.uber.org/zap"
)

// StockRepository is the persistence surface the ledger needs. Reserve
// and Release must be called inside a transaction started with WithTx;
// the *ForUpdate read takes the product row lock that serializes every
// stock mutation.
type StockRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	UpdateAvailableStock(ctx context.Context, productID string, available int) error
}

// SnapshotCache caches product reads for display traffic. Get returns
// (nil, nil) on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Set(ctx context.Context, product domain.Product, ttl time.Duration) error
	Invalidate(ctx context.Context, productID string) error
}

const defaultSnapshotTTL = 5 * time.Second

// StockLedger owns every mutation of a product's available-stock counter.
// Reserve and Release always lock the product row and re-read fresh;
// Snapshot serves cached, possibly stale reads and never feeds a
// reservation decision.
type StockLedger struct {
	repo        StockRepository
	cache       SnapshotCache
	logger      *zap.Logger
	snapshotTTL time.Duration
}

func NewStockLedger(repo StockRepository, cache SnapshotCache, logger *zap.Logger, opts ...StockLedgerOption) *StockLedger {
	l := &StockLedger{
		repo:        repo,
		cache:       cache,
		logger:      logger,
		snapshotTTL: defaultSnapshotTTL,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type StockLedgerOption func(*StockLedger)

// WithSnapshotTTL overrides the staleness bound for cached reads.
func WithSnapshotTTL(d time.Duration) StockLedgerOption {
	return func(l *StockLedger) {
		if d > 0 {
			l.snapshotTTL = d
		}
	}
}

// Reserve debits quantity units from the product inside the caller's
// transaction. The row lock plus the fresh re-read make overselling
// impossible: no two reservations can both observe a stale counter.
func (l *StockLedger) Reserve(ctx context.Context, productID string, quantity int) error {
	product, err := l.repo.GetProductForUpdate(ctx, productID)
	if err != nil {
		return err
	}

	if product.AvailableStock < quantity {
		l.logger.Warn("insufficient stock",
			zap.String("product_id", productID),
			zap.Int("requested", quantity),
			zap.Int("available", product.AvailableStock),
		)
		return domain.ErrInsufficientStock
	}

	remaining := product.AvailableStock - quantity
	if err := l.repo.UpdateAvailableStock(ctx, productID, remaining); err != nil {
		return err
	}
	l.invalidate(ctx, productID)

	l.logger.Info("stock reserved",
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
		zap.Int("remaining", remaining),
	)
	return nil
}

// Release credits quantity units back. No upper bound is enforced here;
// callers guarantee the quantity was previously reserved.
func (l *StockLedger) Release(ctx context.Context, productID string, quantity int) error {
	product, err := l.repo.GetProductForUpdate(ctx, productID)
	if err != nil {
		return err
	}

	available := product.AvailableStock + quantity
	if err := l.repo.UpdateAvailableStock(ctx, productID, available); err != nil {
		return err
	}
	l.invalidate(ctx, productID)

	l.logger.Info("stock released",
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
		zap.Int("available", available),
	)
	return nil
}

// Snapshot returns the product for display traffic, served from cache
// within the staleness bound. Cache failures fall through to the store.
func (l *StockLedger) Snapshot(ctx context.Context, productID string) (domain.Product, error) {
	if cached, err := l.cache.Get(ctx, productID); err != nil {
		l.logger.Warn("snapshot cache read failed", zap.String("product_id", productID), zap.Error(err))
	} else if cached != nil {
		return *cached, nil
	}

	product, err := l.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	if err := l.cache.Set(ctx, product, l.snapshotTTL); err != nil {
		l.logger.Warn("snapshot cache write failed", zap.String("product_id", productID), zap.Error(err))
	}
	return product, nil
}

// invalidate drops the cached snapshot after a stock mutation. A failed
// invalidation is logged, not fatal: the TTL still bounds staleness and
// the write path never reads the cache.
func (l *StockLedger) invalidate(ctx context.Context, productID string) {
	if err := l.cache.Invalidate(ctx, productID); err != nil {
		l.logger.Warn("snapshot cache invalidation failed", zap.String("product_id", productID), zap.Error(err))
	}
}
