package app

import (
	"context"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/clock"
	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/ZeinaZayed4/flash-sale/internal/metrics"
	"go.uber.org/zap"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateHold(ctx context.Context, hold domain.Hold) error
	GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error)
	MarkHoldConsumed(ctx context.Context, holdID string) error
	FindExpiredHolds(ctx context.Context, now time.Time) ([]domain.Hold, error)
}

const defaultHoldTTL = 2 * time.Minute

// HoldService creates and releases time-bounded stock reservations. A
// stock decrement is never persisted without a hold row and vice versa:
// both land in one transaction.
type HoldService struct {
	repo    HoldRepository
	ledger  *StockLedger
	clock   clock.Clock
	logger  *zap.Logger
	holdTTL time.Duration
}

func NewHoldService(repo HoldRepository, ledger *StockLedger, clk clock.Clock, logger *zap.Logger, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:    repo,
		ledger:  ledger,
		clock:   clk,
		logger:  logger,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

type CreateHoldInput struct {
	ProductID string
	Quantity  int
}

// CreateHold reserves stock and records the hold atomically.
func (s *HoldService) CreateHold(ctx context.Context, in CreateHoldInput) (domain.Hold, error) {
	if in.Quantity <= 0 {
		return domain.Hold{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	hold := domain.Hold{
		ID:        newID(),
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		ExpiresAt: now.Add(s.holdTTL),
		CreatedAt: now,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.ledger.Reserve(txCtx, in.ProductID, in.Quantity); err != nil {
			return err
		}
		return s.repo.CreateHold(txCtx, hold)
	})
	if err != nil {
		return domain.Hold{}, err
	}

	metrics.HoldsCreated.Inc()
	s.logger.Info("hold created",
		zap.String("hold_id", hold.ID),
		zap.String("product_id", hold.ProductID),
		zap.Int("quantity", hold.Quantity),
		zap.Time("expires_at", hold.ExpiresAt),
	)
	return hold, nil
}

// ReleaseHold credits the hold's stock back and marks it consumed.
// Idempotent: a hold already consumed, whether by order creation or by a
// previous release, is left untouched. The hold row lock is taken before
// the product row lock; the second of two concurrent releasers observes
// is_consumed and short-circuits, so stock is credited exactly once.
func (s *HoldService) ReleaseHold(ctx context.Context, holdID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold.IsConsumed {
			s.logger.Info("hold already consumed, skipping release", zap.String("hold_id", holdID))
			return nil
		}

		if err := s.ledger.Release(txCtx, hold.ProductID, hold.Quantity); err != nil {
			return err
		}
		if err := s.repo.MarkHoldConsumed(txCtx, holdID); err != nil {
			return err
		}

		metrics.HoldsReleased.Inc()
		s.logger.Info("hold released",
			zap.String("hold_id", holdID),
			zap.String("product_id", hold.ProductID),
			zap.Int("quantity", hold.Quantity),
		)
		return nil
	})
}

// FindExpired returns unconsumed holds whose window has passed. Read
// only; releasing them is the reaper's job.
func (s *HoldService) FindExpired(ctx context.Context) ([]domain.Hold, error) {
	return s.repo.FindExpiredHolds(ctx, s.clock.Now())
}
