package app

import (
	"context"

	"github.com/ZeinaZayed4/flash-sale/internal/clock"
	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error)
	MarkHoldConsumed(ctx context.Context, holdID string) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// OrderService converts valid holds into orders and drives the order
// status machine. Stock changes exactly twice across a hold's lifecycle:
// once down at hold creation, at most once back up at release or
// cancellation. Converting a hold therefore never touches the counter.
type OrderService struct {
	repo   OrderRepository
	ledger *StockLedger
	clock  clock.Clock
	logger *zap.Logger
}

func NewOrderService(repo OrderRepository, ledger *StockLedger, clk clock.Clock, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		ledger: ledger,
		clock:  clk,
		logger: logger,
	}
}

// CreateFromHold consumes a valid hold into a pending order. The hold
// row lock serializes concurrent conversion attempts; the loser observes
// is_consumed and fails with ErrHoldAlreadyUsed.
func (s *OrderService) CreateFromHold(ctx context.Context, holdID string) (domain.Order, error) {
	now := s.clock.Now()
	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}
		if hold.IsConsumed {
			s.logger.Warn("attempted to use already consumed hold", zap.String("hold_id", holdID))
			return domain.ErrHoldAlreadyUsed
		}
		if !hold.ExpiresAt.After(now) {
			s.logger.Warn("attempted to use expired hold",
				zap.String("hold_id", holdID),
				zap.Time("expires_at", hold.ExpiresAt),
			)
			return domain.ErrHoldExpired
		}

		product, err := s.repo.GetProduct(txCtx, hold.ProductID)
		if err != nil {
			return err
		}

		order := domain.Order{
			ID:         newID(),
			HoldID:     holdID,
			ProductID:  hold.ProductID,
			Quantity:   hold.Quantity,
			TotalPrice: product.Price.Mul(decimal.NewFromInt(int64(hold.Quantity))),
			Status:     domain.OrderStatusPending,
			CreatedAt:  now,
		}

		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}
		if err := s.repo.MarkHoldConsumed(txCtx, holdID); err != nil {
			return err
		}

		s.logger.Info("order created",
			zap.String("order_id", order.ID),
			zap.String("hold_id", holdID),
			zap.String("product_id", order.ProductID),
			zap.Int("quantity", order.Quantity),
			zap.String("total_price", order.TotalPrice.String()),
		)
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

// MarkAsPaid finalizes a pending order. Idempotent: paid stays paid, and
// a cancelled order is terminal, so any non-pending order is a no-op.
// The reservation stays permanently consumed; stock is untouched.
func (s *OrderService) MarkAsPaid(ctx context.Context, orderID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if !order.CanBeUpdated() {
			s.logger.Info("order not pending, skipping mark-paid",
				zap.String("order_id", orderID),
				zap.String("status", string(order.Status)),
			)
			return nil
		}

		if err := s.repo.UpdateOrderStatus(txCtx, orderID, domain.OrderStatusPaid); err != nil {
			return err
		}
		s.logger.Info("order marked as paid",
			zap.String("order_id", orderID),
			zap.String("product_id", order.ProductID),
			zap.Int("quantity", order.Quantity),
		)
		return nil
	})
}

// Cancel reverses a pending order and credits its stock back. No-op for
// cancelled orders, and a paid order can never be cancelled through this
// path: payment success is final.
func (s *OrderService) Cancel(ctx context.Context, orderID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if !order.CanBeUpdated() {
			s.logger.Info("order not pending, skipping cancel",
				zap.String("order_id", orderID),
				zap.String("status", string(order.Status)),
			)
			return nil
		}

		if err := s.ledger.Release(txCtx, order.ProductID, order.Quantity); err != nil {
			return err
		}
		if err := s.repo.UpdateOrderStatus(txCtx, orderID, domain.OrderStatusCancelled); err != nil {
			return err
		}
		s.logger.Info("order cancelled and stock released",
			zap.String("order_id", orderID),
			zap.String("product_id", order.ProductID),
			zap.Int("quantity", order.Quantity),
		)
		return nil
	})
}
