package app

import (
	"context"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/ZeinaZayed4/flash-sale/internal/metrics"
	"go.uber.org/zap"
)

type WebhookRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FindWebhookByKey(ctx context.Context, idempotencyKey string) (*domain.PaymentWebhook, error)
	CreateWebhook(ctx context.Context, webhook domain.PaymentWebhook) error
	BindWebhookOrder(ctx context.Context, webhookID, orderID string) error
	MarkWebhookProcessed(ctx context.Context, webhookID string) error
	FindUnresolvedWebhooks(ctx context.Context) ([]domain.PaymentWebhook, error)
	// GetOrder returns (nil, nil) when the order does not exist, including
	// when the id is not a well-formed uuid: a webhook may legitimately
	// reference an order this system has not created yet.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// OrderFinalizer applies a payment outcome to an order.
type OrderFinalizer interface {
	MarkAsPaid(ctx context.Context, orderID string) error
	Cancel(ctx context.Context, orderID string) error
}

// Process outcomes.
const (
	OutcomeProcessed        = "processed"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeOrderNotFound    = "order_not_found"
)

type ProcessWebhookInput struct {
	IdempotencyKey string
	OrderID        string
	Status         domain.WebhookStatus
	Payload        map[string]any
}

type ProcessWebhookResult struct {
	Outcome       string
	WebhookID     string
	OrderID       string
	PaymentStatus domain.WebhookStatus
}

// WebhookService applies externally delivered payment outcomes to orders
// exactly once per idempotency key, tolerating webhooks that arrive
// before their order exists.
type WebhookService struct {
	repo   WebhookRepository
	orders OrderFinalizer
	logger *zap.Logger
}

func NewWebhookService(repo WebhookRepository, orders OrderFinalizer, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		repo:   repo,
		orders: orders,
		logger: logger,
	}
}

// Process runs the per-key state machine in one transaction. Replays are
// fully inert. A webhook racing ahead of order creation is persisted
// unbound with the order identifier retained in the payload and answered
// with order_not_found; that is a deferred success, not an error. The
// unique index on idempotency_key backstops step one: when two calls race
// past the lookup, the losing insert conflicts and is answered from the
// winner's row, with zero side effects of its own.
func (s *WebhookService) Process(ctx context.Context, in ProcessWebhookInput) (ProcessWebhookResult, error) {
	var result ProcessWebhookResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindWebhookByKey(txCtx, in.IdempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			result = replayResult(existing)
			s.logger.Info("webhook already processed",
				zap.String("idempotency_key", in.IdempotencyKey),
				zap.String("webhook_id", existing.ID),
			)
			metrics.WebhooksReplayed.Inc()
			return nil
		}

		order, err := s.repo.GetOrder(txCtx, in.OrderID)
		if err != nil {
			return err
		}

		if order == nil {
			payload := clonePayload(in.Payload)
			payload["order_id"] = in.OrderID

			webhook := domain.PaymentWebhook{
				ID:             newID(),
				IdempotencyKey: in.IdempotencyKey,
				OrderID:        nil,
				Status:         in.Status,
				Payload:        payload,
			}
			if err := s.repo.CreateWebhook(txCtx, webhook); err != nil {
				return s.resolveDuplicate(txCtx, in.IdempotencyKey, err, &result)
			}

			s.logger.Warn("webhook arrived before order exists",
				zap.String("idempotency_key", in.IdempotencyKey),
				zap.String("order_id", in.OrderID),
				zap.String("status", string(in.Status)),
			)
			metrics.WebhooksDeferred.Inc()
			result = ProcessWebhookResult{
				Outcome:       OutcomeOrderNotFound,
				WebhookID:     webhook.ID,
				PaymentStatus: in.Status,
			}
			return nil
		}

		webhook := domain.PaymentWebhook{
			ID:             newID(),
			IdempotencyKey: in.IdempotencyKey,
			OrderID:        &order.ID,
			Status:         in.Status,
			Payload:        clonePayload(in.Payload),
		}
		if err := s.repo.CreateWebhook(txCtx, webhook); err != nil {
			return s.resolveDuplicate(txCtx, in.IdempotencyKey, err, &result)
		}

		if err := s.applyOutcome(txCtx, in.Status, order.ID); err != nil {
			return err
		}
		if err := s.repo.MarkWebhookProcessed(txCtx, webhook.ID); err != nil {
			return err
		}

		s.logger.Info("webhook processed",
			zap.String("webhook_id", webhook.ID),
			zap.String("order_id", order.ID),
			zap.String("idempotency_key", in.IdempotencyKey),
			zap.String("status", string(in.Status)),
		)
		metrics.WebhooksProcessed.Inc()
		result = ProcessWebhookResult{
			Outcome:       OutcomeProcessed,
			WebhookID:     webhook.ID,
			OrderID:       order.ID,
			PaymentStatus: in.Status,
		}
		return nil
	})
	if err != nil {
		return ProcessWebhookResult{}, err
	}
	return result, nil
}

// RetryPending re-resolves webhooks persisted without an order. Each
// webhook advances in its own transaction; per-item failures are logged
// and do not abort the batch. Returns the count successfully advanced.
func (s *WebhookService) RetryPending(ctx context.Context) (int, error) {
	pending, err := s.repo.FindUnresolvedWebhooks(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	s.logger.Info("retrying pending webhooks", zap.Int("count", len(pending)))

	processed := 0
	for _, webhook := range pending {
		orderID, ok := webhook.PayloadOrderID()
		if !ok {
			// Data defect: nothing to correlate against, not retried further.
			s.logger.Error("webhook missing order_id in payload", zap.String("webhook_id", webhook.ID))
			continue
		}

		advanced, err := s.retryOne(ctx, webhook, orderID)
		if err != nil {
			s.logger.Error("webhook retry failed",
				zap.String("webhook_id", webhook.ID),
				zap.String("order_id", orderID),
				zap.Error(err),
			)
			continue
		}
		if advanced {
			processed++
			metrics.WebhooksRetried.Inc()
		}
	}
	return processed, nil
}

func (s *WebhookService) retryOne(ctx context.Context, webhook domain.PaymentWebhook, orderID string) (bool, error) {
	advanced := false
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrder(txCtx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			// Retained for a future run.
			s.logger.Debug("order still not found for webhook",
				zap.String("webhook_id", webhook.ID),
				zap.String("order_id", orderID),
			)
			return nil
		}

		if err := s.repo.BindWebhookOrder(txCtx, webhook.ID, order.ID); err != nil {
			return err
		}
		if err := s.applyOutcome(txCtx, webhook.Status, order.ID); err != nil {
			return err
		}
		if err := s.repo.MarkWebhookProcessed(txCtx, webhook.ID); err != nil {
			return err
		}

		s.logger.Info("pending webhook processed on retry",
			zap.String("webhook_id", webhook.ID),
			zap.String("order_id", order.ID),
		)
		advanced = true
		return nil
	})
	return advanced, err
}

func (s *WebhookService) applyOutcome(ctx context.Context, status domain.WebhookStatus, orderID string) error {
	switch status {
	case domain.WebhookStatusSuccess:
		return s.orders.MarkAsPaid(ctx, orderID)
	case domain.WebhookStatusFailure:
		return s.orders.Cancel(ctx, orderID)
	default:
		return domain.ErrInvalidID
	}
}

// resolveDuplicate answers a lost insert race from the winner's row. Any
// other error aborts the transaction untouched.
func (s *WebhookService) resolveDuplicate(ctx context.Context, key string, insertErr error, result *ProcessWebhookResult) error {
	if insertErr != domain.ErrDuplicateWebhook {
		return insertErr
	}
	existing, err := s.repo.FindWebhookByKey(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil {
		return insertErr
	}
	*result = replayResult(existing)
	metrics.WebhooksReplayed.Inc()
	return nil
}

func replayResult(existing *domain.PaymentWebhook) ProcessWebhookResult {
	result := ProcessWebhookResult{
		Outcome:       OutcomeAlreadyProcessed,
		WebhookID:     existing.ID,
		PaymentStatus: existing.Status,
	}
	if existing.OrderID != nil {
		result.OrderID = *existing.OrderID
	}
	return result
}

func clonePayload(payload map[string]any) map[string]any {
	cloned := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		cloned[k] = v
	}
	return cloned
}
