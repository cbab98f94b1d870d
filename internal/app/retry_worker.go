package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PendingWebhookResolver is what the worker needs from WebhookService.
type PendingWebhookResolver interface {
	RetryPending(ctx context.Context) (int, error)
}

const defaultRetryInterval = time.Minute

// RetryWorker periodically re-resolves webhooks that arrived before
// their order existed. The guard keeps a single run active system-wide.
type RetryWorker struct {
	webhooks PendingWebhookResolver
	guard    JobGuard
	logger   *zap.Logger
	interval time.Duration
}

func NewRetryWorker(webhooks PendingWebhookResolver, guard JobGuard, logger *zap.Logger, opts ...RetryWorkerOption) *RetryWorker {
	w := &RetryWorker{
		webhooks: webhooks,
		guard:    guard,
		logger:   logger,
		interval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type RetryWorkerOption func(*RetryWorker)

func WithRetryInterval(d time.Duration) RetryWorkerOption {
	return func(w *RetryWorker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// Run executes RunOnce on a fixed interval until ctx is cancelled.
func (w *RetryWorker) Run(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("webhook retry worker stopping")
			return
		case <-t.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("webhook retry run failed", zap.Error(err))
			}
		}
	}
}

// RunOnce advances every resolvable pending webhook and returns the
// count successfully advanced.
func (w *RetryWorker) RunOnce(ctx context.Context) (int, error) {
	release, acquired, err := w.guard.TryAcquire(ctx, retryJobID)
	if err != nil {
		return 0, err
	}
	if !acquired {
		w.logger.Debug("webhook retry already running elsewhere, skipping")
		return 0, nil
	}
	defer release()

	w.logger.Debug("starting pending webhooks retry")
	processed, err := w.webhooks.RetryPending(ctx)
	if err != nil {
		return 0, err
	}
	if processed > 0 {
		w.logger.Info("pending webhooks retry completed", zap.Int("processed_count", processed))
	}
	return processed, nil
}
