package app

import (
	"context"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/ZeinaZayed4/flash-sale/internal/metrics"
	"go.uber.org/zap"
)

// JobGuard grants at most one active run of a named job system-wide.
// TryAcquire returns acquired=false without blocking when another
// instance holds the job; release must be called on every exit path.
type JobGuard interface {
	TryAcquire(ctx context.Context, jobID int64) (release func(), acquired bool, err error)
}

// Advisory lock keys for the periodic jobs.
const (
	reaperJobID = int64(520101)
	retryJobID  = int64(520102)
)

// ExpiredHoldReleaser is what the reaper needs from HoldService.
type ExpiredHoldReleaser interface {
	FindExpired(ctx context.Context) ([]domain.Hold, error)
	ReleaseHold(ctx context.Context, holdID string) error
}

type ReapStats struct {
	Found    int
	Released int
	Failed   int
	Elapsed  time.Duration
}

const defaultReaperInterval = 30 * time.Second

// ExpiryReaper periodically reclaims stock from expired, unconsumed
// holds. Each hold releases in its own transaction, so one failure never
// aborts the batch; a second concurrent reaper is skipped by the guard.
type ExpiryReaper struct {
	holds    ExpiredHoldReleaser
	guard    JobGuard
	logger   *zap.Logger
	interval time.Duration
}

func NewExpiryReaper(holds ExpiredHoldReleaser, guard JobGuard, logger *zap.Logger, opts ...ReaperOption) *ExpiryReaper {
	r := &ExpiryReaper{
		holds:    holds,
		guard:    guard,
		logger:   logger,
		interval: defaultReaperInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type ReaperOption func(*ExpiryReaper)

func WithReaperInterval(d time.Duration) ReaperOption {
	return func(r *ExpiryReaper) {
		if d > 0 {
			r.interval = d
		}
	}
}

// Run executes RunOnce on a fixed interval until ctx is cancelled.
func (r *ExpiryReaper) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("expiry reaper stopping")
			return
		case <-t.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("expiry reaper run failed", zap.Error(err))
			}
		}
	}
}

// RunOnce releases every currently expired hold and reports counts.
func (r *ExpiryReaper) RunOnce(ctx context.Context) (ReapStats, error) {
	release, acquired, err := r.guard.TryAcquire(ctx, reaperJobID)
	if err != nil {
		return ReapStats{}, err
	}
	if !acquired {
		r.logger.Debug("expiry reaper already running elsewhere, skipping")
		return ReapStats{}, nil
	}
	defer release()

	start := time.Now()
	expired, err := r.holds.FindExpired(ctx)
	if err != nil {
		return ReapStats{}, err
	}

	stats := ReapStats{Found: len(expired)}
	if stats.Found == 0 {
		r.logger.Debug("no expired holds to release")
		return stats, nil
	}

	r.logger.Info("starting expired holds cleanup", zap.Int("expired_count", stats.Found))

	for _, hold := range expired {
		if err := r.holds.ReleaseHold(ctx, hold.ID); err != nil {
			stats.Failed++
			metrics.ReaperFailures.Inc()
			r.logger.Error("failed to release hold",
				zap.String("hold_id", hold.ID),
				zap.Error(err),
			)
			continue
		}
		stats.Released++
	}

	stats.Elapsed = time.Since(start)
	r.logger.Info("expired holds cleanup completed",
		zap.Int("total_found", stats.Found),
		zap.Int("released", stats.Released),
		zap.Int("errors", stats.Failed),
		zap.Duration("duration", stats.Elapsed),
	)
	return stats, nil
}
