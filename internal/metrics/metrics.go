// Package metrics exposes Prometheus counters for the checkout core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HoldsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_holds_created_total",
		Help: "Holds successfully created with a stock reservation.",
	})
	HoldsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_holds_released_total",
		Help: "Holds released with stock credited back.",
	})
	ReaperFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_reaper_failures_total",
		Help: "Expired holds the reaper failed to release.",
	})
	WebhooksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_webhooks_processed_total",
		Help: "Payment webhooks applied to an order on first delivery.",
	})
	WebhooksReplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_webhooks_replayed_total",
		Help: "Payment webhooks answered from an existing idempotency row.",
	})
	WebhooksDeferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_webhooks_deferred_total",
		Help: "Payment webhooks stored before their order existed.",
	})
	WebhooksRetried = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_webhooks_retried_total",
		Help: "Deferred payment webhooks resolved by the retry worker.",
	})
)
