package postgres

import (
	"context"
	"fmt"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type WebhookRepository struct {
	pool *pgxpool.Pool
}

func NewWebhookRepository(pool *pgxpool.Pool) *WebhookRepository {
	return &WebhookRepository{pool: pool}
}

func (r *WebhookRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const webhookColumns = `id, idempotency_key, order_id, status, payload, processed, created_at`

func (r *WebhookRepository) FindWebhookByKey(ctx context.Context, idempotencyKey string) (*domain.PaymentWebhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM payment_webhooks WHERE idempotency_key = $1`

	webhook, err := r.scanWebhook(r.queryRow(ctx, query, idempotencyKey))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find webhook by key: %w", err)
	}
	return &webhook, nil
}

// CreateWebhook inserts the dedup row. ON CONFLICT DO NOTHING keeps the
// enclosing transaction healthy when a concurrent call won the key, so
// the caller can re-read the winner's row and answer from it.
func (r *WebhookRepository) CreateWebhook(ctx context.Context, webhook domain.PaymentWebhook) error {
	const stmt = `
INSERT INTO payment_webhooks (id, idempotency_key, order_id, status, payload, processed)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (idempotency_key) DO NOTHING`

	tag, err := r.exec(ctx, stmt,
		webhook.ID,
		webhook.IdempotencyKey,
		webhook.OrderID,
		string(webhook.Status),
		webhook.Payload,
		webhook.Processed,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create webhook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateWebhook
	}
	return nil
}

func (r *WebhookRepository) BindWebhookOrder(ctx context.Context, webhookID, orderID string) error {
	const stmt = `UPDATE payment_webhooks SET order_id = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, webhookID, orderID)
	if err != nil {
		return fmt.Errorf("bind webhook order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *WebhookRepository) MarkWebhookProcessed(ctx context.Context, webhookID string) error {
	const stmt = `UPDATE payment_webhooks SET processed = TRUE WHERE id = $1`

	tag, err := r.exec(ctx, stmt, webhookID)
	if err != nil {
		return fmt.Errorf("mark webhook processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// FindUnresolvedWebhooks returns webhooks persisted before their order
// existed, oldest first.
func (r *WebhookRepository) FindUnresolvedWebhooks(ctx context.Context) ([]domain.PaymentWebhook, error) {
	query := `
SELECT ` + webhookColumns + `
FROM payment_webhooks
WHERE processed = FALSE AND order_id IS NULL
ORDER BY created_at`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find unresolved webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []domain.PaymentWebhook
	for rows.Next() {
		webhook, err := r.scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unresolved webhook: %w", err)
		}
		webhooks = append(webhooks, webhook)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find unresolved webhooks: %w", err)
	}
	return webhooks, nil
}

// GetOrder returns (nil, nil) when the order is absent. A malformed id
// counts as absent: external callers reference orders by identifiers this
// system may not have minted yet. The id is validated before querying —
// letting Postgres raise 22P02 here would abort the caller's transaction
// before the dedup row insert.
func (r *WebhookRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, nil
	}

	const query = `
SELECT id, hold_id, product_id, quantity, total_price::text, status, created_at
FROM orders
WHERE id = $1`

	var o domain.Order
	var totalPrice, status string
	err := r.queryRow(ctx, query, orderID).
		Scan(&o.ID, &o.HoldID, &o.ProductID, &o.Quantity, &totalPrice, &status, &o.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	o.Status = domain.OrderStatus(status)
	o.TotalPrice, err = decimal.NewFromString(totalPrice)
	if err != nil {
		return nil, fmt.Errorf("parse total price: %w", err)
	}
	return &o, nil
}

func (r *WebhookRepository) scanWebhook(row pgx.Row) (domain.PaymentWebhook, error) {
	var w domain.PaymentWebhook
	var status string
	err := row.Scan(&w.ID, &w.IdempotencyKey, &w.OrderID, &status, &w.Payload, &w.Processed, &w.CreatedAt)
	if err != nil {
		return domain.PaymentWebhook{}, err
	}
	w.Status = domain.WebhookStatus(status)
	return w, nil
}

func (r *WebhookRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *WebhookRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *WebhookRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
