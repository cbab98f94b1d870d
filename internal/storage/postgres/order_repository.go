package postgres

import (
	"context"
	"fmt"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// Hold and product reads needed by order creation live here too, the
// same way confirmation queries do on the write side of a checkout.

func (r *OrderRepository) GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error) {
	const query = `
SELECT id, product_id, quantity, expires_at, is_consumed, created_at
FROM holds
WHERE id = $1
FOR UPDATE`

	var h domain.Hold
	err := r.queryRow(ctx, query, holdID).
		Scan(&h.ID, &h.ProductID, &h.Quantity, &h.ExpiresAt, &h.IsConsumed, &h.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hold{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Hold{}, domain.ErrHoldNotFound
		}
		return domain.Hold{}, fmt.Errorf("get hold: %w", err)
	}
	return h, nil
}

func (r *OrderRepository) MarkHoldConsumed(ctx context.Context, holdID string) error {
	const stmt = `UPDATE holds SET is_consumed = TRUE WHERE id = $1`

	tag, err := r.exec(ctx, stmt, holdID)
	if err != nil {
		return fmt.Errorf("mark hold consumed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHoldNotFound
	}
	return nil
}

func (r *OrderRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	const query = `SELECT id, name, price::text, total_stock, available_stock, created_at FROM products WHERE id = $1`

	var p domain.Product
	var price string
	err := r.queryRow(ctx, query, productID).
		Scan(&p.ID, &p.Name, &price, &p.TotalStock, &p.AvailableStock, &p.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price: %w", err)
	}
	return p, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, hold_id, product_id, quantity, total_price, status, created_at)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.HoldID,
		order.ProductID,
		order.Quantity,
		order.TotalPrice.String(),
		string(order.Status),
		order.CreatedAt,
	)
	if err != nil {
		// hold_id is unique: a concurrent conversion already won.
		if isUniqueViolation(err) {
			return domain.ErrHoldAlreadyUsed
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	const query = `
SELECT id, hold_id, product_id, quantity, total_price::text, status, created_at
FROM orders
WHERE id = $1
FOR UPDATE`

	return r.scanOrder(r.queryRow(ctx, query, orderID))
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	const stmt = `UPDATE orders SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var totalPrice, status string
	err := row.Scan(&o.ID, &o.HoldID, &o.ProductID, &o.Quantity, &totalPrice, &status, &o.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}

	o.Status = domain.OrderStatus(status)
	o.TotalPrice, err = decimal.NewFromString(totalPrice)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse total price: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
