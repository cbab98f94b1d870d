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

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const productColumns = `id, name, price::text, total_stock, available_stock, created_at`

func (r *ProductRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanProduct(r.queryRow(ctx, query, productID))
}

// GetProductForUpdate takes the product row lock that serializes every
// stock mutation. Must run inside a transaction.
func (r *ProductRepository) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.scanProduct(r.queryRow(ctx, query, productID))
}

func (r *ProductRepository) UpdateAvailableStock(ctx context.Context, productID string, available int) error {
	const stmt = `UPDATE products SET available_stock = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, available)
	if err != nil {
		return fmt.Errorf("update available stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var price string
	err := row.Scan(&p.ID, &p.Name, &price, &p.TotalStock, &p.AvailableStock, &p.CreatedAt)
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

func (r *ProductRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ProductRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
