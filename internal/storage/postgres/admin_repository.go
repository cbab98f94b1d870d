package postgres

import (
	"context"
	"fmt"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
INSERT INTO products (id, name, price, total_stock, available_stock, created_at)
VALUES ($1, $2, $3::numeric, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, stmt,
		product.ID,
		product.Name,
		product.Price.String(),
		product.TotalStock,
		product.AvailableStock,
		product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const query = `
SELECT id, name, price::text, total_stock, available_stock, created_at
FROM products
ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.TotalStock, &p.AvailableStock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
