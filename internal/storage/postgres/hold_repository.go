package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ZeinaZayed4/flash-sale/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HoldRepository struct {
	pool *pgxpool.Pool
}

func NewHoldRepository(pool *pgxpool.Pool) *HoldRepository {
	return &HoldRepository{pool: pool}
}

func (r *HoldRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *HoldRepository) CreateHold(ctx context.Context, hold domain.Hold) error {
	const stmt = `
INSERT INTO holds (id, product_id, quantity, expires_at, is_consumed, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt,
		hold.ID,
		hold.ProductID,
		hold.Quantity,
		hold.ExpiresAt,
		hold.IsConsumed,
		hold.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

func (r *HoldRepository) GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error) {
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

func (r *HoldRepository) MarkHoldConsumed(ctx context.Context, holdID string) error {
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

// FindExpiredHolds scans on the (expires_at, is_consumed) index. Read
// only; no locks taken.
func (r *HoldRepository) FindExpiredHolds(ctx context.Context, now time.Time) ([]domain.Hold, error) {
	const query = `
SELECT id, product_id, quantity, expires_at, is_consumed, created_at
FROM holds
WHERE expires_at <= $1 AND is_consumed = FALSE
ORDER BY expires_at`

	rows, err := r.query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("find expired holds: %w", err)
	}
	defer rows.Close()

	var holds []domain.Hold
	for rows.Next() {
		var h domain.Hold
		if err := rows.Scan(&h.ID, &h.ProductID, &h.Quantity, &h.ExpiresAt, &h.IsConsumed, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expired hold: %w", err)
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find expired holds: %w", err)
	}
	return holds, nil
}

func (r *HoldRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *HoldRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *HoldRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
