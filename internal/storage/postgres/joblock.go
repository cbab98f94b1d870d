package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// JobLock implements the ensure-single-active-instance contract for
// periodic jobs with Postgres session advisory locks. The lock lives on
// a dedicated connection held until release, so a crashed holder frees
// it when its session dies.
type JobLock struct {
	pool *pgxpool.Pool
}

func NewJobLock(pool *pgxpool.Pool) *JobLock {
	return &JobLock{pool: pool}
}

// TryAcquire attempts the lock without blocking. When acquired=true the
// returned release func must be called on every exit path; it unlocks
// and returns the connection to the pool.
func (l *JobLock) TryAcquire(ctx context.Context, jobID int64) (release func(), acquired bool, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire conn: %w", err)
	}

	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, jobID).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, jobID)
		conn.Release()
	}
	return release, true, nil
}
