package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/aretw0/taxwizard/pkg/ports"
)

// Locker implements ports.DistributedLocker with session-level advisory locks.
// Each held lock pins one connection from the pool until it is released.
type Locker struct {
	db    *sql.DB
	retry time.Duration
}

// NewLocker creates an advisory-lock based locker.
func NewLocker(db *sql.DB) *Locker {
	return &Locker{db: db, retry: 50 * time.Millisecond}
}

func lockID(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}

// Lock polls pg_try_advisory_lock until acquired or ctx is done.
// Postgres has no lock expiry; ttl is unused and the lock drops with its connection.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for lock: %w", err)
	}
	id := lockID(key)

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		var ok bool
		if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, id).Scan(&ok); err != nil {
			_ = conn.Close()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("try advisory lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				defer conn.Close()
				if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, id); err != nil {
					return fmt.Errorf("advisory unlock: %w", err)
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			_ = conn.Close()
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
