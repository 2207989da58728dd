package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/domain"
)

// AdvisoryLocker serializes batch jobs with Postgres session advisory
// locks, keyed by the job name. A second invocation of the same job on
// another connection gets ErrJobRunning instead of blocking.
type AdvisoryLocker struct{ db *gorm.DB }

func NewAdvisoryLocker(db *gorm.DB) *AdvisoryLocker { return &AdvisoryLocker{db: db} }

func (l *AdvisoryLocker) Acquire(ctx context.Context, job string) (func(), error) {
	// The lock is session-scoped, so acquire and release must run on
	// the same connection.
	conn, err := l.db.DB()
	if err != nil {
		return nil, err
	}
	c, err := conn.Conn(ctx)
	if err != nil {
		return nil, err
	}
	var got bool
	if err := c.QueryRowContext(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", job).Scan(&got); err != nil {
		c.Close()
		return nil, err
	}
	if !got {
		c.Close()
		return nil, domain.ErrJobRunning
	}
	release := func() {
		_, _ = c.ExecContext(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", job)
		c.Close()
	}
	return release, nil
}
