package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/grantlemons/expenser/internal/repository/postgres"
)

// PG is a PostgreSQL-backed limiter over the login_attempts table.
type PG struct {
	db   *postgres.DB
	opts Options
	now  func() time.Time
}

// NewPG constructs a PostgreSQL-backed limiter sharing the repositories' handle.
func NewPG(db *postgres.DB, opts Options) *PG {
	return &PG{db: db, opts: opts, now: time.Now}
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *PG) Allow(ctx context.Context, username, ipHash string) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM login_attempts WHERE username=$1 AND ip_hash=$2`
	var blockedUntil *time.Time
	err := l.db.Pool.QueryRow(ctx, q, username, ipHash).Scan(&blockedUntil)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	case err != nil:
		return false, 0, postgres.MapErr(err)
	}
	if now := l.now(); blockedUntil != nil && blockedUntil.After(now) {
		return false, blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for (username, ip).
func (l *PG) Success(ctx context.Context, username, ipHash string) error {
	const q = `
INSERT INTO login_attempts (username, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 0, NULL, now())
ON CONFLICT (username, ip_hash)
DO UPDATE SET fail_count=0, blocked_until=NULL, updated_at=now()`
	_, err := l.db.Pool.Exec(ctx, q, username, ipHash)
	return postgres.MapErr(err)
}

// Failure records a failed attempt. Failures older than the window restart the count.
func (l *PG) Failure(ctx context.Context, username, ipHash string) (bool, time.Duration, error) {
	const q = `
INSERT INTO login_attempts (username, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 1, NULL, now())
ON CONFLICT (username, ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN now() - login_attempts.updated_at > $3::interval THEN 1 ELSE login_attempts.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.db.Pool.QueryRow(ctx, q, username, ipHash, l.opts.Window).Scan(&fails); err != nil {
		return false, 0, postgres.MapErr(err)
	}
	if fails < l.opts.MaxFails {
		return false, 0, nil
	}
	const upd = `UPDATE login_attempts SET blocked_until=$3 WHERE username=$1 AND ip_hash=$2`
	if _, err := l.db.Pool.Exec(ctx, upd, username, ipHash, l.now().Add(l.opts.BlockFor)); err != nil {
		return false, 0, postgres.MapErr(err)
	}
	return true, l.opts.BlockFor, nil
}
