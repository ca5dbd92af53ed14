// Package database carries the shared Postgres plumbing: pool construction,
// schema migrations, readiness checks and query instrumentation for the
// cart storage layer.
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const healthCheckTimeout = 2 * time.Second

// CheckHealth pings the pool with a short deadline. The readiness endpoint
// calls this on every probe, so it must not hang on a dead database.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	return pool.Ping(ctx)
}
