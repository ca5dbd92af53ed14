// Package postgres backs the cart storage port with a kv_entries table,
// giving carts durability across service restarts.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/storefront/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KV persists key-value entries in Postgres.
type KV struct {
	pool    *pgxpool.Pool
	metrics *database.Metrics
}

// Option configures a KV.
type Option func(*KV)

// WithMetrics records query durations on the given instruments.
func WithMetrics(m *database.Metrics) Option {
	return func(s *KV) {
		s.metrics = m
	}
}

// NewKV constructs a Postgres-backed store over the given pool.
func NewKV(pool *pgxpool.Pool, opts ...Option) *KV {
	s := &KV{pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for a key, reporting absence via the boolean.
func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	defer s.observe(ctx, "kv_get", time.Now())

	query := `SELECT value FROM kv_entries WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select kv entry: %w", err)
	}

	return value, true, nil
}

// Set stores or overwrites the value for a key.
func (s *KV) Set(ctx context.Context, key, value string) error {
	defer s.observe(ctx, "kv_set", time.Now())

	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("upsert kv entry: %w", err)
	}

	return nil
}

func (s *KV) observe(ctx context.Context, operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordQuery(ctx, operation, time.Since(start).Seconds())
	}
}
