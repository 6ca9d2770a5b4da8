package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vbonduro/cafeliz/internal/kv"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT        PRIMARY KEY,
	value      BYTEA       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Backend stores values in a postgres kv table. It is meant for a shop
// device that syncs to a local postgres instead of an embedded file.
type Backend struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, connStr string) (*Backend, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &Backend{pool: pool}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.pool.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}
