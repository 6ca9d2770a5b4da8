package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/cafeliz/internal/kv"
)

// Backend stores values in the kv table created by the db migrations.
type Backend struct {
	db *sql.DB
}

func New(db *sql.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}

	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}
