// Package kv defines the local key-value storage the stores persist to. Each
// entity type owns one key holding its whole collection.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing was ever stored under the key.
var ErrNotFound = errors.New("key not found")

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
