package memory

import (
	"context"
	"sync"

	"github.com/vbonduro/cafeliz/internal/kv"
)

// Backend keeps values in process memory. Nothing survives a restart.
type Backend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func New() *Backend {
	return &Backend{values: make(map[string][]byte)}
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = append([]byte(nil), value...)
	return nil
}

func (b *Backend) Close() error {
	return nil
}
