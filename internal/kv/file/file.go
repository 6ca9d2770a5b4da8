package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/vbonduro/cafeliz/internal/kv"
)

const (
	lockTimeout   = 3 * time.Second
	lockRetryTick = 100 * time.Millisecond
)

// Backend keeps one JSON document per key under dir. Writes go to a temp file
// that is renamed over the target, under a cross-process file lock.
type Backend struct {
	dir string

	mu    sync.Mutex
	locks map[string]*flock.Flock
}

func New(dir string) (*Backend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Backend{dir: dir, locks: make(map[string]*flock.Flock)}, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}

	unlock, err := b.lock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}

	unlock, err := b.lock(ctx, key)
	if err != nil {
		return err
	}
	defer unlock()

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, value, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Close removes the lock files this backend created.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, l := range b.locks {
		_ = l.Unlock()
		_ = os.Remove(l.Path())
		delete(b.locks, key)
	}
	return nil
}

func (b *Backend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(b.dir, key+".json"), nil
}

func (b *Backend) lock(ctx context.Context, key string) (func(), error) {
	b.mu.Lock()
	l, ok := b.locks[key]
	if !ok {
		l = flock.New(filepath.Join(b.dir, key+".json.lock"))
		b.locks[key] = l
	}
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := l.TryLockContext(ctx, lockRetryTick)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire file lock")
	}
	return func() { _ = l.Unlock() }, nil
}
