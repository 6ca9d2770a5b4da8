package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/vbonduro/cafeliz/internal/kv"
)

var bucketName = []byte("cafeliz")

// Backend stores every key in a single bucket of an embedded bolt database.
type Backend struct {
	db *bolt.DB
}

func Open(path string) (*Backend, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Backend{db: db}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return kv.ErrNotFound
		}
		// v is only valid for the life of the transaction.
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (b *Backend) Put(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}
