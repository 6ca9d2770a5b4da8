// Package imagestore keeps uploaded menu item images.
package imagestore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("image not found")

// URLPrefix is where stored images are served; an item's imageUrl is
// URLPrefix + key.
const URLPrefix = "/images/"

type ImageStore interface {
	Save(ctx context.Context, mimeType string, r io.Reader) (key string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

func URL(key string) string {
	return URLPrefix + key
}
