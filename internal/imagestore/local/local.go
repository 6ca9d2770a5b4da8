package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vbonduro/cafeliz/internal/imagestore"
)

// Store writes images as <uuid><ext> files under one directory.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) Save(ctx context.Context, mimeType string, r io.Reader) (string, error) {
	key := uuid.NewString() + mimeTypeToExt(mimeType)
	path := filepath.Join(s.basePath, key)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close image after write error", "error", cerr)
		}
		s.discard(path)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Close(); err != nil {
		s.discard(path)
		return "", fmt.Errorf("failed to close image file: %w", err)
	}
	return key, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	path, err := s.safeJoin(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", imagestore.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	return f, extToMimeType(path), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.safeJoin(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return imagestore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *Store) discard(path string) {
	if err := os.Remove(path); err != nil {
		slog.Error("failed to remove partial image", "path", path, "error", err)
	}
}

// safeJoin resolves key under basePath and rejects anything that escapes it.
func (s *Store) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt: %q", key)
	}
	return absPath, nil
}

func mimeTypeToExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func extToMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
