package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/cafeliz/internal/catalog"
	"github.com/vbonduro/cafeliz/internal/config"
	"github.com/vbonduro/cafeliz/internal/domain"
	"github.com/vbonduro/cafeliz/internal/kv"
	"github.com/vbonduro/cafeliz/internal/store"
)

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		DBPath:   filepath.Join(dir, "cafeliz.db"),
		BoltPath: filepath.Join(dir, "cafeliz.bolt"),
		StoreDir: filepath.Join(dir, "store"),
	}
	ctx := context.Background()

	for _, name := range []string{"sqlite", "bolt", "file", "memory"} {
		t.Run(name, func(t *testing.T) {
			cfg.StorageBackend = name
			b, err := openBackend(ctx, cfg)
			require.NoError(t, err)
			defer b.Close()

			require.NoError(t, b.Put(ctx, "products", []byte(`[]`)))
			got, err := b.Get(ctx, "products")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			_, err = b.Get(ctx, "orders")
			assert.ErrorIs(t, err, kv.ErrNotFound)
		})
	}
}

func TestOpenBackendErrors(t *testing.T) {
	ctx := context.Background()

	_, err := openBackend(ctx, &config.Config{StorageBackend: "redis"})
	assert.Error(t, err)

	_, err = openBackend(ctx, &config.Config{StorageBackend: "postgres"})
	assert.Error(t, err)
}

func TestPrintMenu(t *testing.T) {
	items := []domain.MenuItem{{ID: 1, Title: "Espresso", Description: "Forte", Price: "8.50"}}

	var buf bytes.Buffer
	require.NoError(t, printMenu(&buf, "table", items))
	assert.Contains(t, buf.String(), "Espresso")
	assert.Contains(t, buf.String(), "R$ 8,50")

	buf.Reset()
	require.NoError(t, printMenu(&buf, "json", items))
	assert.Contains(t, buf.String(), `"title": "Espresso"`)

	buf.Reset()
	require.NoError(t, printMenu(&buf, "yaml", items))
	assert.Contains(t, buf.String(), "title: Espresso")

	assert.Error(t, printMenu(&buf, "csv", items))
}

func TestMenuListCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("STORE_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := config.Load()
	require.NoError(t, err)
	ctx := context.Background()
	b, err := openBackend(ctx, cfg)
	require.NoError(t, err)
	s := catalog.NewStore(b, store.Options{})
	require.NoError(t, s.Load(ctx))
	_, save := s.Append(ctx, domain.MenuItem{Title: "Cappuccino", Description: "Cremoso", Price: "12"})
	require.NoError(t, save.Wait(ctx))
	require.NoError(t, b.Close())

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"menu", "list", "--format", "json"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), `"title": "Cappuccino"`)
	assert.Contains(t, out.String(), `"id": 1`)
}

func TestLocationCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DEVICE_LAT", "-6.8547")
	t.Setenv("DEVICE_LON", "-35.49")
	t.Setenv("SHOP_LAT", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"location"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "Latitude: -6.854700, Longitude: -35.490000\n", out.String())
}
