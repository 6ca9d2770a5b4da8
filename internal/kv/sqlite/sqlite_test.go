package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/cafeliz/internal/db"
	"github.com/vbonduro/cafeliz/internal/kv"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	b := New(d)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackendGetMissing(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.Get(context.Background(), "products")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestBackendPutAndGet(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "orders", []byte(`[{"id":1}]`)))

	got, err := b.Get(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))
}

func TestBackendPutOverwrites(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "products", []byte(`[{"id":1}]`)))
	require.NoError(t, b.Put(ctx, "products", []byte(`[]`)))

	got, err := b.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestBackendNamespacesAreIndependent(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "products", []byte(`["p"]`)))
	require.NoError(t, b.Put(ctx, "orders", []byte(`["o"]`)))

	products, err := b.Get(ctx, "products")
	require.NoError(t, err)
	orders, err := b.Get(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, `["p"]`, string(products))
	assert.Equal(t, `["o"]`, string(orders))
}
