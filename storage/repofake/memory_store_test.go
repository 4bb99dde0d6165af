package repofake_test

import (
	"context"
	"testing"

	apperrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/jrsteele09/go-storefront/storage/repofake"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := repofake.NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrStorageMiss)

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'z'
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), got, "stored values are copied")

	t.Run("pop consumes once", func(t *testing.T) {
		popped, err := store.Pop(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, []byte("abc"), popped)

		_, err = store.Pop(ctx, "k")
		require.ErrorIs(t, err, apperrors.ErrStorageMiss)
		require.Equal(t, 0, store.Len())
	})

	t.Run("namespaces are isolated", func(t *testing.T) {
		a := storage.Namespace(store, "a")
		b := storage.Namespace(store, "b")
		require.NoError(t, a.Set(ctx, "token", []byte("1")))

		_, err := b.Get(ctx, "token")
		require.ErrorIs(t, err, apperrors.ErrStorageMiss)

		require.NoError(t, a.Delete(ctx, "token"))
		_, err = a.Get(ctx, "token")
		require.ErrorIs(t, err, apperrors.ErrStorageMiss)
	})

	t.Run("pop through a namespace", func(t *testing.T) {
		ns := storage.Namespace(store, "nav")
		require.NoError(t, ns.Set(ctx, "payment", []byte("x")))
		got, err := storage.Pop(ctx, ns, "payment")
		require.NoError(t, err)
		require.Equal(t, []byte("x"), got)
		_, err = ns.Get(ctx, "payment")
		require.ErrorIs(t, err, apperrors.ErrStorageMiss)
	})

	t.Run("pop falls back to get and delete", func(t *testing.T) {
		plain := getOnlyStore{store}
		require.NoError(t, plain.Set(ctx, "once", []byte("1")))
		got, err := storage.Pop(ctx, plain, "once")
		require.NoError(t, err)
		require.Equal(t, []byte("1"), got)
		_, err = storage.Pop(ctx, plain, "once")
		require.ErrorIs(t, err, apperrors.ErrStorageMiss)
	})

	t.Run("json round trip of a bad payload", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "bad", []byte("{")))
		var out map[string]any
		found, err := storage.GetJSON(ctx, store, "bad", &out)
		require.Error(t, err)
		require.False(t, found)
	})
}

// getOnlyStore hides MemoryStore.Pop.
type getOnlyStore struct {
	inner storage.Store
}

func (g getOnlyStore) Get(ctx context.Context, key string) ([]byte, error) {
	return g.inner.Get(ctx, key)
}

func (g getOnlyStore) Set(ctx context.Context, key string, value []byte) error {
	return g.inner.Set(ctx, key, value)
}

func (g getOnlyStore) Delete(ctx context.Context, key string) error {
	return g.inner.Delete(ctx, key)
}
