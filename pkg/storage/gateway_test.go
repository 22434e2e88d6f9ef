package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-persist/pkg/storage"
)

func TestKey(t *testing.T) {
	require.Equal(t, "persisted-storage-test-counter", storage.Key("test-counter"))
}

func TestGatewayNamespacesKeys(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()
	gw := storage.NewGateway(backend)

	require.NoError(t, gw.Set(ctx, "counter", `{"counter":1}`))
	raw, ok, err := backend.GetItem(ctx, "persisted-storage-counter")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"counter":1}`, raw)

	value, ok, err := gw.Get(ctx, "counter")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, raw, value)

	require.NoError(t, gw.Remove(ctx, "counter"))
	require.NoError(t, gw.Remove(ctx, "counter"))
}

func TestGatewayClassifiesFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	gw := storage.NewGateway(storage.HandlerFuncs{
		Get:    func(context.Context, string) (string, bool, error) { return "", false, boom },
		Set:    func(context.Context, string, string) error { return boom },
		Remove: func(context.Context, string) error { return boom },
	})

	_, ok, err := gw.Get(ctx, "counter")
	require.False(t, ok)
	require.True(t, storage.IsReadError(err))
	require.ErrorIs(t, err, boom)

	var storageErr *storage.Error
	require.ErrorAs(t, err, &storageErr)
	require.Equal(t, "counter", storageErr.Slice)
	require.Equal(t, "persisted-storage-counter", storageErr.Key)

	err = gw.Set(ctx, "counter", "{}")
	require.True(t, storage.IsWriteError(err))
	require.False(t, storage.IsReadError(err))

	err = gw.Remove(ctx, "counter")
	require.ErrorIs(t, err, storage.ErrRemove)
}

func TestGatewayWithoutHandler(t *testing.T) {
	var gw *storage.Gateway
	_, ok, err := gw.Get(context.Background(), "counter")
	require.False(t, ok)
	require.True(t, storage.IsReadError(err))
}

func TestHandlerFuncsUnsupported(t *testing.T) {
	h := storage.HandlerFuncs{}
	_, _, err := h.GetItem(context.Background(), "k")
	require.ErrorIs(t, err, storage.ErrUnsupported)
	require.ErrorIs(t, h.SetItem(context.Background(), "k", "v"), storage.ErrUnsupported)
	require.ErrorIs(t, h.RemoveItem(context.Background(), "k"), storage.ErrUnsupported)
}
