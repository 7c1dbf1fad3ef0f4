package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/storyloom/pkg/adapters/sqlite"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.KVStore = (*sqlite.Store)(nil)

func openStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saves.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, _ := openStore(t)
	ports.RunKVStoreContract(t, store)
}

func TestSQLiteStore_InMemoryContract(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ports.RunKVStoreContract(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "progress", []byte(`{"nodeId":"a"}`)))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "progress")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodeId":"a"}`, string(got))

	_, err = reopened.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_Errors(t *testing.T) {
	_, err := sqlite.Open("  ")
	assert.Error(t, err)

	store, _ := openStore(t)
	assert.Error(t, store.Set(context.Background(), "", []byte("x")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)

	var nilStore *sqlite.Store
	assert.NoError(t, nilStore.Close())
}
