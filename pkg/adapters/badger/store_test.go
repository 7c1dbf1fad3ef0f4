package badger_test

import (
	"context"
	"testing"

	"github.com/aretw0/storyloom/pkg/adapters/badger"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.KVStore = (*badger.Store)(nil)

func TestBadgerStore_InMemoryContract(t *testing.T) {
	store, err := badger.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	ports.RunKVStoreContract(t, store)
	assert.NoError(t, store.RunGC(0.5))
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := badger.Open(badger.Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "storyloom.progress.v2", []byte(`{"nodeId":"b"}`)))
	require.NoError(t, store.Close())

	store, err = badger.Open(badger.Config{Path: dir})
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(ctx, "storyloom.progress.v2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodeId":"b"}`, string(got))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"storyloom.progress.v2"}, keys)

	require.NoError(t, store.Delete(ctx, "storyloom.progress.v2"))
	_, err = store.Get(ctx, "storyloom.progress.v2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, store.RunGC(0.5))
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := badger.Open(badger.Config{})
	assert.Error(t, err)
}
