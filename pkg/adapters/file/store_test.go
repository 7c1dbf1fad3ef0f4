package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/storyloom/pkg/adapters/file"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements KVStore
var _ ports.KVStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunKVStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "saves/slot 1", []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are cleaned up")
	assert.Equal(t, "saves%2Fslot%201.json", entries[0].Name())

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"saves/slot 1"}, keys)

	// stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	keys, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestFileStore_EmptyKey(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Set(ctx, "", nil))
	_, err := store.Get(ctx, "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "not", "yet"))

	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileStore_TmpPrefixedKeys(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tmp-run", []byte(`1`)))
	require.NoError(t, store.Set(ctx, "run", []byte(`2`)))

	// an interrupted write leaves a partial file behind
	require.NoError(t, os.WriteFile(filepath.Join(dir, "123.partial"), []byte("x"), 0o644))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "tmp-run"}, keys)
}
