package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKVStoreContract runs a suite of tests to verify that a KVStore
// implementation adheres to the interface contract.
func RunKVStoreContract(t *testing.T, store KVStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		key := prefix + ".progress"
		payload := []byte(`{"formatVersion":2,"nodeId":"start"}`)

		require.NoError(t, store.Set(ctx, key, payload), "Set should not return error")

		got, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, payload, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		key := prefix + ".overwrite"
		require.NoError(t, store.Set(ctx, key, []byte("one")))
		require.NoError(t, store.Set(ctx, key, []byte("two")))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, prefix+".missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Returned bytes are a copy", func(t *testing.T) {
		key := prefix + ".copy"
		require.NoError(t, store.Set(ctx, key, []byte("abc")))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		got[0] = 'z'

		again, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})

	t.Run("Delete", func(t *testing.T) {
		key := prefix + ".delete"
		require.NoError(t, store.Set(ctx, key, []byte("x")))

		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Get after Delete should return ErrNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		k1 := prefix + ".slot.1"
		k2 := prefix + ".slot.2"
		require.NoError(t, store.Set(ctx, k1, []byte("1")))
		require.NoError(t, store.Set(ctx, k2, []byte("2")))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})

	t.Run("Concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("%s.concurrent.%d", prefix, i)
				assert.NoError(t, store.Set(ctx, key, []byte(key)))
			}(i)
		}
		wg.Wait()

		for i := 0; i < 8; i++ {
			key := fmt.Sprintf("%s.concurrent.%d", prefix, i)
			got, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, key, string(got))
		}
	})
}
