package ports

import "context"

// KVStore is the storage port behind the persistence layer.
// Values are opaque bytes; the persistence layer owns the encoding.
type KVStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}
