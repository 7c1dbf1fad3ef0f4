package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes access to a storage key across processes that
// share the same backend (e.g. several servers on one Redis).
type DistributedLocker interface {
	// Lock blocks until the lock for key is held, the context is canceled,
	// or the implementation gives up. The lock expires after ttl.
	// The returned UnlockFunc MUST be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
