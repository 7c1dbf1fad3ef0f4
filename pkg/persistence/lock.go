package persistence

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/aretw0/storyloom/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyLocks serializes operations per storage key. Entries are reference
// counted so unused keys do not accumulate.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// storeLocks maps a store to the key locks of every Layer over it, so that
// layers sharing a store (one per session, plus a slot manager) serialize
// writes to the shared slot index.
var storeLocks sync.Map

func locksFor(store ports.KVStore) *keyLocks {
	if store == nil || !reflect.TypeOf(store).Comparable() {
		return &keyLocks{}
	}
	v, _ := storeLocks.LoadOrStore(store, &keyLocks{})
	return v.(*keyLocks)
}

func (k *keyLocks) acquire(key string) *lockEntry {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.locks == nil {
		k.locks = make(map[string]*lockEntry)
	}
	entry, exists := k.locks[key]
	if !exists {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (k *keyLocks) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, exists := k.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(k.locks, key)
	}
}

// withLock runs fn while holding the local lock for key and, when a
// distributed locker is configured, the shared one as well.
func (l *Layer) withLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := l.locks.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.locks.release(key)
	}()

	if l.locker != nil {
		unlock, err := l.locker.Lock(ctx, key, l.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				l.logger.Warn("failed to release distributed lock (will expire via TTL)", "key", key, "error", err)
			}
		}()
	}

	return fn(ctx)
}
