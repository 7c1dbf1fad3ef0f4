package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/ports"
	"github.com/google/uuid"
)

// DefaultStorageKey is the key prefix used when none is configured.
const DefaultStorageKey = "storyloom.progress"

// Layer is the persistence layer for one story. It is safe for concurrent
// use; operations on the same key are serialized.
type Layer struct {
	store ports.KVStore
	graph *domain.RuntimeGraph

	key      string
	slotNS   string
	maxSlots int
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	now      func() time.Time
	newID    func() string

	locks *keyLocks
}

// Option configures the Layer.
type Option func(*Layer)

// WithStorageKey sets the prefix every key derives from.
func WithStorageKey(key string) Option {
	return func(l *Layer) {
		if key != "" {
			l.key = key
		}
	}
}

// WithSlotNamespace sets the prefix slot keys derive from, so several
// progress keys can share one set of save slots. Defaults to the storage key.
func WithSlotNamespace(prefix string) Option {
	return func(l *Layer) {
		l.slotNS = prefix
	}
}

// WithMaxSlots sets the inventory capacity given to records that lack one.
func WithMaxSlots(n int) Option {
	return func(l *Layer) {
		if n > 0 {
			l.maxSlots = n
		}
	}
}

// WithLocker enables distributed locking around every write.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(l *Layer) {
		l.locker = locker
		if ttl > 0 {
			l.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Layer.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Layer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLifecycleHooks registers the OnPersist hook.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Layer) {
		l.hooks = hooks
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Layer) {
		l.now = now
	}
}

// WithIDGenerator overrides the slot id generator, for tests.
func WithIDGenerator(gen func() string) Option {
	return func(l *Layer) {
		l.newID = gen
	}
}

// New creates a persistence layer that stores progress for graph in store.
func New(store ports.KVStore, graph *domain.RuntimeGraph, opts ...Option) *Layer {
	l := &Layer{
		store:    store,
		graph:    graph,
		key:      DefaultStorageKey,
		maxSlots: domain.DefaultMaxSlots,
		lockTTL:  30 * time.Second,
		logger:   logging.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.graph == nil {
		l.graph = &domain.RuntimeGraph{Nodes: map[string]domain.RuntimeNode{}}
	}
	if l.slotNS == "" {
		l.slotNS = l.key
	}
	l.locks = locksFor(store)
	return l
}

// ProgressKey is the key of the current progress record.
func (l *Layer) ProgressKey() string { return l.key + ".v2" }

// LegacyKey is the key older versions stored progress under.
func (l *Layer) LegacyKey() string { return l.key }

func (l *Layer) slotIndexKey() string { return l.slotNS + ".slots" }

func (l *Layer) slotKey(id string) string { return l.slotNS + ".slot." + id }

// get reads key. A missing key is returned as domain.ErrNotFound; any other
// store failure as a *domain.PersistError.
func (l *Layer) get(ctx context.Context, key string) ([]byte, error) {
	data, err := l.store.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return nil, &domain.PersistError{Op: "load", Key: key, Err: err}
}

func (l *Layer) put(ctx context.Context, key string, data []byte) error {
	start := l.now()
	err := l.store.Set(ctx, key, data)
	l.emitPersist(ctx, "save", key, start, err)
	if err != nil {
		return &domain.PersistError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func (l *Layer) del(ctx context.Context, key string) error {
	start := l.now()
	err := l.store.Delete(ctx, key)
	l.emitPersist(ctx, "delete", key, start, err)
	if err != nil {
		return &domain.PersistError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (l *Layer) emitPersist(ctx context.Context, op, key string, start time.Time, err error) {
	if l.hooks.OnPersist == nil {
		return
	}
	l.hooks.OnPersist(ctx, &domain.PersistEvent{
		EventBase: domain.EventBase{Timestamp: l.now(), Type: domain.EventPersist},
		Op:        op,
		Key:       key,
		Duration:  l.now().Sub(start),
		Err:       err,
	})
}
