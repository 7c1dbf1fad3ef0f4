package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/persistence"
	"github.com/aretw0/storyloom/pkg/ports"
)

// ErrInvalidSessionID is returned for empty session ids.
var ErrInvalidSessionID = errors.New("invalid session id")

// OpenFunc opens (or resumes) the game for a session id.
type OpenFunc func(ctx context.Context, sessionID string) (*storyloom.Game, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	open OpenFunc

	mu    sync.Mutex                 // guards locks and games
	locks map[string]*lockEntry      // active locks
	games map[string]*storyloom.Game // opened sessions

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(m *Manager) {
		m.locker = locker
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Session Manager that opens games with open.
func NewManager(open OpenFunc, opts ...Option) *Manager {
	m := &Manager{
		open:    open,
		locks:   make(map[string]*lockEntry),
		games:   make(map[string]*storyloom.Game),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StoryOpener returns an OpenFunc that plays g for every session. Progress
// is stored under "<baseKey>.session.<id>"; slots are shared under baseKey.
func StoryOpener(g *domain.AuthoringGraph, store ports.KVStore, baseKey string, opts ...storyloom.Option) OpenFunc {
	if baseKey == "" {
		baseKey = persistence.DefaultStorageKey
	}
	return func(ctx context.Context, sessionID string) (*storyloom.Game, error) {
		all := append([]storyloom.Option{
			storyloom.WithStory(g),
			storyloom.WithStore(store),
			storyloom.WithStorageKey(baseKey + ".session." + sessionID),
			storyloom.WithSlotNamespace(baseKey),
		}, opts...)
		return storyloom.Open(ctx, "", all...)
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Open returns the session's game, opening and resuming it on first use.
func (m *Manager) Open(ctx context.Context, sessionID string) (*storyloom.Game, error) {
	var game *storyloom.Game
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		game, err = m.openLocked(ctx, sessionID)
		return err
	})
	return game, err
}

// openLocked must be called while holding the session lock.
func (m *Manager) openLocked(ctx context.Context, sessionID string) (*storyloom.Game, error) {
	m.mu.Lock()
	game, ok := m.games[sessionID]
	m.mu.Unlock()
	if ok {
		return game, nil
	}

	game, err := m.open(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open session %s: %w", sessionID, err)
	}

	m.mu.Lock()
	m.games[sessionID] = game
	m.mu.Unlock()
	m.logger.Info("session opened", "session_id", sessionID, "node", game.State().NodeID)
	return game, nil
}

// Get returns an already opened session.
func (m *Manager) Get(sessionID string) (*storyloom.Game, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	game, ok := m.games[sessionID]
	return game, ok
}

// Do runs fn against the session's game while holding its lock, opening the
// session first if needed.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *storyloom.Game) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		game, err := m.openLocked(ctx, sessionID)
		if err != nil {
			return err
		}
		return fn(ctx, game)
	})
}

// Close forgets an opened session. Its saved progress is kept.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.games, sessionID)
		m.mu.Unlock()
		return nil
	})
}

// Delete forgets a session and clears its saved progress.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		game, err := m.openLocked(ctx, sessionID)
		if err != nil {
			return err
		}
		m.mu.Lock()
		delete(m.games, sessionID)
		m.mu.Unlock()
		return game.Persistence().ClearProgress(ctx)
	})
}

// List returns the ids of opened sessions in lexical order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	if sessionID == "" {
		return ErrInvalidSessionID
	}
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, "session:"+sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
