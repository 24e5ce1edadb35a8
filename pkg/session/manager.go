package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/plumedoc/plume/internal/logging"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/plumedoc/plume/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to conversation contexts, one lock per session.
// Locks are reference-counted so the map does not grow with dead sessions.
type Manager struct {
	store ports.ContextStore

	mu    sync.Mutex // guards the lock map
	locks map[string]*lockEntry

	locker ports.DistributedLocker // optional, for multi-replica setups
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a session manager over the given context store.
func NewManager(store ports.ContextStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock entry.mu and call release(sessionID) after unlocking.
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

// release decrements the reference count and drops the entry at zero.
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

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Load retrieves an existing session's context.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.ConversationContext, error) {
	var conv *domain.ConversationContext
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		conv, err = m.store.Load(ctx, sessionID)
		return err
	})
	return conv, err
}

// Update runs fn on the session's context under its lock, creating a fresh
// Initial context if the session does not exist yet, and persists the result
// when fn succeeds.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*domain.ConversationContext) error) (*domain.ConversationContext, error) {
	var conv *domain.ConversationContext
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		conv, err = m.store.Load(ctx, sessionID)
		if err == domain.ErrSessionNotFound {
			conv = domain.NewContext()
			err = nil
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if err := fn(conv); err != nil {
			return err
		}
		return m.store.Save(ctx, sessionID, conv)
	})
	return conv, err
}

// Reset discards the session's context and installs a fresh Initial one. The
// new context carries an incremented version so results of in-flight work
// started against the old context are discarded when they land.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		version := 0
		if old, err := m.store.Load(ctx, sessionID); err == nil {
			version = old.Version
		}
		fresh := domain.NewContext()
		fresh.Version = version + 1
		return m.store.Save(ctx, sessionID, fresh)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying context store.
func (m *Manager) Store() ports.ContextStore {
	return m.store
}
