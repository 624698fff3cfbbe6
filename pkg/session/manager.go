package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager orchestrates per-question config access. Link transitions are
// read-modify-write over one DynamicOptionsConfig, so writes against the same
// question must be serialized; the Manager provides that serialization.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ConfigStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	logger *slog.Logger            // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session Manager with the given persistence store.
func NewManager(store ports.ConfigStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(questionID) after unlocking.
func (m *Manager) acquire(questionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[questionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[questionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(questionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[questionID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, questionID)
	}
}

// Load retrieves a question's config from the store.
func (m *Manager) Load(ctx context.Context, questionID string) (*domain.DynamicOptionsConfig, error) {
	var cfg *domain.DynamicOptionsConfig
	err := m.WithLock(ctx, questionID, func(ctx context.Context) error {
		var err error
		cfg, err = m.store.Load(ctx, questionID)
		return err
	})
	return cfg, err
}

// Save persists a question's config.
func (m *Manager) Save(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig) error {
	return m.WithLock(ctx, questionID, func(ctx context.Context) error {
		return m.store.Save(ctx, questionID, cfg)
	})
}

// Delete removes a question's config from the store.
func (m *Manager) Delete(ctx context.Context, questionID string) error {
	return m.WithLock(ctx, questionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, questionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying config store.
func (m *Manager) Store() ports.ConfigStore {
	return m.store
}

// Update loads the latest config, applies fn to it, and persists fn's result,
// all under the question's lock. fn returning an error aborts the update with
// nothing written.
func (m *Manager) Update(ctx context.Context, questionID string, fn func(context.Context, *domain.DynamicOptionsConfig) (*domain.DynamicOptionsConfig, error)) error {
	return m.WithLock(ctx, questionID, func(ctx context.Context) error {
		cfg, err := m.store.Load(ctx, questionID)
		if err != nil {
			return err
		}
		next, err := fn(ctx, cfg)
		if err != nil {
			return err
		}
		return m.store.Save(ctx, questionID, next)
	})
}

// WithLock executes a function while holding the lock for the question.
func (m *Manager) WithLock(ctx context.Context, questionID string, fn func(context.Context) error) error {
	entry := m.acquire(questionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(questionID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, questionID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"question_id", questionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
