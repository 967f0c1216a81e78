package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/toyrobot/internal/logging"
	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/aretw0/toyrobot/pkg/ports"
	"github.com/oklog/ulid/v2"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// NewID returns a fresh, lexically sortable session ID.
func NewID() string {
	return ulid.Make().String()
}

// ValidID reports whether id is a session ID issued by NewID.
// Adapters use it to refuse client-chosen IDs.
func ValidID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore
	grid  domain.Grid

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active per-session locks

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithGrid sets the table robots are restored onto (default 5x5).
func WithGrid(grid domain.Grid) Option {
	return func(m *Manager) {
		m.grid = grid
	}
}

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock lease.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		grid:    domain.DefaultGrid(),
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(sessionID) after unlocking.
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

// Execute restores the robot of an existing session, hands it to fn and stores
// the result. The state is saved only if fn succeeds and the robot is placed.
// Unknown sessions yield domain.ErrSessionNotFound.
func (m *Manager) Execute(ctx context.Context, sessionID string, fn func(*domain.Robot) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		robot, err := domain.Restore(m.grid, *state)
		if err != nil {
			return fmt.Errorf("failed to restore session %s: %w", sessionID, err)
		}
		return m.apply(ctx, sessionID, robot, fn)
	})
}

// Start is like Execute but does not require the session to exist: unknown
// sessions start with an unplaced robot, so fn is typically a PLACE.
// A stored state that cannot be decoded or restored is discarded the same way.
// Nothing is stored while the robot stays unplaced.
func (m *Manager) Start(ctx context.Context, sessionID string, fn func(*domain.Robot) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		robot := domain.NewRobot(m.grid)

		state, err := m.store.Load(ctx, sessionID)
		switch {
		case err == nil:
			if restored, rerr := domain.Restore(m.grid, *state); rerr == nil {
				robot = restored
			} else {
				m.logger.Warn("discarding unreadable session state",
					"session_id", sessionID,
					"err", rerr,
				)
			}
		case errors.Is(err, domain.ErrUnreadableState):
			m.logger.Warn("discarding unreadable session state",
				"session_id", sessionID,
				"err", err,
			)
		case !errors.Is(err, domain.ErrSessionNotFound):
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		return m.apply(ctx, sessionID, robot, fn)
	})
}

func (m *Manager) apply(ctx context.Context, sessionID string, robot *domain.Robot, fn func(*domain.Robot) error) error {
	if err := fn(robot); err != nil {
		return err
	}
	state, err := robot.Dump()
	if errors.Is(err, domain.ErrUnplaced) {
		return nil
	}
	if err != nil {
		return err
	}
	return m.store.Save(ctx, sessionID, &state)
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// Save persists the session state.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
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

// Grid returns the table robots are restored onto.
func (m *Manager) Grid() domain.Grid {
	return m.grid
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
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
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
