package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
)

// DefaultLockTTL is how long a distributed session lock lives before it expires on its own.
const DefaultLockTTL = 30 * time.Second

// errRemoved means the entry was deleted while a caller waited for its lock.
var errRemoved = errors.New("session removed")

// Factory builds the session for a new id.
type Factory func(id string) (*Session, error)

type entry struct {
	mu   sync.Mutex
	sess *Session
}

// Manager owns named sessions and dispatches work on each one serially,
// so multi-client hosts (HTTP, MCP) keep the one-line-at-a-time model.
type Manager struct {
	factory Factory

	mu       sync.Mutex // Global lock for the map
	sessions map[string]*entry

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLocker serializes each session across replicas as well as goroutines.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		m.locker = locker
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithManagerLogger configures a logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager that builds sessions lazily with factory.
func NewManager(factory Factory, opts ...ManagerOption) *Manager {
	m := &Manager{
		factory:  factory,
		sessions: make(map[string]*entry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do runs fn on the session named id, creating it first if needed.
// Calls for the same id never overlap. If the session is deleted while the
// call waits, fn runs on a freshly created one instead.
func (m *Manager) Do(ctx context.Context, id string, fn func(context.Context, *Session) error) error {
	for {
		e, err := m.entry(id, true)
		if err != nil {
			return err
		}
		err = m.withLock(ctx, id, e, fn)
		if !errors.Is(err, errRemoved) {
			return err
		}
		m.logger.Debug("session removed while waiting, retrying", "session_id", id)
	}
}

// Lookup is Do without creation. It returns domain.ErrSessionNotFound for unknown ids.
func (m *Manager) Lookup(ctx context.Context, id string, fn func(context.Context, *Session) error) error {
	e, err := m.entry(id, false)
	if err != nil {
		return err
	}
	return notFound(id, m.withLock(ctx, id, e, fn))
}

// Delete drops a session. In-flight work on it finishes first.
func (m *Manager) Delete(ctx context.Context, id string) error {
	e, err := m.entry(id, false)
	if err != nil {
		return err
	}
	return notFound(id, m.withLock(ctx, id, e, func(context.Context, *Session) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.sessions, id)
		return nil
	}))
}

// List returns the live session ids, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) entry(id string, create bool) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok {
		return e, nil
	}
	if !create {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	sess, err := m.factory(id)
	if err != nil {
		return nil, fmt.Errorf("failed to create session %q: %w", id, err)
	}
	e := &entry{sess: sess}
	m.sessions[id] = e
	m.logger.Debug("session created", "session_id", id)
	return e, nil
}

func notFound(id string, err error) error {
	if errors.Is(err, errRemoved) {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return err
}

// withLock runs fn under e's lock, provided e is still the live entry for id.
func (m *Manager) withLock(ctx context.Context, id string, e *entry, fn func(context.Context, *Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m.mu.Lock()
	live := m.sessions[id] == e
	m.mu.Unlock()
	if !live {
		return errRemoved
	}

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx, e.sess)
}
