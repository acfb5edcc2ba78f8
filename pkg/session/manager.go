package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"
)

// DefaultTTL is the age after which a session is discarded on its next message.
const DefaultTTL = 30 * time.Minute

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration

	ttl    time.Duration
	now    func() time.Time
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL bounds how long a distributed lock survives a crashed holder.
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

// WithTTL overrides the session expiry age.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLifecycleHooks registers callbacks for session creation and discard.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(userID) after unlocking.
func (m *Manager) acquire(userID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		entry = &lockEntry{}
		m.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, userID)
	}
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// TTL returns the configured expiry age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// GetOrCreate returns the live session of userID. A missing session, or one
// older than the TTL, is replaced by a fresh session at the first step; the
// returned origin tells which case applied. The fresh session is not saved.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (*domain.Session, domain.SessionOrigin, error) {
	now := m.now()

	existing, err := m.store.Load(ctx, userID)
	switch {
	case err == nil:
		if !existing.Expired(now, m.ttl) {
			return existing, domain.SessionResumed, nil
		}
		m.logger.Info("Session expired",
			"user_id", userID,
			"audit_id", existing.AuditID,
			"age", now.Sub(existing.CreatedAt).Round(time.Second),
		)
		if err := m.store.Delete(ctx, userID); err != nil {
			return nil, "", fmt.Errorf("failed to discard expired session: %w", err)
		}
		return m.create(ctx, userID, now, domain.SessionExpired), domain.SessionExpired, nil

	case errors.Is(err, domain.ErrSessionNotFound):
		return m.create(ctx, userID, now, domain.SessionCreated), domain.SessionCreated, nil

	default:
		return nil, "", fmt.Errorf("failed to load session: %w", err)
	}
}

func (m *Manager) create(ctx context.Context, userID string, now time.Time, origin domain.SessionOrigin) *domain.Session {
	sess := domain.NewSession(userID, now)
	m.logger.Debug("Session created", "user_id", userID, "audit_id", sess.AuditID, "origin", origin)
	m.emit(ctx, userID, origin)
	return sess
}

// Restart discards any live session of userID, without export, and returns a fresh one.
func (m *Manager) Restart(ctx context.Context, userID string) (*domain.Session, error) {
	if err := m.store.Delete(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to discard session: %w", err)
	}
	return m.create(ctx, userID, m.now(), domain.SessionRestarted), nil
}

// Put stores the session under its user ID.
func (m *Manager) Put(ctx context.Context, sess *domain.Session) error {
	if err := m.store.Save(ctx, sess.UserID, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session of userID.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	if err := m.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Sweep discards every stored session older than the TTL and returns how
// many were removed. It locks each user in turn.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	users, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	removed := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		err := m.WithLock(ctx, userID, func(ctx context.Context) error {
			sess, err := m.store.Load(ctx, userID)
			if errors.Is(err, domain.ErrSessionNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if !sess.Expired(m.now(), m.ttl) {
				return nil
			}
			if err := m.store.Delete(ctx, userID); err != nil {
				return err
			}
			removed++
			m.emit(ctx, userID, domain.SessionSwept)
			return nil
		})
		if err != nil {
			m.logger.Warn("Sweep skipped session", "user_id", userID, "err", err)
		}
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := m.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				m.logger.Warn("Session sweep failed", "err", err)
				continue
			}
			if n > 0 {
				m.logger.Info("Swept expired sessions", "count", n)
			}
		}
	}
}

// WithLock executes fn while holding the lock for userID.
func (m *Manager) WithLock(ctx context.Context, userID string, fn func(context.Context) error) error {
	entry := m.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(userID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, userID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Release with a fresh context so a canceled turn still frees the key.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"user_id", userID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) emit(ctx context.Context, userID string, origin domain.SessionOrigin) {
	if m.hooks.OnSession == nil {
		return
	}
	m.hooks.OnSession(ctx, &domain.SessionEvent{
		EventBase: domain.EventBase{
			Timestamp: m.now(),
			Type:      domain.EventSession,
			UserID:    userID,
		},
		Origin: origin,
	})
}
