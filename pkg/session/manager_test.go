package session_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifecaf/triagebot/pkg/adapters/memory"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"
	"github.com/unifecaf/triagebot/pkg/session"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) Save(ctx context.Context, userID string, sess *domain.Session) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, userID, sess)
}

func (s *SlowStore) Load(ctx context.Context, userID string) (*domain.Session, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, userID)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 5, 10, 14, 0, 0, 0, time.UTC)}
}

func TestManager_WithLockSerializesTurns(t *testing.T) {
	store := &SlowStore{Store: memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	userID := "race-test"

	const turns = 20
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, userID, func(ctx context.Context) error {
				sess, _, err := manager.GetOrCreate(ctx, userID)
				if err != nil {
					return err
				}
				n, _ := strconv.Atoi(sess.Attributes.ValueOr("count", "0"))
				sess.Attributes.Set("count", strconv.Itoa(n+1))
				return manager.Put(ctx, sess)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, err := store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(turns), sess.Attributes.ValueOr("count", ""), "no read-modify-write may be lost")
}

func TestManager_GetOrCreate(t *testing.T) {
	clock := newClock()
	store := memory.NewStore()
	manager := session.NewManager(store, session.WithClock(clock.Now))
	ctx := context.Background()

	sess, origin, err := manager.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCreated, origin)
	assert.Equal(t, domain.StepAskRole, sess.Step)
	assert.Equal(t, clock.Now(), sess.CreatedAt)

	_, err = store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "fresh sessions are stored by the caller")

	sess.Step = domain.StepFinancialMenu
	require.NoError(t, manager.Put(ctx, sess))

	clock.Advance(10 * time.Minute)
	again, origin, err := manager.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionResumed, origin)
	assert.Equal(t, domain.StepFinancialMenu, again.Step)
	assert.Equal(t, sess.AuditID, again.AuditID)
}

func TestManager_Expiry(t *testing.T) {
	for _, step := range domain.Steps() {
		t.Run(step.String(), func(t *testing.T) {
			clock := newClock()
			store := memory.NewStore()
			manager := session.NewManager(store, session.WithClock(clock.Now))
			ctx := context.Background()

			old := domain.NewSession("u1", clock.Now())
			old.Step = step
			old.Attributes.Set(domain.KeyStudentID, "999")
			require.NoError(t, manager.Put(ctx, old))

			clock.Advance(session.DefaultTTL + time.Second)

			fresh, origin, err := manager.GetOrCreate(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, domain.SessionExpired, origin)
			assert.Equal(t, domain.StepAskRole, fresh.Step)
			assert.Zero(t, fresh.Attributes.Len())
			assert.NotEqual(t, old.AuditID, fresh.AuditID)

			_, err = store.Load(ctx, "u1")
			assert.ErrorIs(t, err, domain.ErrSessionNotFound, "stale session should be discarded")
		})
	}
}

func TestManager_ExpiryBoundary(t *testing.T) {
	clock := newClock()
	manager := session.NewManager(memory.NewStore(), session.WithClock(clock.Now))
	ctx := context.Background()

	sess, _, err := manager.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, manager.Put(ctx, sess))

	clock.Advance(session.DefaultTTL)
	_, origin, err := manager.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionResumed, origin, "exactly 30 minutes is not yet expired")
}

func TestManager_Restart(t *testing.T) {
	var events []domain.SessionOrigin
	hooks := domain.LifecycleHooks{
		OnSession: func(_ context.Context, e *domain.SessionEvent) {
			events = append(events, e.Origin)
		},
	}
	store := memory.NewStore()
	manager := session.NewManager(store, session.WithLifecycleHooks(hooks))
	ctx := context.Background()

	sess, _, err := manager.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	sess.Step = domain.StepDocsMenu
	require.NoError(t, manager.Put(ctx, sess))

	fresh, err := manager.Restart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepAskRole, fresh.Step)
	assert.NotEqual(t, sess.AuditID, fresh.AuditID)

	_, err = store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, []domain.SessionOrigin{domain.SessionCreated, domain.SessionRestarted}, events)
}

func TestManager_Sweep(t *testing.T) {
	clock := newClock()
	store := memory.NewStore()
	manager := session.NewManager(store, session.WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, manager.Put(ctx, domain.NewSession("old", clock.Now())))
	clock.Advance(20 * time.Minute)
	require.NoError(t, manager.Put(ctx, domain.NewSession("young", clock.Now())))
	clock.Advance(11 * time.Minute)

	removed, err := manager.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"young"}, users)
}

func TestManager_RunSweeperStopsOnCancel(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- manager.RunSweeper(ctx, 5*time.Millisecond) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

// failingStore fails every load with a backend error.
type failingStore struct{ *memory.Store }

func (failingStore) Load(context.Context, string) (*domain.Session, error) {
	return nil, errors.New("connection refused")
}

func TestManager_GetOrCreateStoreFailure(t *testing.T) {
	manager := session.NewManager(failingStore{memory.NewStore()})
	_, _, err := manager.GetOrCreate(context.Background(), "u1")
	assert.ErrorContains(t, err, "connection refused")
}

// recordingLocker counts lock/unlock pairs.
type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked int
}

func (l *recordingLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.unlocked++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))

	err := manager.WithLock(context.Background(), "u1", func(context.Context) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, []string{"u1"}, locker.locked)
	assert.Equal(t, 1, locker.unlocked)
}
