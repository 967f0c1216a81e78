package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/toyrobot/pkg/adapters/memory"
	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/aretw0/toyrobot/pkg/persistence/middleware"
	"github.com/aretw0/toyrobot/pkg/ports"
	"github.com/aretw0/toyrobot/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// SlowStore simulates latency to provoke lost updates if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, sessionID, state)
}

func (s SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

func place(x, y int, dir domain.Direction) func(*domain.Robot) error {
	return func(r *domain.Robot) error {
		if !r.Place(domain.Position{X: x, Y: y}, dir) {
			return domain.ErrOutOfBounds
		}
		return nil
	}
}

func TestManager_StartAndExecute(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	err := mgr.Execute(ctx, "s1", func(*domain.Robot) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, mgr.Start(ctx, "s1", place(1, 2, domain.East)))
	require.NoError(t, mgr.Execute(ctx, "s1", func(r *domain.Robot) error {
		r.Move()
		r.Left()
		return nil
	}))

	state, err := mgr.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.State{Location: domain.Position{X: 2, Y: 2}, Direction: "NORTH"}, *state)
}

func TestManager_StartWithoutPlacementStoresNothing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, mgr.Start(ctx, "idle", func(r *domain.Robot) error {
		r.Move()
		return nil
	}))

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManager_FailedMutationIsNotSaved(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, mgr.Start(ctx, "s", place(0, 0, domain.North)))

	boom := errors.New("boom")
	err := mgr.Execute(ctx, "s", func(r *domain.Robot) error {
		r.Move()
		return boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := mgr.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 0, Y: 0}, state.Location)
}

func TestManager_ExecuteRejectsOutOfBoundsState(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store, session.WithGrid(domain.Grid{Width: 3, Height: 3}))
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "big", &domain.State{Location: domain.Position{X: 4, Y: 4}, Direction: "NORTH"}))

	err := mgr.Execute(ctx, "big", func(*domain.Robot) error { return nil })
	assert.ErrorIs(t, err, domain.ErrOutOfBounds)

	// Start replaces the unreadable state with a fresh robot.
	require.NoError(t, mgr.Start(ctx, "big", place(2, 2, domain.South)))
	state, err := mgr.Load(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, "SOUTH", state.Direction)
}

func TestManager_ExecuteSerializesPerSession(t *testing.T) {
	store := SlowStore{memory.NewStore()}
	mgr := session.NewManager(store, session.WithGrid(domain.Grid{Width: 1, Height: 20}))
	ctx := context.Background()
	require.NoError(t, mgr.Start(ctx, "race", place(0, 0, domain.North)))

	const moves = 10
	var wg sync.WaitGroup
	for i := 0; i < moves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, mgr.Execute(ctx, "race", func(r *domain.Robot) error {
				r.Move()
				return nil
			}))
		}()
	}
	wg.Wait()

	state, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Equal(t, moves, state.Location.Y, "every move must survive")
}

type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	lastTTL  time.Duration
	failWith error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.locks++
	l.lastTTL = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	mgr := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	require.NoError(t, mgr.Start(ctx, "d", place(0, 0, domain.North)))
	_, err := mgr.Load(ctx, "d")
	require.NoError(t, err)

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.lastTTL)

	locker.failWith = errors.New("redis down")
	err = mgr.Execute(ctx, "d", func(*domain.Robot) error { return nil })
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}

func TestNewID(t *testing.T) {
	a, b := session.NewID(), session.NewID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func sealed(t *testing.T, store ports.StateStore, secret string) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.ConfigFromSecrets(secret))
	require.NoError(t, err)
	return middleware.Chain(store, mw)
}

func TestManager_StartReplacesStateSealedWithRetiredKey(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()

	before := session.NewManager(sealed(t, underlying, "old"))
	require.NoError(t, before.Start(ctx, "s1", place(3, 3, domain.West)))

	after := session.NewManager(sealed(t, underlying, "new"))

	err := after.Execute(ctx, "s1", func(*domain.Robot) error { return nil })
	assert.ErrorIs(t, err, domain.ErrUnreadableState)

	var placedFresh bool
	require.NoError(t, after.Start(ctx, "s1", func(r *domain.Robot) error {
		placedFresh = !r.Placed()
		return place(0, 0, domain.North)(r)
	}))
	assert.True(t, placedFresh, "unreadable state starts an unplaced robot")

	state, err := after.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.State{Direction: "NORTH"}, *state)
}

// brokenStore fails every read like an unreachable backend.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) Load(context.Context, string) (*domain.State, error) {
	return nil, errors.New("connection refused")
}

func TestManager_StartSurfacesStoreFailures(t *testing.T) {
	mgr := session.NewManager(brokenStore{memory.NewStore()})
	err := mgr.Start(context.Background(), "s1", place(0, 0, domain.North))
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, domain.ErrUnreadableState)
}

func TestValidID(t *testing.T) {
	assert.True(t, session.ValidID(session.NewID()))
	for _, id := range []string{"", "index", "lock:01ARZ3NDEKTSV4RRFFQ69G5FAV", "../etc", "01ARZ3NDEKTSV4RRFFQ69G5FA"} {
		assert.False(t, session.ValidID(id), id)
	}
}
