package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/toyrobot/pkg/adapters/redis"
	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/aretw0/toyrobot/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StateStore = (*redis.Store)(nil)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunStateStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	now := time.Unix(1_700_000_000, 0)
	store := redis.NewFromClient(client,
		redis.WithTTL(time.Second),
		redis.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()
	sessionID := "session-ttl"

	require.NoError(t, store.Save(ctx, sessionID, &domain.State{
		Location:  domain.Position{X: 2, Y: 3},
		Direction: "WEST",
	}))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Key expiry happens in miniredis; index pruning follows our clock.
	mr.FastForward(2 * time.Second)
	now = now.Add(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-session", &domain.State{Direction: "NORTH"}))

	assert.True(t, mr.Exists("custom:app:session:my-session"), "expected key with custom prefix")
	assert.True(t, mr.Exists("custom:app:index"), "expected index with custom prefix")

	raw, err := mr.Get("custom:app:session:my-session")
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":{"x":0,"y":0},"direction":"NORTH"}`, raw)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"my-session"}, list)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()

	_, err := store.Load(context.Background(), "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_SessionIDsCannotShadowBookkeepingKeys(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, redis.DefaultPrefix)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "alice", time.Minute)
	require.NoError(t, err)
	defer func() { _ = unlock(ctx) }()

	for _, id := range []string{"alice", "index", "lock:alice"} {
		require.NoError(t, store.Save(ctx, id, &domain.State{Direction: "NORTH"}), id)
	}

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "index", "lock:alice"}, sessions)

	assert.True(t, mr.Exists("toyrobot:session:index"))
	assert.True(t, mr.Exists("toyrobot:session:lock:alice"))

	// The lock taken before the saves still belongs to its holder.
	owner, err := mr.Get("toyrobot:lock:alice")
	require.NoError(t, err)
	assert.Len(t, owner, 26, "lock value is the holder's token")

	lockCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(lockCtx, "alice", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "lock must still be held")
}
