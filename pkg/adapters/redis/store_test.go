package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/plumedoc/plume/pkg/adapters/redis"
	"github.com/plumedoc/plume/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	conv := domain.NewContext()
	conv.State = domain.StateFillingMissing
	conv.Category = "Contrats"
	conv.BoundVariables["nom"] = "Ada"
	conv.MissingVariables = []string{"montant"}
	require.NoError(t, store.Save(ctx, "s1", conv))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateFillingMissing, loaded.State)
	assert.Equal(t, "Ada", loaded.BoundVariables["nom"])
	assert.Equal(t, []string{"montant"}, loaded.MissingVariables)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_TTLExpiration(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewContext()))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, "s1")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index scores carry wall-clock expiry and prune lazily on List.
	assert.Eventually(t, func() bool {
		sessions, err := store.List(ctx)
		return err == nil && len(sessions) == 0
	}, 3*time.Second, 100*time.Millisecond)
}

func TestRedisStore_ListWithoutTTL(t *testing.T) {
	store, _ := newTestStore(t, redis.WithPrefix("test:session:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.NewContext()))
	require.NoError(t, store.Save(ctx, "b", domain.NewContext()))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, sessions)
}
