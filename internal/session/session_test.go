package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivethru-dialogue/internal/common/database"
	"drivethru-dialogue/internal/common/logger"
	"drivethru-dialogue/internal/models"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "session", 30*time.Minute, logger.NewTestLogger(t)), mr
}

func TestRedisStore_MissingSessionReadsAsIdle(t *testing.T) {
	store, _ := newTestStore(t)

	state, err := store.GetState(context.Background(), "never-seen")

	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, state)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetState(ctx, "drive-1", models.StateOrdering))

	state, err := store.GetState(ctx, "drive-1")
	require.NoError(t, err)
	assert.Equal(t, models.StateOrdering, state)
}

func TestRedisStore_KeyLayoutAndTTL(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, store.SetState(context.Background(), "drive-2", models.StateConfirming))

	require.True(t, mr.Exists("session:drive-2:state"))
	value, err := mr.Get("session:drive-2:state")
	require.NoError(t, err)
	assert.Equal(t, "confirming", value)
	assert.Equal(t, 30*time.Minute, mr.TTL("session:drive-2:state"))
}

func TestRedisStore_ExpiredSessionStartsOver(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetState(ctx, "drive-3", models.StateClosing))
	mr.FastForward(31 * time.Minute)

	state, err := store.GetState(ctx, "drive-3")
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, state)
}

func TestRedisStore_CorruptedValueReadsAsIdle(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set("session:drive-4:state", "banana"))

	state, err := store.GetState(context.Background(), "drive-4")
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, state)
}

func TestRedisStore_SessionsAreIndependent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetState(ctx, "a", models.StateOrdering))
	require.NoError(t, store.SetState(ctx, "b", models.StateConfirming))

	stateA, err := store.GetState(ctx, "a")
	require.NoError(t, err)
	stateB, err := store.GetState(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, models.StateOrdering, stateA)
	assert.Equal(t, models.StateConfirming, stateB)
}
