package cache

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

var storeNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(logger.Discard())
	store.now = func() time.Time { return storeNow }

	live := &entities.Session{Token: "live", UserID: "u1", ExpiresAt: storeNow.Add(time.Hour)}
	stale := &entities.Session{Token: "stale", UserID: "u2", ExpiresAt: storeNow.Add(-time.Second)}
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, stale))

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := store.Get(ctx, "live")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)

		got.UserID = "changed"
		again, _ := store.Get(ctx, "live")
		assert.Equal(t, "u1", again.UserID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, entities.ErrSessionNotFound)
	})

	t.Run("update existing", func(t *testing.T) {
		renamed := *live
		renamed.FullName = "Asha Kulkarni"
		require.NoError(t, store.Update(ctx, &renamed))

		got, err := store.Get(ctx, "live")
		require.NoError(t, err)
		assert.Equal(t, "Asha Kulkarni", got.FullName)
	})

	t.Run("update does not recreate", func(t *testing.T) {
		err := store.Update(ctx, &entities.Session{Token: "logged-out", UserID: "u3", ExpiresAt: storeNow.Add(time.Hour)})
		assert.ErrorIs(t, err, entities.ErrSessionNotFound)
		_, err = store.Get(ctx, "logged-out")
		assert.ErrorIs(t, err, entities.ErrSessionNotFound)
	})

	t.Run("cleanup removes expired only", func(t *testing.T) {
		removed, err := store.CleanupExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "live"))
		require.NoError(t, store.Delete(ctx, "live"))
		assert.Equal(t, 0, store.Len())
	})

	assert.NoError(t, store.HealthCheck(ctx))
	assert.NoError(t, store.Close())
}

func TestMemorySessionStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := strconv.Itoa(i)
			store.Save(ctx, &entities.Session{Token: token, ExpiresAt: time.Now().Add(time.Minute)})
			store.Get(ctx, token)
			store.CleanupExpired(ctx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}

func unreachableRedis() *RedisSessionStore {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	return newRedisSessionStore(client, "", logger.Discard())
}

func TestRedisSessionStore_Offline(t *testing.T) {
	ctx := context.Background()
	store := unreachableRedis()
	defer store.Close()

	assert.Equal(t, "cropsmart:session:abc", store.key("abc"))

	_, err := store.Get(ctx, "abc")
	assert.ErrorContains(t, err, "failed to get session from Redis")
	assert.False(t, errors.Is(err, entities.ErrSessionNotFound))

	err = store.Save(ctx, &entities.Session{Token: "abc", ExpiresAt: time.Now().Add(time.Minute)})
	assert.ErrorContains(t, err, "failed to set session in Redis")

	err = store.Update(ctx, &entities.Session{Token: "abc", ExpiresAt: time.Now().Add(time.Minute)})
	assert.ErrorContains(t, err, "failed to update session in Redis")

	assert.ErrorContains(t, store.HealthCheck(ctx), "redis health check failed")

	removed, err := store.CleanupExpired(ctx)
	assert.NoError(t, err)
	assert.Zero(t, removed)
}

func TestNewRedisSessionStore_ConnectFailure(t *testing.T) {
	_, err := NewRedisSessionStore(RedisConfig{Host: "127.0.0.1", Port: 1}, logger.Discard())
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

// Runs against a real server when REDIS_TEST_HOST is set.
func TestRedisSessionStore_Live(t *testing.T) {
	host := os.Getenv("REDIS_TEST_HOST")
	if host == "" {
		t.Skip("REDIS_TEST_HOST not set")
	}

	ctx := context.Background()
	store, err := NewRedisSessionStore(RedisConfig{Host: host, Port: 6379, KeyPrefix: "cropsmart:test:"}, logger.Discard())
	require.NoError(t, err)
	defer store.Close()

	session := &entities.Session{Token: "live-test", UserID: "u1", FullName: "Asha Patil", ExpiresAt: time.Now().Add(time.Minute).UTC().Truncate(time.Second)}
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "live-test")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	ttl, err := store.client.TTL(ctx, store.key("live-test")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	session.FullName = "Asha Kulkarni"
	require.NoError(t, store.Update(ctx, session))
	got, err = store.Get(ctx, "live-test")
	require.NoError(t, err)
	assert.Equal(t, "Asha Kulkarni", got.FullName)

	require.NoError(t, store.Delete(ctx, "live-test"))
	assert.ErrorIs(t, store.Update(ctx, session), entities.ErrSessionNotFound)
	_, err = store.Get(ctx, "live-test")
	assert.ErrorIs(t, err, entities.ErrSessionNotFound)

	expired := &entities.Session{Token: "gone", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, store.Save(ctx, expired))
	_, err = store.Get(ctx, "gone")
	assert.ErrorIs(t, err, entities.ErrSessionNotFound)
}
