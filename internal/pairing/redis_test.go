package pairing

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/petcare/rfid-gateway/internal/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	opts, err := redis.ParseURL("redis://localhost:6379/15") // Use DB 15 for tests
	require.NoError(t, err)

	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available for testing")
	}
	client.FlushDB(ctx)

	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisStore(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	t.Run("start then status", func(t *testing.T) {
		store := NewRedisStore(client, time.Minute)

		_, err := store.Start(ctx, "R1", "A")
		require.NoError(t, err)
		_, err = store.Start(ctx, "R1", "B")
		require.NoError(t, err)

		session, err := store.Status(ctx, "R1")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "B", session.PetID)

		ttl, err := client.TTL(ctx, redisclient.PairingKey("R1")).Result()
		require.NoError(t, err)
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	})

	t.Run("claim is one-shot", func(t *testing.T) {
		store := NewRedisStore(client, time.Minute)
		_, _ = store.Start(ctx, "R2", "P2")

		session, err := store.Claim(ctx, "R2")
		require.NoError(t, err)
		require.NotNil(t, session)
		assert.Equal(t, "P2", session.PetID)

		session, err = store.Claim(ctx, "R2")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("cancel and missing reader", func(t *testing.T) {
		store := NewRedisStore(client, time.Minute)
		_, _ = store.Start(ctx, "R3", "P3")

		require.NoError(t, store.Cancel(ctx, "R3"))
		require.NoError(t, store.Cancel(ctx, "R3"))

		session, err := store.Status(ctx, "R3")
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("session expires with its key", func(t *testing.T) {
		store := NewRedisStore(client, 200*time.Millisecond)
		_, _ = store.Start(ctx, "R4", "P4")

		time.Sleep(300 * time.Millisecond)

		session, err := store.Status(ctx, "R4")
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}
