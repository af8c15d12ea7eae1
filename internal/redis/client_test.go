package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "rfid-gateway:pairing:reader-1", PairingKey("reader-1"))
	assert.Equal(t, "rfid-gateway:reads:reader-1", ReadLimitKey("reader-1"))
	assert.Equal(t, "rfid-gateway:api:rest:10.0.0.1", APILimitKey("rest", "10.0.0.1"))
}

func TestNewClient(t *testing.T) {
	t.Run("invalid url", func(t *testing.T) {
		_, err := NewClient(context.Background(), "not-a-url", time.Second)
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := NewClient(context.Background(), "redis://127.0.0.1:1/0", 200*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping redis")
	})

	t.Run("live server", func(t *testing.T) {
		client, err := NewClient(context.Background(), "redis://localhost:6379/15", time.Second)
		if err != nil {
			t.Skip("Redis not available for testing")
		}
		defer client.Close()

		assert.NoError(t, client.Check(context.Background(), 0))
	})
}
