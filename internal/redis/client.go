package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyNamespace prefixes every key the gateway owns so it can share a Redis
// database with other services.
const keyNamespace = "rfid-gateway"

type Client struct {
	*redis.Client
}

// NewClient parses redisURL and verifies the server answers within timeout.
func NewClient(ctx context.Context, redisURL string, timeout time.Duration) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := &Client{redis.NewClient(opts)}

	if err := client.Check(ctx, timeout); err != nil {
		_ = client.Client.Close()
		return nil, err
	}

	return client, nil
}

// Check pings the server, bounded by timeout when it is positive.
func (c *Client) Check(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// PairingKey holds the serialized pairing session of one reader.
func PairingKey(readerID string) string {
	return fmt.Sprintf("%s:pairing:%s", keyNamespace, readerID)
}

// ReadLimitKey holds the sliding-window read log of one reader.
func ReadLimitKey(readerID string) string {
	return fmt.Sprintf("%s:reads:%s", keyNamespace, readerID)
}

// APILimitKey holds the sliding-window request log of one client IP.
func APILimitKey(scope, ip string) string {
	return fmt.Sprintf("%s:api:%s:%s", keyNamespace, scope, ip)
}
