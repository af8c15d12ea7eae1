package pairing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petcare/rfid-gateway/internal/model"
	redisclient "github.com/petcare/rfid-gateway/internal/redis"
)

// RedisStore shares pairing sessions between gateway instances. Each session
// is a key whose TTL is set once at creation, so the timeout is measured from
// creation and Redis performs the eviction.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
	now     func() time.Time
}

func NewRedisStore(client *redis.Client, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RedisStore{
		client:  client,
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *RedisStore) Timeout() time.Duration {
	return s.timeout
}

func (s *RedisStore) Start(ctx context.Context, readerID, petID string) (*model.PairingSession, error) {
	session := model.PairingSession{
		ReaderID:  readerID,
		PetID:     petID,
		CreatedAt: s.now(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal pairing session: %w", err)
	}

	if err := s.client.Set(ctx, redisclient.PairingKey(readerID), data, s.timeout).Err(); err != nil {
		return nil, fmt.Errorf("store pairing session: %w", err)
	}

	return &session, nil
}

func (s *RedisStore) Cancel(ctx context.Context, readerID string) error {
	if err := s.client.Del(ctx, redisclient.PairingKey(readerID)).Err(); err != nil {
		return fmt.Errorf("delete pairing session: %w", err)
	}
	return nil
}

func (s *RedisStore) Status(ctx context.Context, readerID string) (*model.PairingSession, error) {
	data, err := s.client.Get(ctx, redisclient.PairingKey(readerID)).Bytes()
	return decodeSession(data, err)
}

func (s *RedisStore) Claim(ctx context.Context, readerID string) (*model.PairingSession, error) {
	data, err := s.client.GetDel(ctx, redisclient.PairingKey(readerID)).Bytes()
	return decodeSession(data, err)
}

// Sweep is a no-op: Redis expires session keys itself.
func (s *RedisStore) Sweep(ctx context.Context) (int64, error) {
	return 0, nil
}

func decodeSession(data []byte, err error) (*model.PairingSession, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pairing session: %w", err)
	}

	var session model.PairingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal pairing session: %w", err)
	}
	return &session, nil
}
