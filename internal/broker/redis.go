package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisBus carries reader traffic over Redis pub/sub. Every delivery is
// handled on its own goroutine.
type RedisBus struct {
	client *redis.Client

	mu     sync.Mutex
	subs   []*redis.PubSub
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

func NewRedisBus(client *redis.Client) *RedisBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisBus{
		client: client,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, patterns []string, handler Handler) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("bus closed")
	}
	b.mu.Unlock()

	pubsub := b.client.PSubscribe(b.ctx, patterns...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("psubscribe %v: %w", patterns, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, pubsub)
	b.mu.Unlock()

	log.Info().Strs("patterns", patterns).Msg("bus subscribed")

	b.wg.Add(1)
	go b.receive(pubsub, handler)
	return nil
}

func (b *RedisBus) receive(pubsub *redis.PubSub, handler Handler) {
	defer b.wg.Done()

	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			b.wg.Add(1)
			go func(m Message) {
				defer b.wg.Done()
				handler(b.ctx, m)
			}(Message{Topic: msg.Channel, Payload: []byte(msg.Payload)})
		}
	}
}

// Close stops all subscriptions and waits for in-flight handlers.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	b.cancel()

	var firstErr error
	for _, sub := range subs {
		if err := sub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	b.wg.Wait()
	return firstErr
}
