// Package broker is the message transport between readers and the gateway.
package broker

import "context"

type Message struct {
	Topic   string
	Payload []byte
}

// Handler processes one delivery. Implementations must not block the bus for
// longer than a single request.
type Handler func(ctx context.Context, msg Message)

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type Subscriber interface {
	// Subscribe registers handler for every topic matching one of the glob
	// patterns. It returns once the subscription is active.
	Subscribe(ctx context.Context, patterns []string, handler Handler) error
}
