package broker

import "context"

// Message is one keyed event on a named topic. Key is the partition key:
// messages sharing a key are delivered in publish order. Type is the payload
// discriminator so heterogeneous consumers can dispatch on schema, and ID is
// a deterministic dedup key for downstream consumers.
type Message struct {
	ID      string
	Topic   string
	Key     string
	Type    string
	Payload []byte
}

// Handler processes one delivered message. Returning nil acknowledges the
// message; returning an error leaves it for redelivery.
type Handler func(ctx context.Context, msg Message) error

// Publisher delivers keyed messages to a topic, at least once.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Subscriber binds a handler to a topic for a named consumer group.
// Bindings are registered explicitly at process startup, before the broker
// starts delivering.
type Subscriber interface {
	Subscribe(topic, group string, handler Handler)
}
