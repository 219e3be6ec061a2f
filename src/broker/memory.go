package broker

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
)

var (
	ErrQueueFull     = errors.New("broker queue full")
	ErrBrokerStopped = errors.New("broker stopped")
)

// MemoryBroker is an in-process pub/sub adapter with the delivery contract
// of the external broker this service is deployed against: at-least-once
// delivery, per-key ordering within a consumer group, and redelivery of any
// message whose handler failed.
//
// Each subscription owns a fixed set of partitions. Messages are routed to a
// partition by hashing the key, so all messages for one key are handled by
// one worker in publish order. A failed handler blocks its partition and the
// message is redelivered after a delay, which is exactly the head-of-line
// behavior a per-key-ordered broker gives you.
type MemoryBroker struct {
	cfg Config

	mu      sync.Mutex
	subs    map[string][]*subscription
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type subscription struct {
	topic      string
	group      string
	handler    Handler
	partitions []chan Message
}

// NewMemoryBroker creates a stopped broker with the given settings.
func NewMemoryBroker(cfg Config) *MemoryBroker {
	if cfg.Partitions <= 0 {
		cfg.Partitions = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.RedeliveryDelay <= 0 {
		cfg.RedeliveryDelay = 100 * time.Millisecond
	}
	return &MemoryBroker{
		cfg:  cfg,
		subs: make(map[string][]*subscription),
	}
}

// Subscribe registers a handler for a topic. Must be called before Start.
func (b *MemoryBroker) Subscribe(topic, group string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		panic("broker: Subscribe after Start")
	}

	sub := &subscription{
		topic:      topic,
		group:      group,
		handler:    handler,
		partitions: make([]chan Message, b.cfg.Partitions),
	}
	for i := range sub.partitions {
		sub.partitions[i] = make(chan Message, b.cfg.BufferSize)
	}
	b.subs[topic] = append(b.subs[topic], sub)

	logger.WithFields(map[string]interface{}{
		"topic":      topic,
		"group":      group,
		"partitions": b.cfg.Partitions,
	}).Info("[broker] subscription registered")
}

// Start launches the delivery workers. It returns immediately; workers stop
// when the context is canceled or Stop is called.
func (b *MemoryBroker) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return
	}
	b.started = true

	ctx, b.cancel = context.WithCancel(ctx)
	for _, subs := range b.subs {
		for _, sub := range subs {
			for i, ch := range sub.partitions {
				b.wg.Add(1)
				go b.deliver(ctx, sub, i, ch)
			}
		}
	}
}

// Stop cancels delivery and waits for in-flight handlers to return.
func (b *MemoryBroker) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
}

// Publish routes the message to every subscription on its topic. It never
// blocks: a full partition buffer surfaces as ErrQueueFull so the caller can
// retry, matching the transient publish failure mode of a real broker.
func (b *MemoryBroker) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	subs := b.subs[msg.Topic]
	b.mu.Unlock()

	for _, sub := range subs {
		ch := sub.partitions[partitionFor(msg, len(sub.partitions))]
		select {
		case ch <- msg:
		default:
			return ErrQueueFull
		}
	}
	return nil
}

func (b *MemoryBroker) deliver(ctx context.Context, sub *subscription, partition int, ch <-chan Message) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			b.handleUntilAcked(ctx, sub, partition, msg)
		}
	}
}

// handleUntilAcked redelivers the message until the handler acknowledges it
// or the broker shuts down. Subsequent messages on the partition wait, which
// preserves per-key ordering across redeliveries.
func (b *MemoryBroker) handleUntilAcked(ctx context.Context, sub *subscription, partition int, msg Message) {
	attempt := 0
	for {
		attempt++
		err := sub.handler(ctx, msg)
		if err == nil {
			return
		}

		logger.WithFields(map[string]interface{}{
			"topic":     sub.topic,
			"group":     sub.group,
			"partition": partition,
			"key":       msg.Key,
			"attempt":   attempt,
		}).WithError(err).Warn("[broker] handler failed, message will be redelivered")

		select {
		case <-ctx.Done():
			return
		case <-time.After(b.cfg.RedeliveryDelay):
		}
	}
}

func partitionFor(msg Message, partitions int) int {
	key := msg.Key
	if key == "" {
		key = msg.ID
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(partitions))
}
