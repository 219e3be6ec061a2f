package executors

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"orderexecution/src/broker"
	"orderexecution/src/event"
)

// Listener binds the inbound placement topic to the coordinator. The binding
// happens once at startup via Register; the handler acknowledges an event
// only after the coordinator completed, so a failed unit stays on the broker
// for redelivery.
type Listener struct {
	coordinator *Coordinator
	publisher   broker.Publisher
}

// NewListener wires a listener with its coordinator and the publisher used
// for dead-lettering malformed payloads.
func NewListener(coordinator *Coordinator, publisher broker.Publisher) *Listener {
	return &Listener{
		coordinator: coordinator,
		publisher:   publisher,
	}
}

// Register subscribes the coordinator entry point to the inbound topic.
func (l *Listener) Register(sub broker.Subscriber) {
	sub.Subscribe(event.OrderPlacedTopic, event.ExecutionGroup, l.HandleOrderPlaced)
}

// HandleOrderPlaced processes one delivered message. Malformed payloads are
// dead-lettered and acknowledged so they cannot loop forever; every other
// failure is returned to the broker for redelivery.
func (l *Listener) HandleOrderPlaced(ctx context.Context, msg broker.Message) error {
	placed, err := event.DecodeOrderPlaced(msg.Payload)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"topic": msg.Topic,
			"key":   msg.Key,
		}).WithError(err).Error("Dropping malformed OrderPlacedEvent to dead letter topic")

		if dlqErr := l.publisher.Publish(ctx, broker.Message{
			ID:      msg.ID,
			Topic:   event.OrderPlacedDLQTopic,
			Key:     msg.Key,
			Type:    msg.Type,
			Payload: msg.Payload,
		}); dlqErr != nil {
			logger.WithError(dlqErr).Warn("Failed to dead letter malformed event")
		}

		// Acknowledge regardless: retrying a malformed payload can never succeed.
		return nil
	}

	return l.coordinator.ProcessOrderPlaced(ctx, placed)
}
