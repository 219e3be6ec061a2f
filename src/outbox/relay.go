package outbox

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"orderexecution/src/broker"
	"orderexecution/src/model"
	"orderexecution/src/repository"
)

// Relay drains pending outbox rows and publishes them to the broker,
// at least once. A row is marked published only after the broker accepted
// the message; if the process dies between publish and mark, the next drain
// publishes the row again and downstream consumers discard the duplicate by
// its deterministic message ID.
type Relay struct {
	outbox    *repository.OutboxRepository
	publisher broker.Publisher
	cfg       Config
}

// NewRelay wires a relay with its repository and publisher.
func NewRelay(outbox *repository.OutboxRepository, publisher broker.Publisher, cfg Config) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Run drains the outbox on an interval until the context is canceled.
// Storage outages are logged and retried on the next tick.
func (r *Relay) Run(ctx context.Context) {
	logger.WithFields(map[string]interface{}{
		"interval":   r.cfg.Interval.String(),
		"batch_size": r.cfg.BatchSize,
	}).Info("[outbox] relay started")

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("[outbox] relay stopped")
			return

		case <-ticker.C:
			if err := r.DrainOnce(ctx); err != nil {
				logger.WithError(err).Error("[outbox] drain failed, will retry on next tick")
			}
		}
	}
}

// DrainOnce publishes one batch of pending rows in creation order. The drain
// stops at the first publish failure instead of skipping ahead, so two
// events for the same ticker can never reach the broker out of order.
func (r *Relay) DrainOnce(ctx context.Context) error {
	events, err := r.outbox.FindPending(ctx, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for i := range events {
		row := &events[i]

		err := r.publisher.Publish(ctx, broker.Message{
			ID:      row.ID,
			Topic:   row.Topic,
			Key:     row.Key,
			Type:    row.EventType,
			Payload: row.Payload,
		})
		if err != nil {
			// Log the stored counter, not a local guess: if the increment
			// fails the row still holds the old value.
			attempts := row.Attempts
			if attemptErr := r.outbox.IncrementAttempts(ctx, row.ID); attemptErr != nil {
				logger.WithError(attemptErr).Error("[outbox] failed to record publish attempt")
			} else {
				attempts++
			}

			entry := logger.WithFields(map[string]interface{}{
				"event_id": row.ID,
				"order_id": row.OrderID,
				"topic":    row.Topic,
				"attempts": attempts,
			}).WithError(err)

			if r.cfg.WarnAttempts > 0 && attempts >= r.cfg.WarnAttempts {
				entry.Warn("[outbox] event still unpublished after repeated attempts")
			} else {
				entry.Info("[outbox] publish failed, event stays pending")
			}

			return model.ErrPublishFailure
		}

		if err := r.outbox.MarkPublished(ctx, row.ID); err != nil {
			// The message is already out; the row stays pending and will be
			// republished. Downstream dedup absorbs the duplicate.
			return err
		}

		logger.WithFields(map[string]interface{}{
			"event_id":   row.ID,
			"order_id":   row.OrderID,
			"topic":      row.Topic,
			"event_type": row.EventType,
		}).Info("Published OrderExecutedEvent")
	}

	return nil
}
