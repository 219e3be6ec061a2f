package executors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"orderexecution/src/event"
	"orderexecution/src/model"
	"orderexecution/src/repository"
	"orderexecution/src/risk"
)

// Coordinator runs one processing unit per inbound placement event:
// load-or-create the order, decide, persist the terminal status and queue
// the outbound event, all inside a single database transaction. The
// persisted state is the source of truth; the outbox relay publishes from it
// afterwards, so a crash anywhere in between never loses or duplicates the
// outbound event.
//
// All collaborators are injected explicitly. There are no process-wide
// singletons behind this type.
type Coordinator struct {
	orders  *repository.OrderRepository
	decider risk.Decider
}

// NewCoordinator wires a coordinator with its store and decision function.
func NewCoordinator(orders *repository.OrderRepository, decider risk.Decider) *Coordinator {
	return &Coordinator{
		orders:  orders,
		decider: decider,
	}
}

// ProcessOrderPlaced handles one inbound placement event. A storage error
// aborts the unit with everything rolled back, so the caller must not
// acknowledge the event and the broker redelivers it. Redelivery of an event
// whose order is already terminal is a successful no-op.
func (c *Coordinator) ProcessOrderPlaced(ctx context.Context, placed *event.OrderPlacedEvent) error {
	logger.WithFields(map[string]interface{}{
		"order_id": placed.OrderID,
		"ticker":   placed.Ticker,
		"price":    placed.Price.String(),
	}).Info("Received OrderPlacedEvent")

	return c.orders.Transaction(ctx, func(orders *repository.OrderRepository, outbox *repository.OutboxRepository) error {
		order, err := orders.FindByID(ctx, placed.OrderID)
		if err != nil {
			return err
		}

		if order == nil {
			now := time.Now()
			order = &model.Order{
				ID:        placed.OrderID,
				UserID:    placed.UserID,
				Ticker:    placed.Ticker,
				Quantity:  placed.Quantity,
				Price:     placed.Price,
				Side:      placed.Side,
				Status:    model.OrderStatusSubmitted,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := orders.Upsert(ctx, order); err != nil {
				return err
			}
		}

		if order.IsTerminal() {
			logger.WithFields(map[string]interface{}{
				"order_id": order.ID,
				"status":   order.Status,
			}).Info("Order already in terminal status, skipping redelivered event")
			return nil
		}

		decision, err := c.decider.Decide(ctx, order)
		if err != nil {
			// A broken decider must not wedge the pipeline: record a system
			// rejection instead of failing the unit.
			logger.WithField("order_id", order.ID).
				WithError(err).Error("Decider failed, rejecting order")
			decision = risk.Reject(fmt.Sprintf("system: %v", err))
		}

		order.UpdatedAt = time.Now()

		if !decision.Accepted {
			order.Status = model.OrderStatusRejected
			order.RejectReason = decision.Reason
			if err := orders.Upsert(ctx, order); err != nil {
				return err
			}

			logger.WithFields(map[string]interface{}{
				"order_id": order.ID,
				"reason":   decision.Reason,
			}).Info("Order rejected")
			return nil
		}

		order.Status = model.OrderStatusExecuted
		if err := orders.Upsert(ctx, order); err != nil {
			return err
		}

		executed := event.NewOrderExecutedEvent(order)
		payload, err := json.Marshal(executed)
		if err != nil {
			return fmt.Errorf("marshal executed event for order %d: %w", order.ID, err)
		}

		if err := outbox.Append(ctx, &model.OutboxEvent{
			ID:        ExecutedEventID(order.ID),
			OrderID:   order.ID,
			Topic:     event.OrderExecutedTopic,
			Key:       order.Ticker,
			EventType: event.TypeOrderExecuted,
			Payload:   payload,
			Status:    model.OutboxStatusPending,
			CreatedAt: order.UpdatedAt,
		}); err != nil {
			return err
		}

		logger.WithFields(map[string]interface{}{
			"order_id": order.ID,
			"ticker":   order.Ticker,
		}).Info("Order executed, OrderExecutedEvent queued for publish")
		return nil
	})
}

// ExecutedEventID derives a deterministic message ID from the order ID.
// Replays build the same ID, so the outbox insert and every downstream
// consumer can deduplicate on it.
func ExecutedEventID(orderID int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("order-executed-%d", orderID))).String()
}
