package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"orderexecution/src/model"
)

// Topic names used by the execution pipeline.
const (
	OrderPlacedTopic    = "order.placed.event"
	OrderExecutedTopic  = "order.executed.event"
	OrderPlacedDLQTopic = "order.placed.dlq"
	ExecutionGroup      = "execution-group"
	TypeOrderPlaced     = "orderPlacedEvent"
	TypeOrderExecuted   = "orderExecutedEvent"
)

// OrderPlacedEvent signals that a new order was submitted upstream.
type OrderPlacedEvent struct {
	OrderID  int64           `json:"orderId"`
	UserID   int64           `json:"userId"`
	Ticker   string          `json:"ticker"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Side     string          `json:"side"`
}

// Validate checks the inbound payload against the schema. A failure here is
// permanent: the event is dead-lettered, never retried.
func (e *OrderPlacedEvent) Validate() error {
	if e.OrderID <= 0 {
		return fmt.Errorf("%w: orderId must be positive, got %d", model.ErrMalformedEvent, e.OrderID)
	}
	if e.UserID <= 0 {
		return fmt.Errorf("%w: userId must be positive, got %d", model.ErrMalformedEvent, e.UserID)
	}
	if e.Ticker == "" {
		return fmt.Errorf("%w: ticker is empty", model.ErrMalformedEvent)
	}
	if e.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", model.ErrMalformedEvent, e.Quantity)
	}
	if e.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative, got %s", model.ErrMalformedEvent, e.Price)
	}
	if e.Side != model.OrderSideBuy && e.Side != model.OrderSideSell {
		return fmt.Errorf("%w: side must be %s or %s, got %q", model.ErrMalformedEvent, model.OrderSideBuy, model.OrderSideSell, e.Side)
	}
	return nil
}

// DecodeOrderPlaced parses and validates an inbound placement payload.
func DecodeOrderPlaced(payload []byte) (*OrderPlacedEvent, error) {
	var e OrderPlacedEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// OrderExecutedEvent signals that an order completed the execution decision
// with an accepted outcome. ExecutedAt is the UpdatedAt persisted at the
// moment of the executed transition, not the publish time.
type OrderExecutedEvent struct {
	OrderID    int64           `json:"orderId"`
	UserID     int64           `json:"userId"`
	Ticker     string          `json:"ticker"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Side       string          `json:"side"`
	ExecutedAt time.Time       `json:"executedAt"`
}

// NewOrderExecutedEvent builds the outbound payload from an executed order.
func NewOrderExecutedEvent(order *model.Order) OrderExecutedEvent {
	return OrderExecutedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		Ticker:     order.Ticker,
		Quantity:   order.Quantity,
		Price:      order.Price,
		Side:       order.Side,
		ExecutedAt: order.UpdatedAt,
	}
}
