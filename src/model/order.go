package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status values. Transitions are forward-only: an order starts as
// submitted and ends as either executed or rejected, never the other way.
const (
	OrderStatusSubmitted = "submitted"
	OrderStatusExecuted  = "executed"
	OrderStatusRejected  = "rejected"
)

// Order side values.
const (
	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"
)

// Order is the durable record of one order moving through execution.
// The ID is assigned by the upstream placement service, never generated here.
type Order struct {
	ID           int64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID       int64           `gorm:"index" json:"user_id"`
	Ticker       string          `gorm:"size:20;index;not null" json:"ticker"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `gorm:"type:numeric(20,8)" json:"price"`
	Side         string          `gorm:"size:10;not null" json:"side"`
	Status       string          `gorm:"size:20;not null;default:submitted" json:"status"`
	RejectReason string          `gorm:"size:255" json:"reject_reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName allows you to control the exact table name for orders.
func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the order has reached a final status.
// Terminal orders are never re-decided or re-published.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusExecuted || o.Status == OrderStatusRejected
}
