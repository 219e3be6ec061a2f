package model

import "time"

// Outbox event status values.
const (
	OutboxStatusPending   = "pending"
	OutboxStatusPublished = "published"
)

// OutboxEvent is an outbound message written in the same transaction as the
// order state change it describes. A separate relay drains pending rows and
// publishes them to the broker, so a crash between commit and publish can
// never lose the event.
type OutboxEvent struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	OrderID     int64      `gorm:"index" json:"order_id"`
	Topic       string     `gorm:"size:100;not null" json:"topic"`
	Key         string     `gorm:"size:100;not null" json:"key"`
	EventType   string     `gorm:"size:100;not null" json:"event_type"`
	Payload     []byte     `json:"payload"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// TableName allows you to control the exact table name for outbox events.
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
