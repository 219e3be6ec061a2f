package repository

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderexecution/src/database"
	"orderexecution/src/model"
)

// OutboxRepository handles read/write operations for outbox events.
type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new repository instance using the main read/write database.
func NewOutboxRepository() *OutboxRepository {
	logger.WithField("component", "OutboxRepository").
		Info("Creating new OutboxRepository with MainDB")

	return &OutboxRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *OutboxRepository) WithDB(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Append stores a new outbox row. Idempotent on the row ID: replaying the
// insert with the same ID leaves the stored row untouched, so a redelivered
// processing unit cannot queue the same event twice.
func (r *OutboxRepository) Append(
	ctx context.Context,
	event *model.OutboxEvent,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":       "OutboxRepository",
		"op":         "Append",
		"order_id":   event.OrderID,
		"topic":      event.Topic,
		"event_type": event.EventType,
	}).Debug("Appending outbox event")

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(event).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OutboxRepository",
			"op":       "Append",
			"order_id": event.OrderID,
		}).WithError(err).Error("Failed to append outbox event")

		return fmt.Errorf("%w: append outbox event for order %d: %v", model.ErrStorageUnavailable, event.OrderID, err)
	}

	return nil
}

// FindPending returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) FindPending(
	ctx context.Context,
	limit int,
) ([]model.OutboxEvent, error) {

	if limit <= 0 {
		limit = 50
	}

	var events []model.OutboxEvent

	err := r.db.WithContext(ctx).
		Where("status = ?", model.OutboxStatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&events).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "OutboxRepository",
			"op":    "FindPending",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch pending outbox events")

		return nil, fmt.Errorf("%w: find pending outbox events: %v", model.ErrStorageUnavailable, err)
	}

	return events, nil
}

// MarkPublished flips one event to published after the broker accepted it.
func (r *OutboxRepository) MarkPublished(
	ctx context.Context,
	id string,
) error {

	now := time.Now()

	err := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.OutboxStatusPublished,
			"published_at": now,
		}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OutboxRepository",
			"op":   "MarkPublished",
			"id":   id,
		}).WithError(err).Error("Failed to mark outbox event published")

		return fmt.Errorf("%w: mark outbox event %s published: %v", model.ErrStorageUnavailable, id, err)
	}

	logger.WithFields(map[string]interface{}{
		"repo": "OutboxRepository",
		"op":   "MarkPublished",
		"id":   id,
	}).Info("Outbox event published")

	return nil
}

// IncrementAttempts records one failed publish attempt for an event.
func (r *OutboxRepository) IncrementAttempts(
	ctx context.Context,
	id string,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OutboxRepository",
			"op":   "IncrementAttempts",
			"id":   id,
		}).WithError(err).Error("Failed to increment outbox attempts")

		return fmt.Errorf("%w: increment attempts for outbox event %s: %v", model.ErrStorageUnavailable, id, err)
	}

	return nil
}
