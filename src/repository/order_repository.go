package repository

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderexecution/src/database"
	"orderexecution/src/model"
)

// OrderRepository handles read/write operations for orders.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new repository instance using the main read/write database.
func NewOrderRepository() *OrderRepository {
	logger.WithField("component", "OrderRepository").
		Info("Creating new OrderRepository with MainDB")

	return &OrderRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *OrderRepository) WithDB(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByID fetches a single order by its primary ID.
// Returns (nil, nil) if the order is not found.
func (r *OrderRepository) FindByID(
	ctx context.Context,
	id int64,
) (*model.Order, error) {

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "FindByID",
		"id":   id,
	}).Debug("Fetching order by ID")

	var order model.Order

	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch order by ID")

		return nil, fmt.Errorf("%w: find order %d: %v", model.ErrStorageUnavailable, id, err)
	}

	return &order, nil
}

// Upsert writes the full order record. If a record with the same ID already
// exists it is replaced field by field (last writer wins). The write is
// atomic per key, so two workers racing on the same order cannot interleave
// a partial update, and repeating it with identical input is a no-op.
func (r *OrderRepository) Upsert(
	ctx context.Context,
	order *model.Order,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderRepository",
		"op":     "Upsert",
		"id":     order.ID,
		"ticker": order.Ticker,
		"status": order.Status,
	}).Debug("Upserting order")

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(order).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "Upsert",
			"id":   order.ID,
		}).WithError(err).Error("Failed to upsert order")

		return fmt.Errorf("%w: upsert order %d: %v", model.ErrStorageUnavailable, order.ID, err)
	}

	return nil
}

// Transaction runs fn against repositories bound to one database
// transaction. A returned error rolls everything back, so an order status
// change and its outbox row always commit or fail together.
func (r *OrderRepository) Transaction(
	ctx context.Context,
	fn func(orders *OrderRepository, outbox *OutboxRepository) error,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderRepository{db: tx}, &OutboxRepository{db: tx})
	})

	if err != nil {
		if errors.Is(err, model.ErrStorageUnavailable) {
			return err
		}
		return fmt.Errorf("%w: transaction: %v", model.ErrStorageUnavailable, err)
	}

	return nil
}
