package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderexecution/src/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestOrderRepositoryFindByID(t *testing.T) {
	createdAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("returns the stored order", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		rows := sqlmock.NewRows([]string{"id", "user_id", "ticker", "quantity", "price", "side", "status", "created_at", "updated_at"}).
			AddRow(int64(1), int64(7), "ABC", int64(10), "25.50", model.OrderSideBuy, model.OrderStatusSubmitted, createdAt, createdAt)

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WithArgs(int64(1), 1).
			WillReturnRows(rows)

		order, err := repo.FindByID(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error fetching order: %v", err)
		}
		if order == nil {
			t.Fatal("expected an order, got nil")
		}
		if order.Ticker != "ABC" || order.Status != model.OrderStatusSubmitted {
			t.Fatalf("unexpected order returned: %+v", order)
		}
		if !order.Price.Equal(decimal.RequireFromString("25.50")) {
			t.Fatalf("unexpected price: %s", order.Price)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
	})

	t.Run("returns nil for an unknown id", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WithArgs(int64(42), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		order, err := repo.FindByID(context.Background(), 42)
		if err != nil {
			t.Fatalf("unexpected error fetching order: %v", err)
		}
		if order != nil {
			t.Fatalf("expected nil for unknown id, got %+v", order)
		}
	})

	t.Run("wraps I/O failures as storage unavailable", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByID(context.Background(), 1)
		if !errors.Is(err, model.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
	})
}

func TestOrderRepositoryUpsert(t *testing.T) {
	t.Run("inserts with conflict update on id", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "orders" .* ON CONFLICT \("id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		now := time.Now()
		err := repo.Upsert(context.Background(), &model.Order{
			ID:        1,
			UserID:    7,
			Ticker:    "ABC",
			Quantity:  10,
			Price:     decimal.RequireFromString("25.50"),
			Side:      model.OrderSideBuy,
			Status:    model.OrderStatusSubmitted,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("unexpected error upserting order: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
	})

	t.Run("wraps write failures as storage unavailable", func(t *testing.T) {
		mockDB, mock := newMockDB(t)
		repo := &OrderRepository{db: mockDB}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.Upsert(context.Background(), &model.Order{ID: 1, Ticker: "ABC", Side: model.OrderSideBuy, Status: model.OrderStatusSubmitted})
		if !errors.Is(err, model.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
	})
}

func TestOrderRepositoryTransactionRollsBackOnError(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &OrderRepository{db: mockDB}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	boom := errors.New("unit failed")
	err := repo.Transaction(context.Background(), func(orders *OrderRepository, outbox *OutboxRepository) error {
		if _, err := orders.FindByID(context.Background(), 1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, model.ErrStorageUnavailable) {
		t.Fatalf("expected wrapped storage error from failed transaction, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}
