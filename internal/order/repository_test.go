package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *Order {
	return &Order{
		UserID: "user-1",
		Items: []Line{
			{ProductID: "p-1", ProductName: "Widget", Qty: 2, PriceAt: decimal.RequireFromString("100")},
			{ProductID: "p-2", ProductName: "Gadget", Qty: 1, PriceAt: decimal.RequireFromString("50")},
		},
		Subtotal:        decimal.RequireFromString("250"),
		DeliveryCharge:  decimal.RequireFromString("50"),
		DiscountPercent: 10,
		DiscountAmount:  decimal.RequireFromString("25"),
		Total:           decimal.RequireFromString("275"),
		Status:          StatusPending,
	}
}

func TestRepository_GetCartSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	cols := []string{"product_id", "quantity", "found", "name", "price"}

	t.Run("ResolvesAgainstCatalog", func(t *testing.T) {
		mock.ExpectQuery("LEFT JOIN products").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("p-1", 2, true, "Widget", "100").
				AddRow("p-gone", 1, false, "", "0"))

		lines, err := repo.GetCartSnapshot(ctx, "user-1")
		assert.NoError(t, err)
		require.Len(t, lines, 2)
		assert.True(t, lines[0].Found)
		assert.Equal(t, "100", lines[0].Price.String())
		assert.False(t, lines[1].Found)
	})

	t.Run("NoCart", func(t *testing.T) {
		mock.ExpectQuery("LEFT JOIN products").
			WithArgs("user-2").
			WillReturnRows(sqlmock.NewRows(cols))

		lines, err := repo.GetCartSnapshot(ctx, "user-2")
		assert.NoError(t, err)
		assert.Empty(t, lines)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateOrderTx(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("CommitsWholeOrder", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		o := testOrder()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("order-1", now, now))
		mock.ExpectExec("UPDATE products").
			WithArgs("p-1", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products").
			WithArgs("p-2", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM cart_items").
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err = repo.CreateOrderTx(ctx, o, true)
		assert.NoError(t, err)
		assert.Equal(t, "order-1", o.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SecondLineOutOfStockRollsBackEverything", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		o := testOrder()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("order-1", now, now))
		mock.ExpectExec("UPDATE products").
			WithArgs("p-1", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products").
			WithArgs("p-2", 1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.CreateOrderTx(ctx, o, true)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Contains(t, err.Error(), "Gadget")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ReservationDisabledSkipsStockWrites", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		o := testOrder()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("order-1", now, now))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM cart_items").
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err = repo.CreateOrderTx(ctx, o, false)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		o := testOrder()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		err = repo.CreateOrderTx(ctx, o, true)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	orderCols := []string{
		"id", "user_id", "subtotal", "delivery_charge", "discount_percent",
		"discount_amount", "total", "payment_method", "status", "created_at", "updated_at",
	}
	itemCols := []string{"order_id", "product_id", "product_name", "quantity", "price_at"}

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
			WithArgs("order-1").
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow("order-1", "user-1", "250", "50", 10, "25", "275", nil, "pending", now, now))
		mock.ExpectQuery("FROM order_items").
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow("order-1", "p-1", "Widget", 2, "100"))

		o, err := repo.GetByID(ctx, "order-1")
		assert.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, StatusPending, o.Status)
		require.Len(t, o.Items, 1)
		assert.Equal(t, "Widget", o.Items[0].ProductName)
		assert.Equal(t, "200", o.Items[0].LineTotal().String())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
			WithArgs("order-gone").
			WillReturnRows(sqlmock.NewRows(orderCols))

		o, err := repo.GetByID(ctx, "order-gone")
		assert.NoError(t, err)
		assert.Nil(t, o)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	orderCols := []string{
		"id", "user_id", "subtotal", "delivery_charge", "discount_percent",
		"discount_amount", "total", "payment_method", "status", "created_at", "updated_at",
	}
	itemCols := []string{"order_id", "product_id", "product_name", "quantity", "price_at"}

	t.Run("ScopedToUser", func(t *testing.T) {
		userID := "user-1"
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("FROM orders WHERE user_id").
			WithArgs(userID, 10, 0).
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow("order-1", userID, "250", "50", 10, "25", "275", nil, "pending", now, now))
		mock.ExpectQuery("FROM order_items").
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow("order-1", "p-1", "Widget", 2, "100"))

		orders, total, err := repo.List(ctx, ListOptions{UserID: &userID, Page: 1, Limit: 10})
		assert.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, orders, 1)
		assert.Len(t, orders[0].Items, 1)
	})

	t.Run("Unscoped", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("FROM orders").
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(orderCols))

		orders, total, err := repo.List(ctx, ListOptions{Page: 1, Limit: 10})
		assert.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, orders)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs("order-1", StatusShipped).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, "order-1", StatusShipped)
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs("order-gone", StatusShipped).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, "order-gone", StatusShipped)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
