package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glowmart/storefront-backend/internal/models"
	repository "github.com/glowmart/storefront-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderRepoMock(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	return repository.NewOrderRepository(db), mock, db
}

func sampleOrder(userID uuid.UUID) *models.Order {
	orderID := uuid.New()

	return &models.Order{
		ID:              orderID,
		UserID:          userID,
		Status:          models.OrderStatusPending,
		TotalAmount:     62.48,
		ShippingAddress: "12 Orchard Lane, Portland",
		ContactPhone:    "+15550100",
		ContactEmail:    "maya@example.com",
		CustomerName:    "Maya Lin",
		PaymentType:     models.PaymentTypeCashOnDelivery,
		Items: []models.OrderItem{
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), Quantity: 2, Price: 24.99},
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), Quantity: 1, Price: 12.50},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success - Order And Items Commit Together", func(t *testing.T) {
		// Arrange
		repo, mock, db := newOrderRepoMock(t)
		defer db.Close()

		order := sampleOrder(userID)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
			WithArgs(order.ID, order.UserID, order.Status, order.TotalAmount,
				order.ShippingAddress, order.ContactPhone, order.ContactEmail,
				order.CustomerName, order.PaymentType, order.PaymentIntentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		for _, item := range order.Items {
			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
				WithArgs(item.ID, order.ID, item.ProductID, item.Quantity, item.Price).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}

		mock.ExpectCommit()

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Item Insert Error Rolls Back The Order", func(t *testing.T) {
		// Arrange
		repo, mock, db := newOrderRepoMock(t)
		defer db.Close()

		order := sampleOrder(userID)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
			WillReturnError(errors.New("foreign key violation"))
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(ctx, order)

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert order item")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Begin Error", func(t *testing.T) {
		// Arrange
		repo, mock, db := newOrderRepoMock(t)
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		// Act
		err := repo.CreateOrder(ctx, sampleOrder(userID))

		// Assert
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrderByID(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success - Order With Items", func(t *testing.T) {
		// Arrange
		repo, mock, db := newOrderRepoMock(t)
		defer db.Close()

		orderID := uuid.New()
		now := time.Now()

		orderRows := sqlmock.NewRows([]string{
			"user_id", "status", "total_amount", "shipping_address", "contact_phone",
			"contact_email", "customer_name", "payment_type", "payment_intent_id",
			"created_at", "updated_at",
		}).AddRow(userID, "pending", 62.48, "12 Orchard Lane, Portland", "+15550100",
			"maya@example.com", "Maya Lin", "cash_on_delivery", "", now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders`)).WithArgs(orderID).WillReturnRows(orderRows)

		itemRows := sqlmock.NewRows([]string{"id", "product_id", "quantity", "price", "created_at"}).
			AddRow(uuid.New(), uuid.New(), 2, 24.99, now).
			AddRow(uuid.New(), uuid.New(), 1, 12.50, now)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).WithArgs(orderID).WillReturnRows(itemRows)

		// Act
		order, err := repo.GetOrderByID(ctx, orderID)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, userID, order.UserID)
		assert.Len(t, order.Items, 2)
		assert.Equal(t, orderID, order.Items[0].OrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found Passes Through", func(t *testing.T) {
		// Arrange
		repo, mock, db := newOrderRepoMock(t)
		defer db.Close()

		orderID := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders`)).WithArgs(orderID).WillReturnError(sql.ErrNoRows)

		// Act
		order, err := repo.GetOrderByID(ctx, orderID)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListOrdersByUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success - Soft Deleted Orders Hidden", func(t *testing.T) {
		// Arrange
		repo, mock, db := newOrderRepoMock(t)
		defer db.Close()

		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status <> 'deleted'`)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{
			"id", "user_id", "status", "total_amount", "shipping_address", "contact_phone",
			"contact_email", "customer_name", "payment_type", "payment_intent_id",
			"created_at", "updated_at",
		}).AddRow(uuid.New(), userID, "completed", 62.48, "12 Orchard Lane, Portland", "+15550100",
			"maya@example.com", "Maya Lin", "cash_on_delivery", "", now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`AND status <> 'deleted'`)).
			WithArgs(userID, 10, 0).
			WillReturnRows(rows)

		// Act
		orders, total, err := repo.ListOrdersByUser(ctx, userID, 1, 10)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Equal(t, 1, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Returns The Refreshed Order", func(t *testing.T) {
		// Arrange
		repo, mock, db := newOrderRepoMock(t)
		defer db.Close()

		orderID := uuid.New()
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE orders`)).
			WithArgs(models.OrderStatusProcessing, orderID).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		orderRows := sqlmock.NewRows([]string{
			"user_id", "status", "total_amount", "shipping_address", "contact_phone",
			"contact_email", "customer_name", "payment_type", "payment_intent_id",
			"created_at", "updated_at",
		}).AddRow(userID, "processing", 62.48, "12 Orchard Lane, Portland", "+15550100",
			"maya@example.com", "Maya Lin", "cash_on_delivery", "", now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM orders`)).WithArgs(orderID).WillReturnRows(orderRows)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "quantity", "price", "created_at"}))

		// Act
		order, err := repo.UpdateOrderStatus(ctx, orderID, models.OrderStatusProcessing)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, models.OrderStatusProcessing, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unknown Order", func(t *testing.T) {
		// Arrange
		repo, mock, db := newOrderRepoMock(t)
		defer db.Close()

		orderID := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE orders`)).
			WithArgs(models.OrderStatusDeleted, orderID).
			WillReturnError(sql.ErrNoRows)

		// Act
		order, err := repo.UpdateOrderStatus(ctx, orderID, models.OrderStatusDeleted)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
