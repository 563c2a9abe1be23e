package service_test

import (
	"context"
	"errors"
	"testing"

	appErrors "github.com/glowmart/storefront-backend/internal/errors"
	"github.com/glowmart/storefront-backend/internal/models"
	repoMocks "github.com/glowmart/storefront-backend/internal/repositories/mocks"
	service "github.com/glowmart/storefront-backend/internal/services"
	"github.com/glowmart/storefront-backend/internal/services/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func newCartServiceWithMocks() (*repoMocks.CartRepository, *repoMocks.ProductRepository, *mocks.Notifier, service.CartService) {
	mockRepo := new(repoMocks.CartRepository)
	mockCatalog := new(repoMocks.ProductRepository)
	mockNotifier := new(mocks.Notifier)
	cartService := service.NewCartService(mockRepo, mockCatalog, mockNotifier)

	return mockRepo, mockCatalog, mockNotifier, cartService
}

func TestLoadCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Success - Prices Resolved From Catalog", func(t *testing.T) {
		// Arrange
		mockRepo, mockCatalog, _, cartService := newCartServiceWithMocks()
		stored := &models.Cart{
			UserID: userID,
			Items: []models.CartItem{
				{ProductID: productID, ProductName: "Rose Serum", Quantity: 2},
			},
			Version: 3,
		}
		mockRepo.On("Get", ctx, userID).Return(stored, nil).Once()
		mockCatalog.On("GetProductDetails", ctx, productID).
			Return(&models.ProductDetails{Price: 24.99, ImageURL: "https://cdn.glowmart.test/serum.jpg"}, nil).Once()

		// Act
		cart, err := cartService.LoadCart(ctx, userID)

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, cart)
		assert.Equal(t, 24.99, *cart.Items[0].Price)
		assert.Equal(t, "https://cdn.glowmart.test/serum.jpg", *cart.Items[0].ImageURL)
		assert.Equal(t, 2, cart.Count())
		assert.Equal(t, 49.98, cart.Total())
		mockRepo.AssertExpectations(t)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("Success - Unresolvable Line Kept Without Price", func(t *testing.T) {
		// Arrange
		mockRepo, mockCatalog, _, cartService := newCartServiceWithMocks()
		staleID := uuid.New()
		stored := &models.Cart{
			UserID: userID,
			Items: []models.CartItem{
				{ProductID: productID, ProductName: "Rose Serum", Quantity: 1},
				{ProductID: staleID, ProductName: "Retired Balm", Quantity: 3},
			},
		}
		mockRepo.On("Get", ctx, userID).Return(stored, nil).Once()
		mockCatalog.On("GetProductDetails", ctx, productID).
			Return(&models.ProductDetails{Price: 24.99, ImageURL: "https://cdn.glowmart.test/serum.jpg"}, nil).Once()
		mockCatalog.On("GetProductDetails", ctx, staleID).
			Return(nil, errors.New("product not found")).Once()

		// Act
		cart, err := cartService.LoadCart(ctx, userID)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, cart.Items, 2)
		assert.Nil(t, cart.Items[1].Price)
		assert.Equal(t, 4, cart.Count())
		// The stale line contributes zero to the total but stays countable.
		assert.Equal(t, 24.99, cart.Total())
		mockRepo.AssertExpectations(t)
		mockCatalog.AssertExpectations(t)
	})

	t.Run("Failure - Store Error", func(t *testing.T) {
		// Arrange
		mockRepo, _, _, cartService := newCartServiceWithMocks()
		storeErr := errors.New("redis connection refused")
		mockRepo.On("Get", ctx, userID).Return(nil, storeErr).Once()

		// Act
		cart, err := cartService.LoadCart(ctx, userID)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		assert.ErrorIs(t, err, storeErr)
		mockRepo.AssertExpectations(t)
	})
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	req := &models.AddItemRequest{ProductID: productID, ProductName: "Rose Serum"}

	t.Run("Success - New Line Starts At Quantity One", func(t *testing.T) {
		// Arrange
		mockRepo, mockCatalog, mockNotifier, cartService := newCartServiceWithMocks()
		mockRepo.On("Get", ctx, userID).Return(&models.Cart{UserID: userID}, nil).Once()
		mockCatalog.On("GetProductDetails", ctx, productID).
			Return(&models.ProductDetails{Price: 24.99, ImageURL: "https://cdn.glowmart.test/serum.jpg"}, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()
		mockNotifier.On("CartUpdated", ctx, userID, 1).Once()

		// Act
		cart, err := cartService.AddItem(ctx, userID, req)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, cart.Items, 1)
		assert.Equal(t, 1, cart.Items[0].Quantity)
		assert.Equal(t, 24.99, *cart.Items[0].Price)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Success - Existing Line Merges Instead Of Duplicating", func(t *testing.T) {
		// Arrange
		mockRepo, mockCatalog, mockNotifier, cartService := newCartServiceWithMocks()
		existing := &models.Cart{
			UserID: userID,
			Items: []models.CartItem{
				{ProductID: productID, ProductName: "Rose Serum", Quantity: 2, Price: floatPtr(24.99)},
			},
		}
		mockRepo.On("Get", ctx, userID).Return(existing, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()
		mockNotifier.On("CartUpdated", ctx, userID, 3).Once()

		// Act
		cart, err := cartService.AddItem(ctx, userID, req)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
		mockRepo.AssertExpectations(t)
		// Merging reuses the stored line, so the catalog is not consulted.
		mockCatalog.AssertNotCalled(t, "GetProductDetails", ctx, productID)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Failure - Save Error Skips Notification", func(t *testing.T) {
		// Arrange
		mockRepo, mockCatalog, mockNotifier, cartService := newCartServiceWithMocks()
		saveErr := errors.New("redis write failed")
		mockRepo.On("Get", ctx, userID).Return(&models.Cart{UserID: userID}, nil).Once()
		mockCatalog.On("GetProductDetails", ctx, productID).
			Return(&models.ProductDetails{Price: 24.99, ImageURL: ""}, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(saveErr).Once()

		// Act
		cart, err := cartService.AddItem(ctx, userID, req)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertNotCalled(t, "CartUpdated", ctx, userID, mock.Anything)
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	t.Run("Success - Line Removed", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		stored := &models.Cart{
			UserID: userID,
			Items: []models.CartItem{
				{ProductID: productID, ProductName: "Rose Serum", Quantity: 2, Price: floatPtr(24.99)},
				{ProductID: uuid.New(), ProductName: "Clay Mask", Quantity: 1, Price: floatPtr(12.50)},
			},
		}
		mockRepo.On("Get", ctx, userID).Return(stored, nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()
		mockNotifier.On("CartUpdated", ctx, userID, 1).Once()

		// Act
		cart, err := cartService.RemoveItem(ctx, userID, productID)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, cart.Items, 1)
		assert.Equal(t, "Clay Mask", cart.Items[0].ProductName)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Success - Absent Line Is A No-Op", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		stored := &models.Cart{
			UserID: userID,
			Items: []models.CartItem{
				{ProductID: uuid.New(), ProductName: "Clay Mask", Quantity: 1, Price: floatPtr(12.50)},
			},
		}
		mockRepo.On("Get", ctx, userID).Return(stored, nil).Once()

		// Act
		cart, err := cartService.RemoveItem(ctx, userID, productID)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, cart.Items, 1)
		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "Save", ctx, mock.Anything)
		mockNotifier.AssertNotCalled(t, "CartUpdated", ctx, userID, mock.Anything)
	})
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	storedCart := func() *models.Cart {
		return &models.Cart{
			UserID: userID,
			Items: []models.CartItem{
				{ProductID: productID, ProductName: "Rose Serum", Quantity: 2, Price: floatPtr(24.99)},
			},
		}
	}

	t.Run("Success - Quantity Updated", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		mockRepo.On("Get", ctx, userID).Return(storedCart(), nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()
		mockNotifier.On("CartUpdated", ctx, userID, 5).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{ProductID: productID, Quantity: 5})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 5, cart.Items[0].Quantity)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Success - Zero Quantity Removes The Line", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		mockRepo.On("Get", ctx, userID).Return(storedCart(), nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()
		mockNotifier.On("CartUpdated", ctx, userID, 0).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{ProductID: productID, Quantity: 0})

		// Assert
		assert.NoError(t, err)
		assert.Empty(t, cart.Items)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Success - Negative Quantity Clamped To Removal", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		mockRepo.On("Get", ctx, userID).Return(storedCart(), nil).Once()
		mockRepo.On("Save", ctx, mock.AnythingOfType("*models.Cart")).Return(nil).Once()
		mockNotifier.On("CartUpdated", ctx, userID, 0).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{ProductID: productID, Quantity: -4})

		// Assert
		assert.NoError(t, err)
		assert.Empty(t, cart.Items)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Failure - Item Not In Cart", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		mockRepo.On("Get", ctx, userID).Return(storedCart(), nil).Once()

		// Act
		cart, err := cartService.UpdateQuantity(ctx, userID, &models.UpdateQuantityRequest{ProductID: uuid.New(), Quantity: 2})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "Save", ctx, mock.Anything)
		mockNotifier.AssertNotCalled(t, "CartUpdated", ctx, userID, mock.Anything)
	})
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		mockRepo.On("Delete", ctx, userID).Return(nil).Once()
		mockNotifier.On("CartUpdated", ctx, userID, 0).Once()

		// Act
		err := cartService.ClearCart(ctx, userID)

		// Assert
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Success - Clearing Twice Stays Clean", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		mockRepo.On("Delete", ctx, userID).Return(nil).Twice()
		mockNotifier.On("CartUpdated", ctx, userID, 0).Twice()

		// Act
		first := cartService.ClearCart(ctx, userID)
		second := cartService.ClearCart(ctx, userID)

		// Assert
		assert.NoError(t, first)
		assert.NoError(t, second)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Failure - Store Error Skips Notification", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockNotifier, cartService := newCartServiceWithMocks()
		mockRepo.On("Delete", ctx, userID).Return(errors.New("redis down")).Once()

		// Act
		err := cartService.ClearCart(ctx, userID)

		// Assert
		assert.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertNotCalled(t, "CartUpdated", ctx, userID, mock.Anything)
	})
}
