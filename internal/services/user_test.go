package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glowmart/storefront-backend/internal/config"
	appErrors "github.com/glowmart/storefront-backend/internal/errors"
	"github.com/glowmart/storefront-backend/internal/models"
	repoMocks "github.com/glowmart/storefront-backend/internal/repositories/mocks"
	service "github.com/glowmart/storefront-backend/internal/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTKey = "test-signing-key"

func newUserServiceWithMocks() (*repoMocks.UserRepository, *repoMocks.RateLimitRepository, service.UserService) {
	mockRepo := new(repoMocks.UserRepository)
	mockRateLimit := new(repoMocks.RateLimitRepository)
	userService := service.NewUserService(mockRepo, mockRateLimit, &config.Security{
		JWTKey:   testJWTKey,
		TokenTTL: time.Hour,
	})

	return mockRepo, mockRateLimit, userService
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	req := &models.RegisterRequest{
		Email:    "maya@example.com",
		Password: "s3cret-password",
		FullName: "Maya Lin",
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockRepo, _, userService := newUserServiceWithMocks()
		mockRepo.On("GetUserByEmail", ctx, req.Email).Return(nil, errors.New("no rows")).Once()
		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		// Act
		user, err := userService.Register(ctx, req)

		// Assert
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, req.Email, user.Email)
		// The stored password is a bcrypt hash, never the plaintext.
		assert.NotEqual(t, req.Password, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Email Already Registered", func(t *testing.T) {
		// Arrange
		mockRepo, _, userService := newUserServiceWithMocks()
		mockRepo.On("GetUserByEmail", ctx, req.Email).
			Return(&models.User{ID: uuid.New(), Email: req.Email}, nil).Once()

		// Act
		user, err := userService.Register(ctx, req)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, user)
		appErr, ok := appErrors.IsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, appErr.Code)
		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "CreateUser", ctx, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	password := "s3cret-password"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	storedUser := &models.User{
		ID:       uuid.New(),
		Email:    "maya@example.com",
		Password: string(hash),
		IsAdmin:  false,
	}
	req := &models.LoginRequest{Email: storedUser.Email, Password: password}

	t.Run("Success - Token Carries User Claims", func(t *testing.T) {
		// Arrange
		mockRepo, mockRateLimit, userService := newUserServiceWithMocks()
		mockRateLimit.On("CheckLoginRateLimit", ctx, req.Email).Return(true, 4, 0, nil).Once()
		mockRepo.On("GetUserByEmail", ctx, req.Email).Return(storedUser, nil).Once()

		// Act
		resp, err := userService.Login(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Greater(t, resp.ExpiresIn, 0)

		claims := &models.Claims{}
		_, err = jwt.ParseWithClaims(resp.Token, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testJWTKey), nil
		})
		require.NoError(t, err)
		assert.Equal(t, storedUser.ID, claims.UserID)
		assert.Equal(t, storedUser.Email, claims.Email)
		assert.False(t, claims.IsAdmin)
		mockRepo.AssertExpectations(t)
		mockRateLimit.AssertExpectations(t)
	})

	t.Run("Failure - Wrong Password", func(t *testing.T) {
		// Arrange
		mockRepo, mockRateLimit, userService := newUserServiceWithMocks()
		mockRateLimit.On("CheckLoginRateLimit", ctx, req.Email).Return(true, 3, 0, nil).Once()
		mockRepo.On("GetUserByEmail", ctx, req.Email).Return(storedUser, nil).Once()

		// Act
		resp, err := userService.Login(ctx, &models.LoginRequest{Email: req.Email, Password: "wrong"})

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Empty(t, resp.Token)
		assert.Equal(t, 3, resp.RemainingTries)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Unknown Email Looks Like Wrong Password", func(t *testing.T) {
		// Arrange
		mockRepo, mockRateLimit, userService := newUserServiceWithMocks()
		mockRateLimit.On("CheckLoginRateLimit", ctx, req.Email).Return(true, 4, 0, nil).Once()
		mockRepo.On("GetUserByEmail", ctx, req.Email).Return(nil, errors.New("no rows")).Once()

		// Act
		resp, err := userService.Login(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid email or password", resp.Message)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Rate Limited", func(t *testing.T) {
		// Arrange
		mockRepo, mockRateLimit, userService := newUserServiceWithMocks()
		mockRateLimit.On("CheckLoginRateLimit", ctx, req.Email).Return(false, 0, 42, nil).Once()

		// Act
		resp, err := userService.Login(ctx, req)

		// Assert
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, 42, resp.RetryAfter)
		mockRateLimit.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "GetUserByEmail", ctx, req.Email)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success - Only Provided Fields Change", func(t *testing.T) {
		// Arrange
		mockRepo, _, userService := newUserServiceWithMocks()
		mockRepo.On("GetUserByID", ctx, userID).
			Return(&models.User{ID: userID, Email: "maya@example.com", FullName: "Maya Lin", Phone: "+15550100"}, nil).Once()
		mockRepo.On("UpdateProfile", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()
		newName := "Maya L. Chen"

		// Act
		user, err := userService.UpdateProfile(ctx, userID, &models.UpdateProfileRequest{FullName: &newName})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "Maya L. Chen", user.FullName)
		assert.Equal(t, "+15550100", user.Phone)
		mockRepo.AssertExpectations(t)
	})
}

func TestListCustomers(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Search Passed Through", func(t *testing.T) {
		// Arrange
		mockRepo, _, userService := newUserServiceWithMocks()
		expected := []*models.User{
			{ID: uuid.New(), Email: "maya@example.com", FullName: "Maya Lin"},
			{ID: uuid.New(), Email: "ana@example.com", FullName: "Ana Reyes"},
		}
		mockRepo.On("ListCustomers", ctx, models.ListCustomersQuery{Search: "ma", Page: 2, Size: 20}).
			Return(expected, 42, nil).Once()

		// Act
		customers, total, err := userService.ListCustomers(ctx, models.ListCustomersQuery{Search: "ma", Page: 2, Size: 20})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, expected, customers)
		assert.Equal(t, 42, total)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success - Pagination Defaults Applied", func(t *testing.T) {
		// Arrange
		mockRepo, _, userService := newUserServiceWithMocks()
		mockRepo.On("ListCustomers", ctx, mock.MatchedBy(func(q models.ListCustomersQuery) bool {
			return q.Page == 1 && q.Size == 10
		})).Return([]*models.User{}, 0, nil).Once()

		// Act
		_, _, err := userService.ListCustomers(ctx, models.ListCustomersQuery{Page: 0, Size: 500})

		// Assert
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		mockRepo, _, userService := newUserServiceWithMocks()
		mockRepo.On("ListCustomers", ctx, mock.Anything).
			Return(nil, 0, errors.New("connection reset")).Once()

		// Act
		customers, _, err := userService.ListCustomers(ctx, models.ListCustomersQuery{})

		// Assert
		require.Error(t, err)
		assert.Nil(t, customers)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		mockRepo.AssertExpectations(t)
	})
}
