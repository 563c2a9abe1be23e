package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glowmart/storefront-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartRepository persists the cart snapshot as one opaque blob per user. The
// snapshot is always read and written whole; concurrent writers race and the
// last one wins, which the Version counter makes visible to tests and clients.
type CartRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	client *redis.Client
}

func NewCartRepo(client *redis.Client) CartRepository {
	return &cartRepository{client: client}
}

func cartKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

// Get returns the stored snapshot, or a fresh empty cart when none exists yet.
func (r *cartRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}

		return nil, fmt.Errorf("failed to get cart snapshot for user %s: %w", userID, err)
	}

	cart := &models.Cart{}
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart snapshot: %w", err)
	}

	return cart, nil
}

// Save writes the whole snapshot, bumping its version.
func (r *cartRepository) Save(ctx context.Context, cart *models.Cart) error {
	cart.Version++
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(cart.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cart snapshot for user %s: %w", cart.UserID, err)
	}

	return nil
}

// Delete removes the key entirely rather than writing an empty snapshot.
func (r *cartRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart snapshot for user %s: %w", userID, err)
	}

	return nil
}
