package service

import (
	"context"
	"log/slog"

	"github.com/glowmart/storefront-backend/internal/errors"
	"github.com/glowmart/storefront-backend/internal/events"
	"github.com/glowmart/storefront-backend/internal/models"
	repository "github.com/glowmart/storefront-backend/internal/repositories"
	"github.com/google/uuid"
)

type CartService interface {
	// LoadCart rehydrates the snapshot and re-resolves price and image for
	// every line. Lines whose product lookup fails are kept with nil price.
	LoadCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	repo     repository.CartRepository
	catalog  repository.ProductRepository
	notifier events.Notifier
}

func NewCartService(repo repository.CartRepository, catalog repository.ProductRepository, notifier events.Notifier) CartService {
	return &cartService{repo: repo, catalog: catalog, notifier: notifier}
}

// resolveDetails fetches the current price and image for a product. Failure is
// never fatal for the cart: the line stays usable with an unknown price.
func (s *cartService) resolveDetails(ctx context.Context, productID uuid.UUID) (*float64, *string) {
	details, err := s.catalog.GetProductDetails(ctx, productID)
	if err != nil {
		slog.Warn("Failed to resolve product details for cart line",
			slog.String("product_id", productID.String()),
			slog.String("error", err.Error()))

		return nil, nil
	}

	return &details.Price, &details.ImageURL
}

func (s *cartService) LoadCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	for i := range cart.Items {
		price, imageURL := s.resolveDetails(ctx, cart.Items[i].ProductID)
		cart.Items[i].Price = price
		cart.Items[i].ImageURL = imageURL
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	if idx := cart.FindItem(req.ProductID); idx >= 0 {
		cart.Items[idx].Quantity++
	} else {
		price, imageURL := s.resolveDetails(ctx, req.ProductID)
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			Quantity:    1,
			Price:       price,
			ImageURL:    imageURL,
		})
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to save cart").WithError(err)
	}

	s.notifier.CartUpdated(ctx, userID, cart.Count())

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		// Removing an absent line is a no-op.
		return cart, nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to save cart").WithError(err)
	}

	s.notifier.CartUpdated(ctx, userID, cart.Count())

	return cart, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	idx := cart.FindItem(req.ProductID)
	if idx < 0 {
		return nil, errors.BadRequestError("Item not found in the cart")
	}

	quantity := max(req.Quantity, 0)

	if quantity == 0 {
		// Zero-quantity lines never persist.
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to save cart").WithError(err)
	}

	s.notifier.CartUpdated(ctx, userID, cart.Count())

	return cart, nil
}

// ClearCart drops the snapshot entirely. Clearing an already empty cart is
// not an error.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return errors.DatabaseError("Failed to clear cart").WithError(err)
	}

	s.notifier.CartUpdated(ctx, userID, 0)

	return nil
}
