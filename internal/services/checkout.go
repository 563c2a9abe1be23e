package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/glowmart/storefront-backend/internal/config"
	"github.com/glowmart/storefront-backend/internal/errors"
	"github.com/glowmart/storefront-backend/internal/events"
	"github.com/glowmart/storefront-backend/internal/models"
	repository "github.com/glowmart/storefront-backend/internal/repositories"
	"github.com/glowmart/storefront-backend/pkg/sendgrid"
	"github.com/glowmart/storefront-backend/pkg/stripe"
	"github.com/google/uuid"
)

type CheckoutService interface {
	// Checkout turns the user's persisted cart and the submitted form into a
	// durable order. The cart is cleared only after the order committed; any
	// failure leaves the cart untouched for a retry.
	Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error)
}

type checkoutService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	payments  stripe.Client
	email     sendgrid.EmailService
	notifier  events.Notifier
	cfg       *config.Payments
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	payments stripe.Client,
	email sendgrid.EmailService,
	notifier events.Notifier,
	cfg *config.Payments,
) CheckoutService {
	return &checkoutService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		payments:  payments,
		email:     email,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, req *models.CheckoutRequest) (*models.Order, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	// Rejected before any remote write.
	if len(cart.Items) == 0 {
		return nil, errors.BadRequestError("Cannot checkout with an empty cart")
	}

	// Unpriced lines are charged as zero.
	var total float64

	items := make([]models.OrderItem, 0, len(cart.Items))

	orderID := uuid.New()

	for _, line := range cart.Items {
		var price float64
		if line.Price != nil {
			price = *line.Price
		}

		total += price * float64(line.Quantity)

		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     price,
		})
	}

	order := &models.Order{
		ID:              orderID,
		UserID:          userID,
		Status:          models.OrderStatusPending,
		TotalAmount:     total,
		ShippingAddress: req.ShippingAddress,
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
		CustomerName:    req.CustomerName,
		PaymentType:     req.PaymentType,
		Items:           items,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if req.PaymentType == models.PaymentTypeCreditCard {
		if !s.cfg.CreditCardEnabled {
			return nil, errors.BadRequestError("Credit card payments are currently unavailable")
		}

		intent, err := s.payments.CreatePaymentIntent(
			int64(math.Round(total*100)),
			s.cfg.Currency,
			fmt.Sprintf("Order %s", orderID))
		if err != nil {
			return nil, errors.ThirdPartyError("Failed to initiate card payment").WithError(err)
		}

		order.PaymentIntentID = intent.ID
	}

	// Order and its items commit in one transaction; on failure the cart is
	// left as it was.
	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, errors.DatabaseError("Failed to create order").WithError(err)
	}

	s.sendConfirmation(ctx, order)

	// The order exists either way; a failed clear only leaves stale lines.
	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		slog.Error("Failed to clear cart after checkout",
			slog.String("user_id", userID.String()),
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()))
	} else {
		s.notifier.CartUpdated(ctx, userID, 0)
	}

	return order, nil
}

func (s *checkoutService) sendConfirmation(ctx context.Context, order *models.Order) {
	confirmation := &sendgrid.Email{
		To:      order.ContactEmail,
		Subject: "Your GlowMart order has been placed",
		Content: fmt.Sprintf(
			"Hi %s,\n\nThanks for your order! Your order %s for $%.2f has been received. We'll contact you for delivery details.\n",
			order.CustomerName, order.ID, order.TotalAmount),
	}

	if err := s.email.Send(ctx, confirmation); err != nil {
		slog.Error("Failed to send order confirmation email",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()))
	}
}
