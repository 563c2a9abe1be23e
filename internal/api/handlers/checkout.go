package handlers

import (
	"log/slog"
	"net/http"

	"github.com/glowmart/storefront-backend/internal/api/middleware"
	"github.com/glowmart/storefront-backend/internal/errors"
	"github.com/glowmart/storefront-backend/internal/metrics"
	"github.com/glowmart/storefront-backend/internal/models"
	service "github.com/glowmart/storefront-backend/internal/services"
	"github.com/glowmart/storefront-backend/internal/utils"
	"github.com/glowmart/storefront-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	validator       *validator.Validate
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		validator:       validator.New(),
	}
}

// Checkout godoc
//	@Summary		Place an order from the current cart
//	@Description	Creates an order with one item per cart line, captures prices, clears the cart on success. Requires authentication.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			checkout	body		models.CheckoutRequest	true	"Shipping and contact details"
//	@Success		201			{object}	models.Order
//	@Failure		400			{object}	response.ErrorResponse	"Validation error, empty cart, or unavailable payment type"
//	@Failure		401			{object}	response.ErrorResponse	"Authentication required"
//	@Failure		500			{object}	response.ErrorResponse	"Order creation failed; cart preserved"
//	@Security		BearerAuth
//	@Router			/checkout [post]
func (h *CheckoutHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			logger.Warn("Unauthenticated checkout attempt")
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.checkoutService.Checkout(r.Context(), claims.UserID, &req)
		if err != nil {
			metrics.CartCheckouts.WithLabelValues("failure").Inc()
			logger.Error("Checkout failed", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		metrics.CartCheckouts.WithLabelValues("success").Inc()
		logger.Info("Order placed",
			slog.String("order_id", order.ID.String()),
			slog.Float64("total_amount", order.TotalAmount))
		response.Success(w, http.StatusCreated, order)
	}
}
