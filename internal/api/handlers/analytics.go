package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/glowmart/storefront-backend/internal/api/middleware"
	service "github.com/glowmart/storefront-backend/internal/services"
	"github.com/glowmart/storefront-backend/internal/utils/response"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) SalesSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		days, _ := strconv.Atoi(r.URL.Query().Get("days"))

		summary, err := h.analyticsService.SalesSummary(r.Context(), days)
		if err != nil {
			logger.Error("Failed to compute sales summary", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, summary)
	}
}

func (h *AnalyticsHandler) TopProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		days, _ := strconv.Atoi(r.URL.Query().Get("days"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		products, err := h.analyticsService.TopProducts(r.Context(), days, limit)
		if err != nil {
			logger.Error("Failed to compute top products", slog.Any("error", err))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, products)
	}
}
