package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/glowmart/storefront-backend/internal/api/middleware"
	"github.com/glowmart/storefront-backend/internal/errors"
	"github.com/glowmart/storefront-backend/internal/events"
	"github.com/glowmart/storefront-backend/internal/utils/response"
)

type EventsHandler struct {
	hub *events.Hub
}

func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// CartEvents streams cart count updates over server-sent events. This is what
// header badges and mini-cart views subscribe to; updates observed on the
// shared store from another session arrive with origin "external".
func (h *EventsHandler) CartEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, errors.UnauthorizedError("Authentication required"))

			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			response.Error(w, errors.InternalError("Streaming unsupported"))

			return
		}

		updates, cancel := h.hub.Subscribe(claims.UserID)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}

				payload, err := json.Marshal(update)
				if err != nil {
					continue
				}

				fmt.Fprintf(w, "event: cart_updated\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
