package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel carrying cart updates between instances.
const cartUpdatesChannel = "cart:updates"

// Notifier is what the cart and checkout services call after a snapshot write
// succeeded.
type Notifier interface {
	CartUpdated(ctx context.Context, userID uuid.UUID, count int)
}

type broadcastMessage struct {
	Instance string     `json:"instance"`
	Update   CartUpdate `json:"update"`
}

// Broadcaster bridges the in-process Hub and the shared Redis channel. A
// local mutation is delivered to this instance's subscribers directly and
// published for the others; updates arriving over Redis are re-injected as
// external changes, the same way another browser tab's storage write used to
// surface.
type Broadcaster struct {
	hub        *Hub
	client     *redis.Client
	instanceID string
}

func NewBroadcaster(hub *Hub, client *redis.Client) *Broadcaster {
	return &Broadcaster{
		hub:        hub,
		client:     client,
		instanceID: uuid.NewString(),
	}
}

// CartUpdated implements Notifier.
func (b *Broadcaster) CartUpdated(ctx context.Context, userID uuid.UUID, count int) {
	update := CartUpdate{UserID: userID, Count: count, Origin: OriginLocal}
	b.hub.Publish(update)

	payload, err := json.Marshal(broadcastMessage{Instance: b.instanceID, Update: update})
	if err != nil {
		slog.Error("Failed to marshal cart update", slog.String("error", err.Error()))

		return
	}

	if err := b.client.Publish(ctx, cartUpdatesChannel, payload).Err(); err != nil {
		// Local subscribers already got the update; only other instances miss it.
		slog.Error("Failed to publish cart update",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}

// Listen consumes cart updates published by other instances until ctx is
// cancelled. Run it in its own goroutine.
func (b *Broadcaster) Listen(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, cartUpdatesChannel)
	defer sub.Close()

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("cart updates subscription closed")
			}

			b.handlePayload([]byte(msg.Payload))
		}
	}
}

func (b *Broadcaster) handlePayload(payload []byte) {
	var msg broadcastMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		slog.Warn("Dropping malformed cart update", slog.String("error", err.Error()))

		return
	}

	// Own messages were already delivered locally as OriginLocal.
	if msg.Instance == b.instanceID {
		return
	}

	msg.Update.Origin = OriginExternal
	b.hub.Publish(msg.Update)
}
