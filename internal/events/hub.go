package events

import (
	"sync"

	"github.com/google/uuid"
)

// Origin says whether a cart update came from the subscriber's own instance or
// was observed on the shared snapshot store. Listeners typically refresh on
// both but only animate on external changes.
type Origin string

const (
	OriginLocal    Origin = "local"
	OriginExternal Origin = "external"
)

// CartUpdate carries the item count after a mutation and its persisted write
// completed. The count always matches the last persisted snapshot.
type CartUpdate struct {
	UserID uuid.UUID `json:"user_id"`
	Count  int       `json:"count"`
	Origin Origin    `json:"origin"`
}

const subscriberBuffer = 8

// Hub fans cart updates out to in-process subscribers, keyed by user.
// Publishing never blocks; a subscriber that cannot keep up misses updates
// rather than stalling the mutation path.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan CartUpdate]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[chan CartUpdate]struct{})}
}

// Subscribe registers a listener for one user's cart updates. The returned
// cancel func must be called on teardown; it closes the channel.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan CartUpdate, func()) {
	ch := make(chan CartUpdate, subscriberBuffer)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan CartUpdate]struct{})
	}

	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if set, ok := h.subs[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}

			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
	}

	return ch, cancel
}

// Publish delivers the update to every subscriber of the user.
func (h *Hub) Publish(update CartUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[update.UserID] {
		select {
		case ch <- update:
		default:
		}
	}
}

// SubscriberCount reports how many listeners a user currently has.
func (h *Hub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[userID])
}
