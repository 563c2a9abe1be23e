package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product line in a cart. ProductName and ImageURL are display
// copies taken from the catalog at add time; Price is re-resolved on every load
// and stays nil when the catalog lookup fails or the product is gone.
type CartItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       *float64  `json:"price,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
}

// Cart is the per-user snapshot persisted whole on every mutation. Items keep
// insertion order and hold at most one line per product. Version increments on
// every persisted write, which makes the last-writer-wins policy observable.
type Cart struct {
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	Version   int64      `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Count is the sum of quantities across all lines.
func (c *Cart) Count() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}

	return count
}

// Total sums price*quantity over lines with a known price. Unpriced lines
// contribute nothing.
func (c *Cart) Total() float64 {
	var total float64

	for _, item := range c.Items {
		if item.Price != nil {
			total += *item.Price * float64(item.Quantity)
		}
	}

	return total
}

// FindItem returns the index of the line holding productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}

	return -1
}

type AddItemRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	ProductName string    `json:"product_name" validate:"required,max=200"`
}

type UpdateQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
}

type CartResponse struct {
	Cart  *Cart   `json:"cart"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}
