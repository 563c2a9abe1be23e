package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

type PaymentType string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	// OrderStatusDeleted is the admin-only soft delete terminal state. Rows are
	// kept for analytics but hidden from customer views.
	OrderStatusDeleted OrderStatus = "deleted"

	PaymentTypeCashOnDelivery PaymentType = "cash_on_delivery"
	PaymentTypeCreditCard     PaymentType = "credit_card"
)

// OrderItem captures the unit price at order time; it never changes when the
// catalog price does.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Price     float64   `json:"price" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Status          OrderStatus `json:"status"`
	TotalAmount     float64     `json:"total_amount"`
	ShippingAddress string      `json:"shipping_address"`
	ContactPhone    string      `json:"contact_phone"`
	ContactEmail    string      `json:"contact_email"`
	CustomerName    string      `json:"customer_name"`
	PaymentType     PaymentType `json:"payment_type"`
	PaymentIntentID string      `json:"payment_intent_id,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CheckoutRequest carries the shipping and contact form submitted at checkout.
// The line items come from the caller's persisted cart, not the request.
type CheckoutRequest struct {
	CustomerName    string      `json:"customer_name" validate:"required,max=200"`
	ContactEmail    string      `json:"contact_email" validate:"required,email"`
	ContactPhone    string      `json:"contact_phone" validate:"required,max=32"`
	ShippingAddress string      `json:"shipping_address" validate:"required,max=500"`
	PaymentType     PaymentType `json:"payment_type" validate:"required,oneof=cash_on_delivery credit_card"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending processing completed cancelled deleted"`
}

type OrderHistoryResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
}
