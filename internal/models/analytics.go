package models

import "github.com/google/uuid"

// SalesSummary backs the admin analytics dashboard.
type SalesSummary struct {
	TotalRevenue   float64        `json:"total_revenue"`
	TotalOrders    int            `json:"total_orders"`
	OrdersByStatus map[string]int `json:"orders_by_status"`
	NewCustomers   int            `json:"new_customers"`
}

type TopProduct struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitsSold   int       `json:"units_sold"`
	Revenue     float64   `json:"revenue"`
}
