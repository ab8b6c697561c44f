package models

import (
	"time"
)

// Order statuses as stored in the orders table.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// OrderItem is one line of the cart snapshot frozen onto an order. The
// snapshot is serialized to JSON in the orders.items column and never
// rewritten, so later product edits do not change historical orders.
type OrderItem struct {
	ID       int     `json:"id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	CustomerName    string      `json:"customerName" binding:"required"`
	CustomerEmail   string      `json:"customerEmail" binding:"required,email"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerAddress string      `json:"customerAddress"`
	Items           []OrderItem `json:"items" binding:"required,min=1"`
	Subtotal        float64     `json:"subtotal"`
	ShippingCost    float64     `json:"shippingCost"`
	TotalAmount     float64     `json:"totalAmount" binding:"required"`
	PaymentMethod   string      `json:"paymentMethod"`
	PaymentID       string      `json:"paymentId"`
}

type Order struct {
	ID              int         `json:"id"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone,omitempty"`
	CustomerAddress string      `json:"customer_address,omitempty"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	ShippingCost    float64     `json:"shipping_cost"`
	TotalAmount     float64     `json:"total_amount"`
	Status          string      `json:"status"`
	PaymentMethod   string      `json:"payment_method,omitempty"`
	PaymentID       string      `json:"payment_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderEvent is the payload published to the order exchange.
type OrderEvent struct {
	OrderID  int       `json:"order_id"`
	Type     string    `json:"type"` // created, status_updated, payment_check
	Status   string    `json:"status"`
	Total    float64   `json:"total"`
	Occurred time.Time `json:"occurred"`
}
