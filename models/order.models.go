package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
	StatusRefunded  OrderStatus = "Refunded"
)

var knownStatuses = []OrderStatus{StatusPending, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded}

// ParseOrderStatus maps user input onto one of the known statuses.
// Matching ignores case and surrounding whitespace.
func ParseOrderStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range knownStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// AcceptsFeedback reports whether feedback may be left for an order in this state
func (s OrderStatus) AcceptsFeedback() bool {
	return s == StatusDelivered
}

// ShippingSnapshot is the delivery address copied onto an order at checkout
type ShippingSnapshot struct {
	Name    string `db:"shipping_name" json:"name"`
	Address string `db:"shipping_address" json:"address"`
	City    string `db:"shipping_city" json:"city"`
	Zip     string `db:"shipping_zip" json:"zip"`
	Phone   string `db:"shipping_phone" json:"phone"`
}

// Order represents a placed order
type Order struct {
	ID               int64           `db:"id" json:"id"`
	UserID           int64           `db:"user_id" json:"user_id"`
	Total            decimal.Decimal `db:"total" json:"total"`
	Status           OrderStatus     `db:"status" json:"status"` // e.g., "Pending", "Shipped"
	PaymentMethod    string          `db:"payment_method" json:"payment_method"`
	ShippingSnapshot `json:"shipping"`
	CreatedAt        time.Time      `db:"created_at" json:"date"`
	Items            []OrderItem    `db:"-" json:"items"`
	Feedback         *OrderFeedback `db:"-" json:"feedback"`
}

// OrderItem is a line of a placed order. Name and price are snapshots.
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
}

// StatusChange describes an applied status update and who to notify about it
type StatusChange struct {
	OrderID int64       `db:"id"`
	Status  OrderStatus `db:"status"`
	Email   string      `db:"email"`
	Name    string      `db:"name"`
}

// StatusCount is one row of the admin status breakdown
type StatusCount struct {
	Status OrderStatus `db:"status" json:"status"`
	Count  int         `db:"count" json:"count"`
}

// OrderStats summarises all orders for the admin dashboard
type OrderStats struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalOrders     int             `json:"total_orders"`
	StatusBreakdown []StatusCount   `json:"status_breakdown"`
}
